package service

import (
	"strings"

	"inboxd/internal/core/snippet"
)

// Synthesize derives the blurb shown next to a conversation. A supplied body wins
// while nobody is typing; typists win over everything else; otherwise the last
// message preview is kept
func Synthesize(typing []string, mostRecent string, body *string) string {
	switch {
	case len(typing) == 0 && body != nil:
		return snippet.Display(*body)
	case len(typing) == 1:
		return typing[0] + " is replying..."
	case len(typing) > 1:
		return strings.Join(typing, ", ") + " are replying..."
	default:
		return snippet.Display(mostRecent)
	}
}
