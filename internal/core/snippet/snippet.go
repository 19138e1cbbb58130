// Package snippet cuts user supplied text to a character budget and, separately,
// sanitizes text bound for logs
package snippet

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Limit is the display budget for blurbs and message previews, in characters
const Limit = 256

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			runes.Remove(runes.Predicate(isNoise)),
			norm.NFC,
		)
	},
}

// isNoise reports C0 and C1 controls except the whitespace ones messages legitimately carry
func isNoise(r rune) bool {
	switch r {
	case '\n', '\r', '\t':
		return false
	}
	return unicode.IsControl(r)
}

// Clean repairs UTF-8, drops control characters and composes to NFC. It is meant
// for log fields; stored text goes through Truncate untouched
func Clean(s string) string {
	if s == "" || plain(s) {
		return s
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		return s
	}
	return out
}

// Truncate keeps the first n characters of s and nothing else changes. Invalid bytes
// count as one character each, so the cut never splits a valid rune. n <= 0 yields ""
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Display is Truncate with Limit
func Display(s string) string { return Truncate(s, Limit) }

// plain reports printable ASCII (plus \n \r \t), which needs no cleaning
func plain(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf || c == 0x7F {
			return false
		}
		if c < 0x20 && c != '\n' && c != '\r' && c != '\t' {
			return false
		}
	}
	return true
}
