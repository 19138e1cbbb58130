// Package http provides http transport for conversations
package http

import (
	stdhttp "net/http"

	"inboxd/internal/modkit/httpkit"
	"inboxd/internal/modkit/swaggerkit"
	"inboxd/internal/services/conversations/domain"
)

// Register mounts conversation read endpoints on the given router. Every path
// segment below it is a conversation id
func Register(r httpkit.Router, p domain.Projection) {
	h := &handlers{p: p}

	httpkit.Get(r, "/", h.list)
	httpkit.Get(r, "/{id}", h.one)
}

// RegisterStats mounts the reducer counters at the root of r, which lives
// outside the id space (/stats/conversations)
func RegisterStats(r httpkit.Router, p domain.Projection) {
	h := &handlers{p: p}
	httpkit.Get(r, "/", h.stats)
}

// StatsPrefix is where RegisterStats is mounted for a module at prefix
func StatsPrefix(prefix string) string { return "/stats" + prefix }

// Describe records the endpoints for the API document, relative to /api/v1
func Describe(prefix string) {
	swaggerkit.Describe(
		swaggerkit.Operation{Method: "GET", Path: prefix, Tag: "Conversations", Summary: "Visible conversations, newest first"},
		swaggerkit.Operation{Method: "GET", Path: prefix + "/{id}", Tag: "Conversations", Summary: "One conversation"},
		swaggerkit.Operation{Method: "GET", Path: StatsPrefix(prefix), Tag: "Conversations", Summary: "Reducer counters"},
	)
}

type handlers struct{ p domain.Projection }

func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.p.Conversations(r.Context()), nil
}

func (h *handlers) stats(r *stdhttp.Request) (any, error) {
	return h.p.Stats(r.Context()), nil
}

func (h *handlers) one(r *stdhttp.Request) (any, error) {
	return h.p.Conversation(r.Context(), httpkit.Param(r, "id"))
}
