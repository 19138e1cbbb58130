// Package http provides http controls for the recorded feed
package http

import (
	stdhttp "net/http"

	"inboxd/internal/modkit/httpkit"
	"inboxd/internal/modkit/swaggerkit"
	perr "inboxd/internal/platform/errors"
	"inboxd/internal/services/feed/domain"
)

// DefaultMaxStep caps the count of one POST /next
const DefaultMaxStep = 100

// Register mounts feed endpoints on the given router. maxStep <= 0 means DefaultMaxStep
func Register(r httpkit.Router, c domain.Controller, maxStep int) {
	if maxStep <= 0 {
		maxStep = DefaultMaxStep
	}
	h := &handlers{c: c, maxStep: maxStep}

	httpkit.Get(r, "/", h.status)
	httpkit.Post(r, "/start", h.start)
	httpkit.Post(r, "/stop", h.stop)

	// body is optional: {"count": n} steps n events
	httpkit.PostJSON[domain.NextInput](r, "/next", h.next, httpkit.OptionalBody())
}

// Describe records the endpoints for the API document, relative to /api/v1
func Describe(prefix string) {
	swaggerkit.Describe(
		swaggerkit.Operation{Method: "GET", Path: prefix, Tag: "Feed", Summary: "Feed status"},
		swaggerkit.Operation{Method: "POST", Path: prefix + "/start", Tag: "Feed", Summary: "Start streaming the recording"},
		swaggerkit.Operation{Method: "POST", Path: prefix + "/stop", Tag: "Feed", Summary: "Pause streaming"},
		swaggerkit.Operation{Method: "POST", Path: prefix + "/next", Tag: "Feed", Summary: "Deliver the next event(s) by hand"},
	)
}

type handlers struct {
	c       domain.Controller
	maxStep int
}

func (h *handlers) status(*stdhttp.Request) (any, error) {
	return h.c.Status(), nil
}

func (h *handlers) start(r *stdhttp.Request) (any, error) {
	return h.c.Start(r.Context())
}

func (h *handlers) stop(r *stdhttp.Request) (any, error) {
	return h.c.Stop(r.Context()), nil
}

func (h *handlers) next(r *stdhttp.Request, in domain.NextInput) (any, error) {
	n := in.Count
	if n == 0 {
		n = 1
	}
	if n > h.maxStep {
		return nil, perr.WithField(perr.Validationf("count %d exceeds the step limit %d", n, h.maxStep), "count")
	}
	var (
		st  domain.Status
		err error
	)
	for i := 0; i < n; i++ {
		if st, err = h.c.Next(r.Context()); err != nil {
			// stop early, reporting the status after the last delivered step
			if i > 0 {
				return st, nil
			}
			return nil, err
		}
	}
	return st, nil
}
