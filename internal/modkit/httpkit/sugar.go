package httpkit

import (
	"net/http"

	phttp "inboxd/internal/platform/net/http"
	"inboxd/internal/platform/net/http/bind"
)

// Get registers a body-less GET handler behind the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetJSON(r, path, h)
}

// Post registers a body-less POST handler behind the envelope adapter
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, Call(h))
}

// PostJSON registers a POST handler whose body is decoded and validated into T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...bind.JSONOptions) {
	phttp.PostJSON(r, path, h, opts...)
}

// OptionalBody lets PostJSON accept an empty body as the zero T
func OptionalBody() bind.JSONOptions { return bind.Optional() }
