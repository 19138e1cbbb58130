package http

import (
	"net/http"

	"inboxd/internal/platform/net/http/bind"
)

// Call adapts a handler without request body. A returned Response is written as is
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return OK(out)
	})
}

// callJSON decodes and validates T from the body before calling fn
func callJSON[T any](fn func(*http.Request, T) (any, error), opts ...bind.JSONOptions) Handler {
	return Call(func(r *http.Request) (any, error) {
		in, err := bind.ParseJSON[T](r, opts...)
		if err != nil {
			return nil, err
		}
		return fn(r, in)
	})
}

// GetJSON mounts a body-less JSON handler for GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// PostJSON mounts a JSON handler for POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...bind.JSONOptions) {
	r.Post(path, callJSON(h, opts...))
}
