// Package domain holds the feed status and control contracts
package domain

import (
	"context"

	convdomain "inboxd/internal/services/conversations/domain"
)

// Status is a snapshot of the simulator
type Status struct {
	Streaming   bool   `json:"streaming"`
	Position    int    `json:"position"`
	Total       int    `json:"total"`
	Delivered   uint64 `json:"delivered"`
	Subscribers int    `json:"subscribers"`
	Panics      uint64 `json:"subscriberPanics"`
	Interval    string `json:"interval"`
	RunID       string `json:"runId,omitempty"`
}

// Subscriber receives events one at a time, in recording order
type Subscriber func(ctx context.Context, e convdomain.Event)

// NextInput is the optional body of POST /feed/next
type NextInput struct {
	Count int `json:"count" validate:"omitempty,min=1"`
}

// Controller is the control surface exposed over HTTP
type Controller interface {
	Start(ctx context.Context) (Status, error)
	Stop(ctx context.Context) Status
	Next(ctx context.Context) (Status, error)
	Status() Status
}

// Runner owns the ticking goroutine
type Runner interface {
	Run(ctx context.Context) error
}
