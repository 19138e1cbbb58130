package domain

import "context"

// Reducer folds events into conversation state
type Reducer interface {
	Apply(ctx context.Context, e Event)
}

// Projection is the read side over conversation state
type Projection interface {
	Conversations(ctx context.Context) []Summary
	Conversation(ctx context.Context, id string) (Summary, error)
	Stats(ctx context.Context) Stats
}

// ServicePort is consumed by handlers, the feed and the replay command
type ServicePort interface {
	Reducer
	Projection
}
