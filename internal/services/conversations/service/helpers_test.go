package service

import (
	"context"
	"sync"
	"testing"

	kit "inboxd/internal/platform/testkit"
	"inboxd/internal/services/conversations/domain"
)

func ev(t domain.EventType, ts int64, conv, user, subject string, body *string) domain.Event {
	return domain.Event{Type: t, Data: domain.EventData{
		Timestamp: ts, ConversationID: conv, User: user, Subject: subject, Body: body,
	}}
}

func msg(ts int64, conv, user, subject, body string) domain.Event {
	return ev(domain.EventMessageReceived, ts, conv, user, subject, kit.Ptr(body))
}

// recorder collects outcomes for assertions
type recorder struct {
	mu   sync.Mutex
	outs []domain.Outcome
}

func (r *recorder) observe(_ context.Context, o domain.Outcome) {
	r.mu.Lock()
	r.outs = append(r.outs, o)
	r.mu.Unlock()
}

func (r *recorder) last(t *testing.T) domain.Outcome {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.outs) == 0 {
		t.Fatalf("no outcome recorded")
	}
	return r.outs[len(r.outs)-1]
}

func newRecorded() (*Svc, *recorder) {
	rec := &recorder{}
	return New(WithObserver(rec.observe)), rec
}

func mustGet(t *testing.T, s *Svc, id string) domain.Summary {
	t.Helper()
	sum, err := s.Conversation(context.Background(), id)
	if err != nil {
		t.Fatalf("Conversation(%q): %v", id, err)
	}
	return sum
}
