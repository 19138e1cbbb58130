// Package service replays a recorded event sequence to subscribers at a fixed cadence
package service

import (
	"context"
	"sync"
	"time"

	"inboxd/internal/core/snippet"
	perr "inboxd/internal/platform/errors"
	"inboxd/internal/platform/logger"
	convdomain "inboxd/internal/services/conversations/domain"
	"inboxd/internal/services/feed/domain"

	"github.com/google/uuid"
)

// DefaultInterval is the cadence between two streamed events
const DefaultInterval = 500 * time.Millisecond

type subscription struct {
	id string
	fn domain.Subscriber
}

// Simulator delivers a fixed recording, one event per tick while streaming or one per
// Next call. Events are only consumed when someone is subscribed
type Simulator struct {
	mu        sync.Mutex
	events    []convdomain.Event
	next      int
	streaming bool
	runID     string
	delivered uint64
	panics    uint64
	subs      []subscription

	// serializes deliveries so subscribers see recording order
	deliverMu sync.Mutex

	interval time.Duration
	log      *logger.Logger
}

// Option configures a Simulator
type Option func(*Simulator)

// WithInterval sets the tick cadence; non-positive values keep the default
func WithInterval(d time.Duration) Option {
	return func(s *Simulator) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithLogger sets the component logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds a stopped simulator positioned at the first event
func New(events []convdomain.Event, opts ...Option) *Simulator {
	s := &Simulator{
		events:   append([]convdomain.Event(nil), events...),
		interval: DefaultInterval,
		log:      logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var (
	_ domain.Controller = (*Simulator)(nil)
	_ domain.Runner     = (*Simulator)(nil)
)

// Subscribe registers fn and returns its id and a cancel func; cancel is idempotent
func (s *Simulator) Subscribe(fn domain.Subscriber) (string, func()) {
	id := uuid.NewString()
	s.mu.Lock()
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return id, func() { once.Do(func() { s.unsubscribe(id) }) }
}

func (s *Simulator) unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Start begins streaming under a fresh run id
func (s *Simulator) Start(ctx context.Context) (domain.Status, error) {
	s.mu.Lock()
	if s.streaming {
		st := s.statusLocked()
		s.mu.Unlock()
		return st, perr.Conflictf("feed is already streaming")
	}
	if s.next >= len(s.events) {
		st := s.statusLocked()
		s.mu.Unlock()
		return st, perr.Exhaustedf("recording exhausted after %d events", len(s.events))
	}
	s.streaming = true
	s.runID = uuid.NewString()
	st := s.statusLocked()
	s.mu.Unlock()

	logger.From(logger.WithRun(ctx, st.RunID), s.log).Info().
		Int("position", st.Position).Int("total", st.Total).Dur("interval", s.interval).Msg("feed started")
	return st, nil
}

// Stop pauses streaming; the position is kept
func (s *Simulator) Stop(ctx context.Context) domain.Status {
	s.mu.Lock()
	was := s.streaming
	s.streaming = false
	st := s.statusLocked()
	runID := s.runID
	s.mu.Unlock()

	if was {
		logger.From(logger.WithRun(ctx, runID), s.log).Info().Int("position", st.Position).Msg("feed stopped")
	}
	return st
}

// Next delivers the next event to every subscriber. It fails with Exhausted when the
// recording is spent and with Unavailable when nobody is subscribed; in both cases
// the position does not move
func (s *Simulator) Next(ctx context.Context) (domain.Status, error) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.next >= len(s.events) {
		st := s.statusLocked()
		s.mu.Unlock()
		return st, perr.Exhaustedf("recording exhausted after %d events", len(s.events))
	}
	if len(s.subs) == 0 {
		st := s.statusLocked()
		s.mu.Unlock()
		return st, perr.Unavailablef("no subscribers")
	}
	e := s.events[s.next]
	s.next++
	s.delivered++
	subs := append([]subscription(nil), s.subs...)
	runID := s.runID
	s.mu.Unlock()

	ctx = logger.WithRun(ctx, runID)
	for _, sub := range subs {
		s.deliver(ctx, sub, e)
	}
	return s.Status(), nil
}

func (s *Simulator) deliver(ctx context.Context, sub subscription, e convdomain.Event) {
	defer func() {
		if v := recover(); v != nil {
			s.mu.Lock()
			s.panics++
			s.mu.Unlock()
			logger.From(ctx, s.log).Error().
				Err(perr.Recovered(v, "deliver")).
				Str("subscriber", sub.id).
				Str("type", snippet.Clean(string(e.Type))).
				Str("conversation_id", snippet.Clean(e.Data.ConversationID)).
				Msg("subscriber panicked")
		}
	}()
	sub.fn(ctx, e)
}

// Run ticks until ctx is cancelled, delivering one event per tick while streaming.
// Streaming stops by itself once the recording is spent
func (s *Simulator) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Simulator) tick(ctx context.Context) {
	s.mu.Lock()
	on := s.streaming
	s.mu.Unlock()
	if !on {
		return
	}

	_, err := s.Next(ctx)
	switch {
	case err == nil:
	case perr.IsCode(err, perr.ErrorCodeExhausted):
		st := s.Stop(ctx)
		s.log.Info().Uint64("delivered", st.Delivered).Msg("recording exhausted")
	default:
		s.log.Debug().Err(err).Msg("tick skipped")
	}
}

// Status returns a snapshot
func (s *Simulator) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Simulator) statusLocked() domain.Status {
	st := domain.Status{
		Streaming:   s.streaming,
		Position:    s.next,
		Total:       len(s.events),
		Delivered:   s.delivered,
		Subscribers: len(s.subs),
		Panics:      s.panics,
		Interval:    s.interval.String(),
	}
	if s.streaming {
		st.RunID = s.runID
	}
	return st
}
