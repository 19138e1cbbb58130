// Package service folds conversation events into per-conversation state and serves
// the read-side projection
package service

import (
	"context"
	"sync"

	"inboxd/internal/platform/logger"
	"inboxd/internal/platform/validate"
	"inboxd/internal/services/conversations/domain"
)

// Service defines the conversations service contract
type Service interface {
	domain.ServicePort
}

var _ Service = (*Svc)(nil)

// Option configures a Svc
type Option func(*Svc)

// WithLogger sets the component logger
func WithLogger(l *logger.Logger) Option {
	return func(s *Svc) {
		if l != nil {
			s.log = l
		}
	}
}

// WithObserver appends an observer notified after every Apply
func WithObserver(o domain.Observer) Option {
	return func(s *Svc) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithSentinelLog logs the ids the projection hides, at debug level
func WithSentinelLog(on bool) Option {
	return func(s *Svc) { s.sentinelLog = on }
}

type counters struct {
	received, applied, duplicates, rejected, unknown, failed uint64
}

// Svc is the reducer and projection over one in-memory conversation table
type Svc struct {
	mu     sync.Mutex
	table  map[string]*record
	ledger *Ledger
	count  counters

	log         *logger.Logger
	observers   []domain.Observer
	sentinelLog bool
}

// New constructs an empty service
func New(opts ...Option) *Svc {
	s := &Svc{
		table:  make(map[string]*record),
		ledger: NewLedger(),
		log:    logger.Nop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Observe registers an observer after construction
func (s *Svc) Observe(o domain.Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Apply processes one event. Nothing is returned to the caller: rejections, duplicates
// and failed transitions are logged, counted and handed to observers
func (s *Svc) Apply(ctx context.Context, e domain.Event) {
	out, observers := s.apply(e)

	log := logger.From(ctx, s.log)
	switch out.Status {
	case domain.StatusRejected:
		log.Warn().Err(out.Err).Str("type", string(e.Type)).Msg("event rejected")
	case domain.StatusDuplicate:
		log.Debug().Str("fingerprint", out.Fingerprint).Msg("duplicate event ignored")
	case domain.StatusUnknownType:
		log.Warn().Str("type", string(e.Type)).Str("conversation_id", e.Data.ConversationID).Msg("unknown event type")
	case domain.StatusFailed:
		log.Warn().Err(out.Err).Str("type", string(e.Type)).Str("conversation_id", e.Data.ConversationID).Msg("transition failed")
	default:
		log.Trace().Str("type", string(e.Type)).Str("conversation_id", e.Data.ConversationID).Msg("event applied")
	}

	for _, o := range observers {
		notify(ctx, log, o, out)
	}
}

func (s *Svc) apply(e domain.Event) (domain.Outcome, []domain.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count.received++
	out := domain.Outcome{Event: e}
	observers := s.observers

	if err := validate.Struct(e); err != nil {
		s.count.rejected++
		out.Status, out.Err = domain.StatusRejected, err
		return out, observers
	}

	key := e.Key()
	out.Fingerprint = e.Fingerprint()
	if s.ledger.Seen(key) {
		s.count.duplicates++
		out.Status = domain.StatusDuplicate
		return out, observers
	}

	r, ok := s.table[e.Data.ConversationID]
	if !ok {
		r = newRecord(e.Data)
		s.table[r.id] = r
	}

	known, err := transition(r, e)
	switch {
	case !known:
		s.count.unknown++
		out.Status = domain.StatusUnknownType
	case err != nil:
		s.count.failed++
		out.Status, out.Err = domain.StatusFailed, err
	default:
		s.count.applied++
		out.Status = domain.StatusApplied
	}

	s.ledger.Mark(key)
	if e.Data.Timestamp > r.lastUpdated {
		r.lastUpdated = e.Data.Timestamp
	}
	return out, observers
}

func notify(ctx context.Context, log *logger.Logger, o domain.Observer, out domain.Outcome) {
	defer func() {
		if v := recover(); v != nil {
			log.Error().Interface("panic", v).Msg("observer panicked")
		}
	}()
	o(ctx, out)
}
