package service

import (
	"context"
	"sort"

	perr "inboxd/internal/platform/errors"
	"inboxd/internal/platform/logger"
	"inboxd/internal/services/conversations/domain"
)

// order sorts newest first, ids ascending on equal timestamps; tests replace it to force failures
var order = func(list []domain.Summary) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].LastUpdatedTimestamp != list[j].LastUpdatedTimestamp {
			return list[i].LastUpdatedTimestamp > list[j].LastUpdatedTimestamp
		}
		return list[i].ID < list[j].ID
	})
}

// Conversations returns the visible conversations, newest first. It never fails: an
// internal error is logged and yields an empty list
func (s *Svc) Conversations(ctx context.Context) (list []domain.Summary) {
	log := logger.From(ctx, s.log)
	defer func() {
		if v := recover(); v != nil {
			log.Error().Err(perr.Recovered(v, "conversations")).Msg("projection failed")
			list = []domain.Summary{}
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	list = make([]domain.Summary, 0, len(s.table))
	for id, r := range s.table {
		if r.hidden() {
			if s.sentinelLog {
				log.Debug().Str("conversation_id", id).Msg("conversation hidden")
			}
			continue
		}
		list = append(list, r.summary())
	}
	order(list)
	return list
}

// Conversation returns one visible conversation
func (s *Svc) Conversation(_ context.Context, id string) (domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.table[id]
	if !ok || r.hidden() {
		return domain.Summary{}, perr.WithField(perr.NotFoundf("conversation %q not found", id), "id")
	}
	return r.summary(), nil
}

// Stats reports the reducer counters and table sizes
func (s *Svc) Stats(_ context.Context) domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	hidden := 0
	for _, r := range s.table {
		if r.hidden() {
			hidden++
		}
	}
	return domain.Stats{
		Received:      s.count.received,
		Applied:       s.count.applied,
		Duplicates:    s.count.duplicates,
		Rejected:      s.count.rejected,
		Unknown:       s.count.unknown,
		Failed:        s.count.failed,
		Conversations: len(s.table),
		Hidden:        hidden,
		Fingerprints:  s.ledger.Len(),
	}
}
