package service

import (
	"context"

	"inboxd/internal/platform/metrics"
	"inboxd/internal/services/conversations/domain"
)

// Instrument registers reducer collectors on reg and subscribes them to s
func Instrument(reg *metrics.Registry, s *Svc) {
	events := reg.CounterVec("reducer", "events_total", "Events handed to the reducer by outcome.", "outcome")
	for _, st := range domain.Statuses() {
		events.WithLabelValues(st.String())
	}
	s.Observe(func(_ context.Context, o domain.Outcome) {
		events.WithLabelValues(o.Status.String()).Inc()
	})

	reg.GaugeFunc("reducer", "conversations", "Conversations in the table, hidden ones included.", func() float64 {
		return float64(s.Stats(context.Background()).Conversations)
	})
	reg.GaugeFunc("reducer", "fingerprints", "Distinct event fingerprints in the ledger.", func() float64 {
		return float64(s.Stats(context.Background()).Fingerprints)
	})
}
