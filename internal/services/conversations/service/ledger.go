package service

import "inboxd/internal/services/conversations/domain"

// Ledger remembers every event key that has been processed. It never forgets
type Ledger struct {
	seen map[domain.Key]struct{}
}

// NewLedger returns an empty ledger
func NewLedger() *Ledger { return &Ledger{seen: make(map[domain.Key]struct{})} }

// Seen reports whether k was marked before
func (l *Ledger) Seen(k domain.Key) bool {
	_, ok := l.seen[k]
	return ok
}

// Mark records k; marking twice is harmless
func (l *Ledger) Mark(k domain.Key) { l.seen[k] = struct{}{} }

// Len is the number of distinct keys recorded
func (l *Ledger) Len() int { return len(l.seen) }
