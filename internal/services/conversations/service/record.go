package service

import "inboxd/internal/services/conversations/domain"

type record struct {
	id           string
	assignedUser *string
	subject      string
	lastUpdated  int64
	messageCount int
	typing       typingSet
	mostRecent   string
	blurb        string
}

func newRecord(d domain.EventData) *record {
	r := &record{id: d.ConversationID, subject: d.Subject}
	if d.User != "" {
		u := d.User
		r.assignedUser = &u
	}
	return r
}

func (r *record) hidden() bool {
	return r.assignedUser != nil && *r.assignedUser == domain.SentinelUser
}

func (r *record) summary() domain.Summary {
	s := domain.Summary{
		ID:                   r.id,
		Subject:              r.subject,
		Blurb:                r.blurb,
		MessageCount:         r.messageCount,
		LastUpdatedTimestamp: r.lastUpdated,
	}
	if r.assignedUser != nil {
		u := *r.assignedUser
		s.AssignedUser = &u
	}
	return s
}
