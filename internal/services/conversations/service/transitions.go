package service

import (
	"inboxd/internal/core/snippet"
	perr "inboxd/internal/platform/errors"
	"inboxd/internal/services/conversations/domain"
)

// resynth is the blurb derivation used by transitions; tests replace it to force failures
var resynth = Synthesize

func messageReceived(r *record, d domain.EventData) error {
	body := ""
	if d.Body != nil {
		body = *d.Body
	}
	r.messageCount++
	r.subject = d.Subject
	r.mostRecent = snippet.Display(body)
	if r.typing.len() == 0 {
		r.blurb = resynth(nil, r.mostRecent, &body)
	}
	return nil
}

func assigned(r *record, d domain.EventData) error {
	if d.User == "" {
		return perr.WithField(perr.InvalidArgf("assigned event without a user"), "user")
	}
	u := d.User
	r.assignedUser = &u
	return nil
}

func unassigned(r *record, _ domain.EventData) error {
	r.assignedUser = nil
	return nil
}

func typingStarted(r *record, d domain.EventData) error {
	if d.User == "" {
		return perr.WithField(perr.InvalidArgf("typingStarted event without a user"), "user")
	}
	r.typing.add(d.User)
	r.blurb = resynth(r.typing.users(), r.mostRecent, nil)
	return nil
}

func typingStopped(r *record, d domain.EventData) error {
	if d.User != "" {
		r.typing.remove(d.User)
	}
	r.blurb = resynth(r.typing.users(), r.mostRecent, nil)
	return nil
}

// transition runs the handler for t, converting a panic into a coded error.
// ok is false for types the reducer does not know
func transition(r *record, e domain.Event) (ok bool, err error) {
	var fn func(*record, domain.EventData) error
	switch e.Type {
	case domain.EventMessageReceived:
		fn = messageReceived
	case domain.EventAssigned:
		fn = assigned
	case domain.EventUnassigned:
		fn = unassigned
	case domain.EventTypingStarted:
		fn = typingStarted
	case domain.EventTypingStopped:
		fn = typingStopped
	default:
		return false, nil
	}

	defer func() {
		if v := recover(); v != nil {
			err = perr.Recovered(v, string(e.Type))
		}
	}()
	if err = fn(r, e.Data); err != nil {
		err = perr.WithOp(err, string(e.Type))
	}
	return true, err
}
