// Package domain holds the conversation event model, the projection summary and the
// outcome vocabulary shared by the reducer, its transports and the feed
package domain

import "fmt"

// SentinelUser is the assignee whose conversations never appear in the projection
const SentinelUser = "John_Doe"

// EventType is the closed set of conversation event kinds
type EventType string

// Event types as they appear on the wire
const (
	EventMessageReceived EventType = "messageReceived"
	EventAssigned        EventType = "assigned"
	EventUnassigned      EventType = "unassigned"
	EventTypingStarted   EventType = "typingStarted"
	EventTypingStopped   EventType = "typingStopped"
)

// EventTypes lists the known types in declaration order
func EventTypes() []EventType {
	return []EventType{EventMessageReceived, EventAssigned, EventUnassigned, EventTypingStarted, EventTypingStopped}
}

// Known reports whether t is one of the declared event types
func (t EventType) Known() bool {
	switch t {
	case EventMessageReceived, EventAssigned, EventUnassigned, EventTypingStarted, EventTypingStopped:
		return true
	}
	return false
}

// EventData is the payload every event carries. Only ConversationID is mandatory
type EventData struct {
	Timestamp      int64   `json:"timestamp"       yaml:"timestamp"`
	ConversationID string  `json:"conversationId"  yaml:"conversationId" validate:"required"`
	User           string  `json:"user,omitempty"    yaml:"user,omitempty"`
	Subject        string  `json:"subject,omitempty" yaml:"subject,omitempty"`
	Body           *string `json:"body,omitempty"    yaml:"body,omitempty"`
}

// Event is one delivered conversation event
type Event struct {
	Type EventType `json:"type" yaml:"type"`
	Data EventData `json:"data" yaml:"data"`
}

// Key identifies a delivery for deduplication. The body is not part of it, so two
// messages that differ only in body collapse into one
type Key struct {
	Timestamp      int64
	ConversationID string
	Type           EventType
	User           string
	Subject        string
}

// Key returns the dedup tuple of e
func (e Event) Key() Key {
	return Key{
		Timestamp:      e.Data.Timestamp,
		ConversationID: e.Data.ConversationID,
		Type:           e.Type,
		User:           e.Data.User,
		Subject:        e.Data.Subject,
	}
}

// Fingerprint renders Key as "<timestamp>-<conversationId>-<type>-<user>-<subject>"
// for logs. It is not unique when fields contain '-'; compare Keys instead
func (e Event) Fingerprint() string {
	return fmt.Sprintf("%d-%s-%s-%s-%s", e.Data.Timestamp, e.Data.ConversationID, e.Type, e.Data.User, e.Data.Subject)
}

// Summary is the externally visible state of one conversation
type Summary struct {
	ID                   string  `json:"id"`
	AssignedUser         *string `json:"assignedUser"`
	Subject              string  `json:"subject"`
	Blurb                string  `json:"blurb"`
	MessageCount         int     `json:"messageCount"`
	LastUpdatedTimestamp int64   `json:"lastUpdatedTimestamp"`
}

// Stats are cumulative reducer counters plus current table sizes
type Stats struct {
	Received      uint64 `json:"received"`
	Applied       uint64 `json:"applied"`
	Duplicates    uint64 `json:"duplicates"`
	Rejected      uint64 `json:"rejected"`
	Unknown       uint64 `json:"unknown"`
	Failed        uint64 `json:"failed"`
	Conversations int    `json:"conversations"`
	Hidden        int    `json:"hidden"`
	Fingerprints  int    `json:"fingerprints"`
}
