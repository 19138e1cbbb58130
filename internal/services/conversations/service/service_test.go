package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	perr "inboxd/internal/platform/errors"
	kit "inboxd/internal/platform/testkit"
	"inboxd/internal/services/conversations/domain"
)

var bg = context.Background()

func TestScenarioA_FirstMessageCreatesConversation(t *testing.T) {
	s := New()
	s.Apply(bg, msg(10, "c1", "alice", "hi", "hello"))

	c := mustGet(t, s, "c1")
	if c.MessageCount != 1 || c.Blurb != "hello" || c.Subject != "hi" {
		t.Fatalf("summary = %+v", c)
	}
	if c.AssignedUser == nil || *c.AssignedUser != "alice" {
		t.Fatalf("assignedUser = %v, want alice", c.AssignedUser)
	}
	if c.LastUpdatedTimestamp != 10 {
		t.Fatalf("lastUpdatedTimestamp = %d, want 10", c.LastUpdatedTimestamp)
	}
}

func TestScenarioB_TwoTypistsInInsertionOrder(t *testing.T) {
	s := New()
	s.Apply(bg, msg(10, "c1", "alice", "hi", "hello"))
	s.Apply(bg, ev(domain.EventTypingStarted, 11, "c1", "bob", "", nil))
	if got := mustGet(t, s, "c1").Blurb; got != "bob is replying..." {
		t.Fatalf("blurb = %q", got)
	}
	s.Apply(bg, ev(domain.EventTypingStarted, 12, "c1", "carol", "", nil))
	if got := mustGet(t, s, "c1").Blurb; got != "bob, carol are replying..." {
		t.Fatalf("blurb = %q", got)
	}
}

func TestScenarioC_TypingStopsRestoresMessage(t *testing.T) {
	s := New()
	s.Apply(bg, msg(10, "c1", "alice", "hi", "hello"))
	s.Apply(bg, ev(domain.EventTypingStarted, 11, "c1", "bob", "", nil))
	s.Apply(bg, ev(domain.EventTypingStarted, 12, "c1", "carol", "", nil))

	s.Apply(bg, ev(domain.EventTypingStopped, 13, "c1", "bob", "", nil))
	if got := mustGet(t, s, "c1").Blurb; got != "carol is replying..." {
		t.Fatalf("blurb after bob stops = %q", got)
	}
	s.Apply(bg, ev(domain.EventTypingStopped, 14, "c1", "carol", "", nil))
	if got := mustGet(t, s, "c1").Blurb; got != "hello" {
		t.Fatalf("blurb after everyone stops = %q, want hello", got)
	}
}

func TestScenarioD_AssignedWithoutUserIsIsolated(t *testing.T) {
	s, rec := newRecorded()
	s.Apply(bg, msg(10, "c1", "alice", "hi", "hello"))
	s.Apply(bg, ev(domain.EventAssigned, 11, "c1", "", "", nil))

	o := rec.last(t)
	if o.Status != domain.StatusFailed || !perr.IsCode(o.Err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("outcome = %+v, want failed invalid_argument", o)
	}
	if e, _ := perr.As(o.Err); e.Field() != "user" || e.Op() != "assigned" {
		t.Fatalf("error field/op = %q/%q", e.Field(), e.Op())
	}

	c := mustGet(t, s, "c1")
	if c.AssignedUser == nil || *c.AssignedUser != "alice" {
		t.Fatalf("assignedUser changed: %v", c.AssignedUser)
	}
	if c.LastUpdatedTimestamp != 11 {
		t.Fatalf("failed transition should still advance the timestamp, got %d", c.LastUpdatedTimestamp)
	}

	s.Apply(bg, ev(domain.EventAssigned, 12, "c1", "dave", "", nil))
	if rec.last(t).Status != domain.StatusApplied {
		t.Fatalf("next event should apply cleanly")
	}
	if c := mustGet(t, s, "c1"); c.AssignedUser == nil || *c.AssignedUser != "dave" {
		t.Fatalf("assignedUser = %v, want dave", c.AssignedUser)
	}
}

func TestScenarioE_BodyIsNotPartOfTheFingerprint(t *testing.T) {
	s, rec := newRecorded()
	s.Apply(bg, msg(10, "c1", "alice", "hi", "hello"))
	s.Apply(bg, msg(10, "c1", "alice", "hi", "a different message"))

	if rec.last(t).Status != domain.StatusDuplicate {
		t.Fatalf("second delivery should be a duplicate")
	}
	c := mustGet(t, s, "c1")
	if c.MessageCount != 1 || c.Blurb != "hello" {
		t.Fatalf("summary = %+v, second body must be dropped", c)
	}
}

func TestApply_DashesInFieldsDoNotCollide(t *testing.T) {
	s, rec := newRecorded()
	s.Apply(bg, ev(domain.EventAssigned, 5, "c1", "x-y", "z", nil))
	s.Apply(bg, ev(domain.EventAssigned, 5, "c1", "x", "y-z", nil))

	if rec.last(t).Status != domain.StatusApplied {
		t.Fatalf("second event status = %v, want applied", rec.last(t).Status)
	}
	c := mustGet(t, s, "c1")
	if c.AssignedUser == nil || *c.AssignedUser != "x" {
		t.Fatalf("assignedUser = %v, want x", c.AssignedUser)
	}
	if st := s.Stats(bg); st.Fingerprints != 2 || st.Duplicates != 0 {
		t.Fatalf("stats = %+v, want two fingerprints and no duplicates", st)
	}
}

func TestApply_StoresBodyAsSent(t *testing.T) {
	s, _ := newRecorded()
	body := "ding\adong caf\u00e9"
	s.Apply(bg, msg(10, "c1", "alice", "hi", body))

	if c := mustGet(t, s, "c1"); c.Blurb != body {
		t.Fatalf("blurb = %q, want %q", c.Blurb, body)
	}
	s.Apply(bg, ev(domain.EventTypingStarted, 11, "c1", "bob", "hi", nil))
	s.Apply(bg, ev(domain.EventTypingStopped, 12, "c1", "bob", "hi", nil))
	if c := mustGet(t, s, "c1"); c.Blurb != body {
		t.Fatalf("blurb after typing = %q, want %q", c.Blurb, body)
	}
}

func TestApply_RejectsMissingConversationID(t *testing.T) {
	s, rec := newRecorded()
	s.Apply(bg, msg(10, "", "alice", "hi", "hello"))

	o := rec.last(t)
	if o.Status != domain.StatusRejected || !perr.IsCode(o.Err, perr.ErrorCodeValidation) {
		t.Fatalf("outcome = %+v", o)
	}
	if e, _ := perr.As(o.Err); e.Field() != "conversationId" {
		t.Fatalf("rejected field = %q, want conversationId", e.Field())
	}
	st := s.Stats(bg)
	if st.Conversations != 0 || st.Fingerprints != 0 || st.Rejected != 1 {
		t.Fatalf("rejection had side effects: %+v", st)
	}
}

func TestApply_UnknownTypeStillProcessed(t *testing.T) {
	s, rec := newRecorded()
	unknown := ev("conversationClosed", 20, "c9", "alice", "bye", nil)
	s.Apply(bg, unknown)

	if rec.last(t).Status != domain.StatusUnknownType {
		t.Fatalf("status = %v", rec.last(t).Status)
	}
	c := mustGet(t, s, "c9")
	if c.LastUpdatedTimestamp != 20 || c.MessageCount != 0 || c.Subject != "bye" {
		t.Fatalf("summary = %+v", c)
	}
	s.Apply(bg, unknown)
	if rec.last(t).Status != domain.StatusDuplicate {
		t.Fatalf("unknown event should be in the ledger")
	}
}

func TestApply_UnassignedAndTypingStoppedNoop(t *testing.T) {
	s := New()
	s.Apply(bg, msg(10, "c1", "alice", "hi", "hello"))
	s.Apply(bg, ev(domain.EventTypingStopped, 11, "c1", "", "", nil))
	s.Apply(bg, ev(domain.EventTypingStopped, 12, "c1", "ghost", "", nil))
	s.Apply(bg, ev(domain.EventUnassigned, 13, "c1", "", "", nil))

	c := mustGet(t, s, "c1")
	if c.AssignedUser != nil {
		t.Fatalf("assignedUser = %v, want nil", *c.AssignedUser)
	}
	if c.Blurb != "hello" || s.Stats(bg).Failed != 0 {
		t.Fatalf("no-op stops should not fail: %+v", c)
	}
}

func TestApply_TypingStartedWithoutUserFails(t *testing.T) {
	s, rec := newRecorded()
	s.Apply(bg, ev(domain.EventTypingStarted, 1, "c1", "", "", nil))
	if o := rec.last(t); o.Status != domain.StatusFailed || !perr.IsCode(o.Err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("outcome = %+v", o)
	}
}

func TestApply_MessageWhileTypingKeepsTypingBlurb(t *testing.T) {
	s := New()
	s.Apply(bg, ev(domain.EventTypingStarted, 1, "c1", "bob", "", nil))
	s.Apply(bg, msg(2, "c1", "alice", "new subject", "fresh"))

	c := mustGet(t, s, "c1")
	if c.Blurb != "bob is replying..." || c.Subject != "new subject" || c.MessageCount != 1 {
		t.Fatalf("summary = %+v", c)
	}
	s.Apply(bg, ev(domain.EventTypingStopped, 3, "c1", "bob", "", nil))
	if got := mustGet(t, s, "c1").Blurb; got != "fresh" {
		t.Fatalf("blurb = %q, want fresh", got)
	}
}

func TestApply_MessageWithoutBody(t *testing.T) {
	s := New()
	s.Apply(bg, msg(1, "c1", "alice", "hi", "hello"))
	s.Apply(bg, ev(domain.EventMessageReceived, 2, "c1", "alice", "hi", nil))

	c := mustGet(t, s, "c1")
	if c.MessageCount != 2 || c.Blurb != "" {
		t.Fatalf("summary = %+v, want two messages and empty blurb", c)
	}
}

func TestApply_TransitionPanicIsContained(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &resynth, func([]string, string, *string) string { panic("synth exploded") })

	s, rec := newRecorded()
	kit.MustNotPanic(t, func() {
		s.Apply(bg, ev(domain.EventTypingStarted, 7, "c1", "bob", "", nil))
	})
	o := rec.last(t)
	if o.Status != domain.StatusFailed || !perr.IsCode(o.Err, perr.ErrorCodePanic) {
		t.Fatalf("outcome = %+v", o)
	}
	if c := mustGet(t, s, "c1"); c.LastUpdatedTimestamp != 7 {
		t.Fatalf("timestamp = %d, want 7", c.LastUpdatedTimestamp)
	}
	if s.Stats(bg).Fingerprints != 1 {
		t.Fatalf("failed event should be marked processed")
	}
}

func TestApply_ObserverPanicIsContained(t *testing.T) {
	calls := 0
	s := New(
		WithObserver(func(context.Context, domain.Outcome) { panic("observer") }),
		WithObserver(func(context.Context, domain.Outcome) { calls++ }),
	)
	kit.MustNotPanic(t, func() { s.Apply(bg, msg(1, "c1", "a", "s", "b")) })
	if calls != 1 {
		t.Fatalf("later observers should still run, calls = %d", calls)
	}
}

func TestProperty_Idempotence(t *testing.T) {
	events := []domain.Event{
		msg(10, "c1", "alice", "hi", "hello"),
		ev(domain.EventTypingStarted, 11, "c1", "bob", "", nil),
		ev(domain.EventAssigned, 12, "c1", "dave", "", nil),
		msg(13, "c2", "", "other", "x"),
	}
	once, twice := New(), New()
	for _, e := range events {
		once.Apply(bg, e)
		twice.Apply(bg, e)
		twice.Apply(bg, e)
	}
	a, _ := json.Marshal(once.Conversations(bg))
	b, _ := json.Marshal(twice.Conversations(bg))
	if string(a) != string(b) {
		t.Fatalf("replay changed state:\n%s\n%s", a, b)
	}
	if twice.Stats(bg).Duplicates != uint64(len(events)) {
		t.Fatalf("duplicates = %d", twice.Stats(bg).Duplicates)
	}
}

func TestProperty_MonotonicTimestamp(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New()
	var max int64
	for i := 0; i < 200; i++ {
		ts := rng.Int63n(1000)
		if ts > max {
			max = ts
		}
		s.Apply(bg, msg(ts, "c1", "alice", fmt.Sprintf("s%d", i), "b"))
	}
	if got := mustGet(t, s, "c1").LastUpdatedTimestamp; got != max {
		t.Fatalf("lastUpdatedTimestamp = %d, want running max %d", got, max)
	}
}

func TestProperty_ExclusionOrderingMasking(t *testing.T) {
	s := New()
	s.Apply(bg, msg(5, "b", "alice", "s", "x"))
	s.Apply(bg, msg(9, "a", "alice", "s", "x"))
	s.Apply(bg, msg(5, "a2", "", "s", "x"))
	s.Apply(bg, msg(100, "hidden", domain.SentinelUser, "s", "x"))
	s.Apply(bg, msg(7, "later-hidden", "alice", "s", "x"))
	s.Apply(bg, ev(domain.EventAssigned, 8, "later-hidden", domain.SentinelUser, "", nil))

	list := s.Conversations(bg)
	var ids []string
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	want := []string{"a", "a2", "b"}
	if fmt.Sprint(ids) != fmt.Sprint(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}

	raw, _ := json.Marshal(list)
	var maps []map[string]any
	_ = json.Unmarshal(raw, &maps)
	for _, m := range maps {
		if _, ok := m["typingUsers"]; ok {
			t.Fatalf("typingUsers leaked")
		}
		if _, ok := m["mostRecentMessage"]; ok {
			t.Fatalf("mostRecentMessage leaked")
		}
	}

	if _, err := s.Conversation(bg, "hidden"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("hidden conversation should be not found, got %v", err)
	}
	if _, err := s.Conversation(bg, "nope"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("unknown conversation should be not found, got %v", err)
	}
	if st := s.Stats(bg); st.Hidden != 2 || st.Conversations != 5 {
		t.Fatalf("stats = %+v", st)
	}

	s.Apply(bg, ev(domain.EventUnassigned, 9, "hidden", "", "", nil))
	if _, err := s.Conversation(bg, "hidden"); err != nil {
		t.Fatalf("unassigned conversation should reappear: %v", err)
	}
}

func TestConversations_EmptyIsNonNil(t *testing.T) {
	if list := New().Conversations(bg); list == nil || len(list) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", list)
	}
}

func TestConversations_FailureYieldsEmpty(t *testing.T) {
	kit.Serial(t)
	kit.Swap(t, &order, func([]domain.Summary) { panic("sort exploded") })

	s := New()
	s.Apply(bg, msg(1, "c1", "alice", "s", "x"))
	var list []domain.Summary
	kit.MustNotPanic(t, func() { list = s.Conversations(bg) })
	if list == nil || len(list) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", list)
	}
	// lock must have been released
	if _, err := s.Conversation(bg, "c1"); err != nil {
		t.Fatalf("Conversation after failed projection: %v", err)
	}
}

func TestSummary_IsACopy(t *testing.T) {
	s := New()
	s.Apply(bg, msg(1, "c1", "alice", "s", "x"))
	c := mustGet(t, s, "c1")
	*c.AssignedUser = "mallory"
	if got := mustGet(t, s, "c1"); *got.AssignedUser != "alice" {
		t.Fatalf("summary aliases internal state")
	}
}

func TestApply_ConcurrentDeliveries(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.Apply(bg, msg(int64(i), fmt.Sprintf("c%d", i%5), "alice", fmt.Sprintf("w%d", w), "x"))
				_ = s.Conversations(bg)
			}
		}(w)
	}
	wg.Wait()
	st := s.Stats(bg)
	if st.Applied != 400 || st.Conversations != 5 || st.Fingerprints != 400 {
		t.Fatalf("stats = %+v", st)
	}
}
