package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	perr "inboxd/internal/platform/errors"
	"inboxd/internal/platform/logger"
	kit "inboxd/internal/platform/testkit"
	convdomain "inboxd/internal/services/conversations/domain"
)

func recording(n int) []convdomain.Event {
	out := make([]convdomain.Event, n)
	for i := range out {
		out[i] = convdomain.Event{Type: convdomain.EventMessageReceived, Data: convdomain.EventData{
			Timestamp: int64(i), ConversationID: "c1", Body: kit.Ptr("m"),
		}}
	}
	return out
}

type sink struct {
	mu  sync.Mutex
	got []int64
}

func (s *sink) fn(_ context.Context, e convdomain.Event) {
	s.mu.Lock()
	s.got = append(s.got, e.Data.Timestamp)
	s.mu.Unlock()
}

func (s *sink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func TestNext_DeliversInOrder(t *testing.T) {
	sim := New(recording(3))
	var a, b sink
	sim.Subscribe(a.fn)
	sim.Subscribe(b.fn)

	for i := 0; i < 3; i++ {
		if _, err := sim.Next(context.Background()); err != nil {
			t.Fatalf("Next #%d: %v", i, err)
		}
	}
	for _, s := range []*sink{&a, &b} {
		if len(s.got) != 3 || s.got[0] != 0 || s.got[2] != 2 {
			t.Fatalf("subscriber got %v", s.got)
		}
	}
	st, err := sim.Next(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeExhausted) || st.Position != 3 || st.Delivered != 3 {
		t.Fatalf("after end: %+v, %v", st, err)
	}
}

func TestNext_WithoutSubscribersKeepsPosition(t *testing.T) {
	sim := New(recording(2))
	st, err := sim.Next(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) || st.Position != 0 {
		t.Fatalf("Next without subscribers: %+v, %v", st, err)
	}

	var s sink
	_, cancel := sim.Subscribe(s.fn)
	if _, err := sim.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	cancel()
	cancel()
	if st := sim.Status(); st.Subscribers != 0 || st.Position != 1 {
		t.Fatalf("after cancel: %+v", st)
	}
	if _, err := sim.Next(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("cancelled subscriber should not count: %v", err)
	}
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	sim := New(recording(2))
	var s sink
	sim.Subscribe(func(context.Context, convdomain.Event) { panic("bad subscriber") })
	sim.Subscribe(s.fn)

	kit.MustNotPanic(t, func() {
		_, _ = sim.Next(context.Background())
		_, _ = sim.Next(context.Background())
	})
	if s.len() != 2 {
		t.Fatalf("healthy subscriber got %d events, want 2", s.len())
	}
	if st := sim.Status(); st.Panics != 2 {
		t.Fatalf("panics = %d, want 2", st.Panics)
	}
}

func TestSubscriberPanicLogIsSanitized(t *testing.T) {
	var buf bytes.Buffer
	rec := recording(1)
	rec[0].Data.ConversationID = "c\x1b[31m1"
	sim := New(rec, WithLogger(logger.New(logger.Options{Level: "error", Format: "json", Writer: &buf})))
	sim.Subscribe(func(context.Context, convdomain.Event) { panic("bad subscriber") })

	if _, err := sim.Next(context.Background()); err != nil {
		t.Fatalf("Next: %v", err)
	}
	kit.MustContain(t, buf.String(), `"conversation_id":"c[31m1"`)
}

func TestStartStop(t *testing.T) {
	sim := New(recording(1))
	st, err := sim.Start(context.Background())
	if err != nil || !st.Streaming || st.RunID == "" {
		t.Fatalf("Start: %+v, %v", st, err)
	}
	if _, err := sim.Start(context.Background()); !perr.IsCode(err, perr.ErrorCodeConflict) {
		t.Fatalf("second Start: %v", err)
	}
	if st := sim.Stop(context.Background()); st.Streaming || st.RunID != "" {
		t.Fatalf("Stop: %+v", st)
	}
	sim.Stop(context.Background())

	var s sink
	sim.Subscribe(s.fn)
	_, _ = sim.Next(context.Background())
	if _, err := sim.Start(context.Background()); !perr.IsCode(err, perr.ErrorCodeExhausted) {
		t.Fatalf("Start on spent recording: %v", err)
	}
}

func TestRun_StreamsAtCadence(t *testing.T) {
	sim := New(recording(5), WithInterval(5*time.Millisecond))
	var s sink
	sim.Subscribe(s.fn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { _ = sim.Run(ctx); close(done) }()
	t.Cleanup(func() { cancel(); <-done })

	time.Sleep(30 * time.Millisecond)
	if s.len() != 0 {
		t.Fatalf("stopped feed delivered %d events", s.len())
	}

	if _, err := sim.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	kit.Eventually(t, 2*time.Second, func() bool { return s.len() == 5 }, "all events delivered")
	kit.Eventually(t, time.Second, func() bool { return !sim.Status().Streaming }, "feed stops when spent")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, ts := range s.got {
		if ts != int64(i) {
			t.Fatalf("out of order delivery: %v", s.got)
		}
	}
}

func TestRun_StopHaltsDelivery(t *testing.T) {
	sim := New(recording(1000), WithInterval(2*time.Millisecond))
	var s sink
	sim.Subscribe(s.fn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { _ = sim.Run(ctx); close(done) }()

	_, _ = sim.Start(ctx)
	kit.Eventually(t, 2*time.Second, func() bool { return s.len() >= 2 }, "some events delivered")
	sim.Stop(ctx)
	n := s.len()
	time.Sleep(20 * time.Millisecond)
	if got := s.len(); got > n+1 {
		t.Fatalf("delivery continued after Stop: %d -> %d", n, got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestStatus_Defaults(t *testing.T) {
	st := New(recording(4), WithInterval(-1)).Status()
	if st.Total != 4 || st.Interval != DefaultInterval.String() || st.Streaming {
		t.Fatalf("status = %+v", st)
	}
}
