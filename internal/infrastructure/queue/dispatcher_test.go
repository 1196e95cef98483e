package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mobilekit/auth-service/internal/core/domain"
)

type captureRecorder struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	done   chan struct{}
	want   int
}

func newCaptureRecorder(want int) *captureRecorder {
	return &captureRecorder{done: make(chan struct{}), want: want}
}

func (r *captureRecorder) Record(ctx context.Context, event domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if len(r.events) == r.want {
		close(r.done)
	}
	return nil
}

func (r *captureRecorder) wait(t *testing.T) []domain.AuthEvent {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for events")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuthEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	recorder := newCaptureRecorder(3)
	d := NewDispatcher(2, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(domain.AuthEvent{ID: "e1", UserID: "u1", Action: domain.ActionRegister})
	d.Enqueue(domain.AuthEvent{ID: "e2", UserID: "u2", Action: domain.ActionLogin})
	d.Enqueue(domain.AuthEvent{ID: "e3", UserID: "u1", Action: domain.ActionLogout})

	events := recorder.wait(t)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
}

func TestDispatcher_SameUserSameWorker(t *testing.T) {
	d := NewDispatcher(4, newCaptureRecorder(0), zerolog.Nop())

	first := d.shardIndex("u1")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("u1"); got != first {
			t.Fatalf("shard index not stable: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= 4 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_PerUserOrdering(t *testing.T) {
	recorder := newCaptureRecorder(5)
	d := NewDispatcher(3, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	actions := []domain.AuthAction{
		domain.ActionRegister,
		domain.ActionLogin,
		domain.ActionLogout,
		domain.ActionLogin,
		domain.ActionLogout,
	}
	for _, a := range actions {
		d.Enqueue(domain.AuthEvent{UserID: "u1", Action: a})
	}

	events := recorder.wait(t)
	for i, e := range events {
		if e.Action != actions[i] {
			t.Fatalf("event %d out of order: got %s, want %s", i, e.Action, actions[i])
		}
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, newCaptureRecorder(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
