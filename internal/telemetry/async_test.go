package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"
)

// mockEventEmitter implements EventEmitter for tests.
type mockEventEmitter struct {
	mu      sync.Mutex
	events  []*Event
	emitErr error
	delay   time.Duration
}

func (m *mockEventEmitter) Emit(ctx context.Context, event *Event) error {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.emitErr
}

func (m *mockEventEmitter) getEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	// Should not panic.
	EmitAsync(nil, context.Background(), &Event{ID: "evt-1", EventType: "test"})
}

func TestEmitAsync_NilEvent(t *testing.T) {
	emitter := &mockEventEmitter{}

	EmitAsync(emitter, context.Background(), nil)
	time.Sleep(10 * time.Millisecond)

	if n := len(emitter.getEvents()); n != 0 {
		t.Errorf("expected 0 events, got %d", n)
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	emitter := &mockEventEmitter{}
	event := &Event{ID: "evt-1", UserID: "user-1", EventType: "test_event", Source: "test"}

	EmitAsync(emitter, context.Background(), event)
	time.Sleep(100 * time.Millisecond)

	events := emitter.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].UserID != "user-1" {
		t.Errorf("event user_id = %q, want %q", events[0].UserID, "user-1")
	}
	if events[0].EventType != "test_event" {
		t.Errorf("event type = %q, want %q", events[0].EventType, "test_event")
	}
}

func TestEmitAsync_UsesBackgroundContext(t *testing.T) {
	emitter := &mockEventEmitter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel the request context immediately

	EmitAsync(emitter, ctx, &Event{ID: "evt-1", EventType: "test"})
	time.Sleep(100 * time.Millisecond)

	if n := len(emitter.getEvents()); n != 1 {
		t.Errorf("expected 1 event (context.Background used), got %d", n)
	}
}

func TestEmitAsync_ErrorHandling(t *testing.T) {
	emitter := &mockEventEmitter{emitErr: context.DeadlineExceeded}

	// Should not panic on error; the error is logged and dropped.
	EmitAsync(emitter, context.Background(), &Event{ID: "evt-1", EventType: "test"})
	time.Sleep(100 * time.Millisecond)
}

func TestEmitAsync_ConcurrentAccess(t *testing.T) {
	emitter := &mockEventEmitter{}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(emitter, ctx, &Event{ID: "evt", EventType: "test"})
		}()
	}
	wg.Wait()
	time.Sleep(200 * time.Millisecond)

	if n := len(emitter.getEvents()); n != 10 {
		t.Errorf("expected 10 events, got %d", n)
	}
}
