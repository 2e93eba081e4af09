package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestFanout_NoEmittersReturnsNil(t *testing.T) {
	if Fanout() != nil {
		t.Error("Fanout() = non-nil, want nil")
	}
	if Fanout(nil, nil) != nil {
		t.Error("Fanout(nil, nil) = non-nil, want nil")
	}
}

func TestFanout_SingleEmitterReturnedDirectly(t *testing.T) {
	emitter := &mockEventEmitter{}
	if got := Fanout(nil, emitter); got != emitter {
		t.Errorf("Fanout() = %T, want the single emitter itself", got)
	}
}

func TestFanout_ForwardsToAllEmitters(t *testing.T) {
	a := &mockEventEmitter{}
	b := &mockEventEmitter{}
	f := Fanout(a, b)

	if err := f.Emit(context.Background(), &Event{ID: "evt-1"}); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if len(a.getEvents()) != 1 || len(b.getEvents()) != 1 {
		t.Errorf("events = %d/%d, want 1/1", len(a.getEvents()), len(b.getEvents()))
	}
}

func TestFanout_OneFailingSinkDoesNotStopOthers(t *testing.T) {
	failing := &mockEventEmitter{emitErr: errors.New("sink down")}
	healthy := &mockEventEmitter{}
	f := Fanout(failing, healthy)

	err := f.Emit(context.Background(), &Event{ID: "evt-1"})
	if err == nil {
		t.Error("Emit() error = nil, want sink failure reported")
	}
	if len(healthy.getEvents()) != 1 {
		t.Errorf("healthy sink events = %d, want 1", len(healthy.getEvents()))
	}
}
