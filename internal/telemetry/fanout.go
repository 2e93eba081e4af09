package telemetry

import "context"

type fanout struct {
	emitters []EventEmitter
}

// Fanout returns an EventEmitter that forwards each event to every non-nil
// emitter. Returns nil when no emitters are given, so callers can pass the
// result straight to EmitAsync.
func Fanout(emitters ...EventEmitter) EventEmitter {
	active := make([]EventEmitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			active = append(active, e)
		}
	}
	if len(active) == 0 {
		return nil
	}
	if len(active) == 1 {
		return active[0]
	}
	return &fanout{emitters: active}
}

// Emit forwards the event to all emitters and returns the last error, so one
// failing sink does not stop the others.
func (f *fanout) Emit(ctx context.Context, event *Event) error {
	var lastErr error
	for _, e := range f.emitters {
		if err := e.Emit(ctx, event); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
