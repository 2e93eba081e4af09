// Package telemetry defines the event shape and emitter abstraction used for
// best-effort operational telemetry.
package telemetry

import (
	"encoding/json"
	"time"
)

// Event is one telemetry record. Metadata is pre-serialized JSON specific to
// the event type (e.g. request method/path/status for http_request events).
type Event struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	EventType string          `json:"eventType"`
	Source    string          `json:"source"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
