package domain

import "time"

// Event is one audit log entry (stored in the audit_log table). Email is the
// account the operation targeted; UserID is set once the provider has
// identified the user.
type Event struct {
	ID        string
	Email     string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
