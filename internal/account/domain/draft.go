// Package domain defines the registration draft and its local validation.
package domain

import (
	"regexp"

	identitydomain "account-orchestrator/internal/identity/domain"
)

// phonePattern is E.164: leading + followed by 1-15 digits.
var phonePattern = regexp.MustCompile(`^\+[0-9]{1,15}$`)

const minPasswordLen = 6

// Draft is a registration submission. All fields are mandatory. It exists
// only until the provider accepts or rejects it and is never persisted.
type Draft struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Validate checks the draft locally before any network call. Returns a
// *ValidationError describing the first failure, or nil.
func (d *Draft) Validate() error {
	switch {
	case d.Email == "":
		return identitydomain.NewValidationError("email", "is required")
	case d.Password == "":
		return identitydomain.NewValidationError("password", "is required")
	case d.FirstName == "":
		return identitydomain.NewValidationError("firstName", "is required")
	case d.LastName == "":
		return identitydomain.NewValidationError("lastName", "is required")
	case d.Phone == "":
		return identitydomain.NewValidationError("phone", "is required")
	}
	if len(d.Password) < minPasswordLen {
		return identitydomain.NewValidationError("password", "must be at least 6 characters")
	}
	if !phonePattern.MatchString(d.Phone) {
		return identitydomain.NewValidationError("phone", "must be in international format, e.g. +15550001111")
	}
	return nil
}
