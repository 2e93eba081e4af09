// Package domain defines the partial profile update.
package domain

// Patch is a partial update of mutable profile attributes. Nil fields are
// omitted and left untouched at the provider, never cleared. Email is
// immutable here; password changes go through the reset flow.
type Patch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p *Patch) Empty() bool {
	return p == nil || (p.FirstName == nil && p.LastName == nil && p.Phone == nil)
}
