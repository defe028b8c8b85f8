// Package model defines domain entities for the application.
package model

import "time"

// Field names as they appear on the wire and in the store.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
)

// RequiredFields lists the text fields every stored form must carry.
// Order is fixed so aggregated messages are deterministic.
var RequiredFields = []string{FieldName, FieldEmail, FieldMessage}

// Form represents one contact-form submission.
type Form struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Value returns the text value of a named field.
func (f *Form) Value(field string) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldMessage:
		return f.Message
	}
	return ""
}

// Missing returns the required fields that are empty.
func (f *Form) Missing() []string {
	var missing []string
	for _, field := range RequiredFields {
		if f.Value(field) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Clone returns a copy of the form.
func (f *Form) Clone() *Form {
	c := *f
	return &c
}

// FormPatch carries a partial or full replacement of the text fields.
// Nil fields are left untouched.
type FormPatch struct {
	Name    *string
	Email   *string
	Message *string
}

// IsEmpty reports whether the patch changes nothing.
func (p FormPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Message == nil
}

// Fields returns the present fields and their new values in RequiredFields order.
func (p FormPatch) Fields() map[string]string {
	out := make(map[string]string, 3)
	if p.Name != nil {
		out[FieldName] = *p.Name
	}
	if p.Email != nil {
		out[FieldEmail] = *p.Email
	}
	if p.Message != nil {
		out[FieldMessage] = *p.Message
	}
	return out
}

// Cleared returns the present fields that would be set to an empty value.
func (p FormPatch) Cleared() []string {
	fields := p.Fields()
	var cleared []string
	for _, field := range RequiredFields {
		if v, ok := fields[field]; ok && v == "" {
			cleared = append(cleared, field)
		}
	}
	return cleared
}

// Apply writes the present fields onto f.
func (p FormPatch) Apply(f *Form) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Email != nil {
		f.Email = *p.Email
	}
	if p.Message != nil {
		f.Message = *p.Message
	}
}
