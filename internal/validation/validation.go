// Package validation checks form fields before they reach the store.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/model"
)

// Default field length limits, counted in runes.
const (
	DefaultMaxNameLength    = 200
	DefaultMaxEmailLength   = 320
	DefaultMaxMessageLength = 5000
)

// Options configures the field rules.
type Options struct {
	MaxNameLength    int
	MaxEmailLength   int
	MaxMessageLength int
	// CheckEmailFormat adds a syntactic email check on top of presence.
	CheckEmailFormat bool
}

// DefaultOptions returns presence-only rules with default length caps.
func DefaultOptions() Options {
	return Options{
		MaxNameLength:    DefaultMaxNameLength,
		MaxEmailLength:   DefaultMaxEmailLength,
		MaxMessageLength: DefaultMaxMessageLength,
	}
}

// Validator applies field rules to forms and patches.
// Safe for concurrent use.
type Validator struct {
	validate *validator.Validate
	rules    map[string]string
}

// New builds a Validator. Non-positive limits fall back to the defaults.
func New(opts Options) *Validator {
	if opts.MaxNameLength <= 0 {
		opts.MaxNameLength = DefaultMaxNameLength
	}
	if opts.MaxEmailLength <= 0 {
		opts.MaxEmailLength = DefaultMaxEmailLength
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = DefaultMaxMessageLength
	}

	emailRule := fmt.Sprintf("required,max=%d", opts.MaxEmailLength)
	if opts.CheckEmailFormat {
		emailRule += ",email"
	}

	return &Validator{
		validate: validator.New(),
		rules: map[string]string{
			model.FieldName:    fmt.Sprintf("required,max=%d", opts.MaxNameLength),
			model.FieldEmail:   emailRule,
			model.FieldMessage: fmt.Sprintf("required,max=%d", opts.MaxMessageLength),
		},
	}
}

// Form validates every required field of a new submission.
func (v *Validator) Form(f *model.Form) error {
	var failures []apperr.FieldError
	for _, field := range model.RequiredFields {
		failures = append(failures, v.check(field, f.Value(field))...)
	}
	return result(failures)
}

// Patch validates only the fields present in an update.
func (v *Validator) Patch(p model.FormPatch) error {
	fields := p.Fields()
	var failures []apperr.FieldError
	for _, field := range model.RequiredFields {
		if value, ok := fields[field]; ok {
			failures = append(failures, v.check(field, value)...)
		}
	}
	return result(failures)
}

func (v *Validator) check(field, value string) []apperr.FieldError {
	err := v.validate.Var(value, v.rules[field])
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperr.FieldError{{Field: field, Rule: "invalid", Message: field + " is invalid"}}
	}

	out := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperr.FieldError{
			Field:   field,
			Rule:    fe.Tag(),
			Message: message(field, fe.Tag(), fe.Param()),
		})
	}
	return out
}

func message(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "email":
		return field + " must be a valid email address"
	default:
		return fmt.Sprintf("%s failed %s validation", field, strings.ToLower(tag))
	}
}

func result(failures []apperr.FieldError) error {
	if len(failures) == 0 {
		return nil
	}
	return apperr.Validation(failures...)
}

// Required reports the store-level invariant: a field list that must not be
// empty. Adapters call it right before writing.
func Required(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	failures := make([]apperr.FieldError, len(missing))
	for i, field := range missing {
		failures[i] = apperr.FieldError{
			Field:   field,
			Rule:    "required",
			Message: message(field, "required", ""),
		}
	}
	return apperr.Validation(failures...)
}
