// Package apperr defines the closed set of errors the API reports to clients.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

// Kind tags an error with its category. The string value is sent to clients
// as the "type" field of error responses.
type Kind string

const (
	KindValidation       Kind = "ValidationError"
	KindInvalidID        Kind = "InvalidIdentifier"
	KindNotFound         Kind = "NotFound"
	KindStoreUnavailable Kind = "StoreUnavailable"
	KindStoreTimeout     Kind = "StoreTimeout"
	KindInternal         Kind = "InternalError"
)

// HTTPStatus returns the response status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidID:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case KindStoreTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// FieldError describes a single failed field rule.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error is the application error type.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Messages used across the API.
const (
	MsgEmptyBody        = "Request body is empty"
	MsgInvalidBody      = "Invalid request body"
	MsgFormNotFound     = "Form not found"
	MsgInvalidFormID    = "Invalid form ID"
	MsgStoreUnavailable = "Database not connected"
	MsgStoreTimeout     = "Database operation timed out"
	MsgInternal         = "Internal server error"
)

// Validation builds a validation error whose message joins every field
// message with ", ".
func Validation(fields ...FieldError) *Error {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Message != "" {
			msgs = append(msgs, f.Message)
		}
	}
	msg := strings.Join(msgs, ", ")
	if msg == "" {
		msg = "Validation error"
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// EmptyBody is returned when a request carries no fields.
func EmptyBody() *Error {
	return &Error{Kind: KindValidation, Message: MsgEmptyBody}
}

// InvalidBody is returned when a request body cannot be decoded.
func InvalidBody(err error) *Error {
	return &Error{Kind: KindValidation, Message: MsgInvalidBody, Err: err}
}

// NotFound is returned when no form matches an id.
func NotFound() *Error {
	return &Error{Kind: KindNotFound, Message: MsgFormNotFound}
}

// InvalidID is returned when an id is not in the store's identifier format.
func InvalidID(err error) *Error {
	return &Error{Kind: KindInvalidID, Message: MsgInvalidFormID, Err: err}
}

// StoreUnavailable is returned when the store cannot be reached.
func StoreUnavailable(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: MsgStoreUnavailable, Err: err}
}

// StoreTimeout is returned when a store call exceeds its deadline.
func StoreTimeout(err error) *Error {
	return &Error{Kind: KindStoreTimeout, Message: MsgStoreTimeout, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Err: err}
}

// As extracts an *Error from err. Errors outside the taxonomy become Internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	return As(err).Kind
}
