// Package store defines the document store adapter contract for forms.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/model"
	"github.com/formapi/formapi/internal/validation"
)

// Sentinel errors returned by adapters.
var (
	ErrNotFound    = errors.New("form not found")
	ErrInvalidID   = errors.New("invalid form identifier")
	ErrUnavailable = errors.New("store unavailable")
	ErrTimeout     = errors.New("store operation timed out")
)

// FormRepository persists forms in a single collection.
type FormRepository interface {
	// Insert stores a new form and returns it with id and timestamps set.
	Insert(ctx context.Context, f *model.Form) (*model.Form, error)
	// FindAll returns every stored form in store-native order.
	FindAll(ctx context.Context) ([]*model.Form, error)
	FindByID(ctx context.Context, id string) (*model.Form, error)
	// UpdateByID applies the present patch fields and returns the result.
	UpdateByID(ctx context.Context, id string, patch model.FormPatch) (*model.Form, error)
	// DeleteByID removes a form and returns what was removed.
	DeleteByID(ctx context.Context, id string) (*model.Form, error)
}

// Info describes the store connection for status reporting.
type Info struct {
	Driver   string
	Database string
	Host     string
}

// Store is a connected FormRepository with health reporting.
type Store interface {
	FormRepository
	StateSource
	Ping(ctx context.Context) error
	Info() Info
	Close(ctx context.Context) error
}

// Options bounds connection behaviour for every adapter.
type Options struct {
	ConnectTimeout time.Duration
	SocketTimeout  time.Duration
	MaxPoolSize    int
	HealthInterval time.Duration
}

// DefaultOptions returns the recommended timeouts.
func DefaultOptions() Options {
	return Options{
		ConnectTimeout: 15 * time.Second,
		SocketTimeout:  45 * time.Second,
		MaxPoolSize:    10,
		HealthInterval: 10 * time.Second,
	}
}

// CheckInsert enforces the store-level invariant for new records.
func CheckInsert(f *model.Form) error {
	return validation.Required(f.Missing())
}

// CheckPatch enforces the store-level invariant for updates.
func CheckPatch(p model.FormPatch) error {
	return validation.Required(p.Cleared())
}

// Translate maps adapter errors onto the application taxonomy.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound()
	case errors.Is(err, ErrInvalidID):
		return apperr.InvalidID(err)
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperr.StoreTimeout(err)
	case errors.Is(err, ErrUnavailable):
		return apperr.StoreUnavailable(err)
	default:
		return apperr.Internal(fmt.Errorf("store: %w", err))
	}
}
