// Package memstore keeps forms in process memory.
// It backs the "memory" driver and the handler and service tests.
package memstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/formapi/formapi/internal/model"
	"github.com/formapi/formapi/internal/store"
)

// Driver is the STORE_DRIVER value for this adapter.
const Driver = "memory"

// Store is an in-memory form collection. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	forms   map[string]*model.Form
	order   []string
	tracker *store.Tracker
	now     func() time.Time
}

// New returns a connected, empty store.
func New(logger *slog.Logger) *Store {
	s := &Store{
		forms:   make(map[string]*model.Form),
		tracker: store.NewTracker(Driver, logger),
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.tracker.Set(store.StateConnected)
	return s
}

// SetReadyState forces the readiness, for exercising degraded mode.
func (s *Store) SetReadyState(state store.State) {
	s.tracker.Set(state)
}

// ReadyState implements store.StateSource.
func (s *Store) ReadyState() store.State {
	return s.tracker.ReadyState()
}

// Ping fails when the store has been marked unavailable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ReadyState() != store.StateConnected {
		return store.ErrUnavailable
	}
	return ctx.Err()
}

// Info implements store.Store.
func (s *Store) Info() store.Info {
	return store.Info{Driver: Driver, Database: "memory", Host: "local"}
}

// Close marks the store disconnected. Data is kept.
func (s *Store) Close(ctx context.Context) error {
	s.tracker.Set(store.StateDisconnecting)
	s.tracker.Set(store.StateDisconnected)
	return nil
}

// Len returns the number of stored forms.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.forms)
}

// Insert implements store.FormRepository.
func (s *Store) Insert(ctx context.Context, f *model.Form) (*model.Form, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := store.CheckInsert(f); err != nil {
		return nil, err
	}

	stored := f.Clone()
	stored.ID = uuid.NewString()
	stored.CreatedAt = s.now()
	stored.UpdatedAt = stored.CreatedAt

	s.mu.Lock()
	s.forms[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	s.mu.Unlock()

	return stored.Clone(), nil
}

// FindAll implements store.FormRepository. Results follow insertion order.
func (s *Store) FindAll(ctx context.Context) ([]*model.Form, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Form, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.forms[id].Clone())
	}
	return out, nil
}

// FindByID implements store.FormRepository.
func (s *Store) FindByID(ctx context.Context, id string) (*model.Form, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := parseID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.forms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return f.Clone(), nil
}

// UpdateByID implements store.FormRepository.
func (s *Store) UpdateByID(ctx context.Context, id string, patch model.FormPatch) (*model.Form, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := parseID(id); err != nil {
		return nil, err
	}
	if err := store.CheckPatch(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.forms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if !patch.IsEmpty() {
		patch.Apply(f)
		f.UpdatedAt = s.now()
	}
	return f.Clone(), nil
}

// DeleteByID implements store.FormRepository.
func (s *Store) DeleteByID(ctx context.Context, id string) (*model.Form, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if err := parseID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.forms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delete(s.forms, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return f, nil
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ReadyState() != store.StateConnected {
		return store.ErrUnavailable
	}
	return nil
}

func parseID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", store.ErrInvalidID, id)
	}
	return nil
}
