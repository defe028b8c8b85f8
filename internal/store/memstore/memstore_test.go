package memstore

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/model"
	"github.com/formapi/formapi/internal/store"
)

func newTestStore() *Store {
	return New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	created, err := s.Insert(ctx, &model.Form{Name: "Ann", Email: "ann@x.com", Message: "hi"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps, got %+v", created)
	}

	got, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if *got != *created {
		t.Errorf("find returned %+v, want %+v", got, created)
	}

	msg := "hi there"
	updated, err := s.UpdateByID(ctx, created.ID, model.FormPatch{Message: &msg})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Message != msg || updated.Name != "Ann" || updated.ID != created.ID {
		t.Errorf("unexpected update result: %+v", updated)
	}

	all, err := s.FindAll(ctx)
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 1 || all[0].Message != msg {
		t.Errorf("unexpected list: %+v", all)
	}

	deleted, err := s.DeleteByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != created.ID {
		t.Errorf("deleted wrong record: %+v", deleted)
	}

	if _, err := s.DeleteByID(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	created, _ := s.Insert(ctx, &model.Form{Name: "Ann", Email: "ann@x.com", Message: "hi"})
	created.Name = "mutated"

	got, _ := s.FindByID(ctx, created.ID)
	if got.Name != "Ann" {
		t.Errorf("caller mutation leaked into store: %q", got.Name)
	}
}

func TestStore_InvalidAndMissingIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if _, err := s.FindByID(ctx, "not-a-uuid"); !errors.Is(err, store.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if _, err := s.FindByID(ctx, uuid.NewString()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	name := "x"
	if _, err := s.UpdateByID(ctx, uuid.NewString(), model.FormPatch{Name: &name}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on update, got %v", err)
	}
}

func TestStore_InvariantCheck(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if _, err := s.Insert(ctx, &model.Form{Name: "", Email: "a@b.com", Message: "x"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error, got %v", err)
	}
	if s.Len() != 0 {
		t.Error("invalid insert must not create a record")
	}

	created, _ := s.Insert(ctx, &model.Form{Name: "Ann", Email: "ann@x.com", Message: "hi"})
	empty := ""
	if _, err := s.UpdateByID(ctx, created.ID, model.FormPatch{Email: &empty}); apperr.KindOf(err) != apperr.KindValidation {
		t.Errorf("expected validation error on update, got %v", err)
	}
	got, _ := s.FindByID(ctx, created.ID)
	if got.Email != "ann@x.com" {
		t.Errorf("rejected update changed the record: %+v", got)
	}
}

func TestStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	s.SetReadyState(store.StateDisconnected)

	if _, err := s.FindAll(ctx); !errors.Is(err, store.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("expected ping to fail")
	}
}

func TestStore_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Insert(ctx, &model.Form{Name: "n", Email: "e", Message: "m"})
		}()
	}
	wg.Wait()

	all, _ := s.FindAll(ctx)
	if len(all) != 50 {
		t.Errorf("expected 50 records, got %d", len(all))
	}
}
