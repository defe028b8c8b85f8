// Package service provides business logic for the application.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/metrics"
	"github.com/formapi/formapi/internal/model"
	"github.com/formapi/formapi/internal/store"
	"github.com/formapi/formapi/internal/validation"
)

// Store operation names used for metrics and logs.
const (
	opInsert = "insert"
	opList   = "find_all"
	opGet    = "find_by_id"
	opUpdate = "update_by_id"
	opDelete = "delete_by_id"
)

// FormService handles form business logic.
type FormService struct {
	repo      store.FormRepository
	validator *validation.Validator
	metrics   metrics.Recorder
	timeout   time.Duration
	logger    *slog.Logger
}

// NewFormService creates a new FormService. A zero timeout leaves store
// calls bounded only by the request context.
func NewFormService(repo store.FormRepository, validator *validation.Validator, recorder metrics.Recorder, timeout time.Duration, logger *slog.Logger) *FormService {
	if validator == nil {
		validator = validation.New(validation.DefaultOptions())
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FormService{
		repo:      repo,
		validator: validator,
		metrics:   recorder,
		timeout:   timeout,
		logger:    logger,
	}
}

// CreateFormInput defines input for creating a form.
type CreateFormInput struct {
	Name    string
	Email   string
	Message string
}

// Create validates and stores a new form.
func (s *FormService) Create(ctx context.Context, input CreateFormInput) (*model.Form, error) {
	form := &model.Form{
		Name:    input.Name,
		Email:   input.Email,
		Message: input.Message,
	}
	if err := s.validator.Form(form); err != nil {
		return nil, err
	}

	var created *model.Form
	err := s.call(ctx, opInsert, func(ctx context.Context) (err error) {
		created, err = s.repo.Insert(ctx, form)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncFormCreated()
	return created, nil
}

// List returns every stored form. The result is never nil.
func (s *FormService) List(ctx context.Context) ([]*model.Form, error) {
	var forms []*model.Form
	err := s.call(ctx, opList, func(ctx context.Context) (err error) {
		forms, err = s.repo.FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if forms == nil {
		forms = []*model.Form{}
	}
	return forms, nil
}

// Get returns one form by id.
func (s *FormService) Get(ctx context.Context, id string) (*model.Form, error) {
	var form *model.Form
	err := s.call(ctx, opGet, func(ctx context.Context) (err error) {
		form, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return form, nil
}

// Update applies the present fields of patch and returns the result.
// A patch that changes nothing returns the current record.
func (s *FormService) Update(ctx context.Context, id string, patch model.FormPatch) (*model.Form, error) {
	if err := s.validator.Patch(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}

	var updated *model.Form
	err := s.call(ctx, opUpdate, func(ctx context.Context) (err error) {
		updated, err = s.repo.UpdateByID(ctx, id, patch)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncFormUpdated()
	return updated, nil
}

// Delete removes a form and returns what was removed.
func (s *FormService) Delete(ctx context.Context, id string) (*model.Form, error) {
	var deleted *model.Form
	err := s.call(ctx, opDelete, func(ctx context.Context) (err error) {
		deleted, err = s.repo.DeleteByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncFormDeleted()
	return deleted, nil
}

// call runs one store operation under the operation timeout and maps its
// error onto the application taxonomy.
func (s *FormService) call(ctx context.Context, op string, fn func(context.Context) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := store.Translate(fn(ctx))
	s.metrics.ObserveStoreDuration(op, time.Since(start))
	if err == nil {
		return nil
	}

	kind := apperr.KindOf(err)
	s.metrics.IncStoreError(string(kind))

	switch kind {
	case apperr.KindInternal, apperr.KindStoreTimeout, apperr.KindStoreUnavailable:
		s.logger.Error("store operation failed",
			slog.String("op", op),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}
	return err
}
