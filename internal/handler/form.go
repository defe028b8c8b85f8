package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/formapi/formapi/internal/handler/dto"
	"github.com/formapi/formapi/internal/middleware"
	"github.com/formapi/formapi/internal/service"
)

// MsgFormDeleted is the confirmation returned by Delete.
const MsgFormDeleted = "Form deleted successfully"

// FormHandler handles HTTP requests for form operations.
type FormHandler struct {
	svc    *service.FormService
	logger *slog.Logger
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(svc *service.FormService, logger *slog.Logger) *FormHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/form.
func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeForm(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	form, err := h.svc.Create(r.Context(), service.CreateFormInput{
		Name:    dto.Value(req.Name),
		Email:   dto.Value(req.Email),
		Message: dto.Value(req.Message),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("form_created",
		"form_id", form.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusCreated, form)
}

// List handles GET /api/form.
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, forms)
}

// Get handles GET /api/form/{id}.
func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// Update handles PUT /api/form/{id}.
func (h *FormHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, err := decodeForm(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	form, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("form_updated",
		"form_id", form.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, form)
}

// Delete handles DELETE /api/form/{id}.
func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.Info("form_deleted",
		"form_id", form.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.DeleteResponse{
		Message:     MsgFormDeleted,
		DeletedForm: form,
	})
}
