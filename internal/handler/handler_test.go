package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/handler/dto"
	"github.com/formapi/formapi/internal/middleware"
	"github.com/formapi/formapi/internal/testutil"
)

func TestNotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Error != "Route not found" {
		t.Errorf("unexpected error message: %s", response.Error)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/form", nil)
	rec := httptest.NewRecorder()

	MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}

	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Error != "Method not allowed" {
		t.Errorf("unexpected error message: %s", response.Error)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantType   string
	}{
		{"validation", apperr.Validation(apperr.FieldError{Field: "name", Rule: "required", Message: "name is required"}), http.StatusBadRequest, "name is required", "ValidationError"},
		{"empty body", apperr.EmptyBody(), http.StatusBadRequest, "Request body is empty", "ValidationError"},
		{"invalid id", apperr.InvalidID(errors.New("bad hex")), http.StatusBadRequest, "Invalid form ID", "InvalidIdentifier"},
		{"not found", apperr.NotFound(), http.StatusNotFound, "Form not found", "NotFound"},
		{"unavailable", apperr.StoreUnavailable(nil), http.StatusServiceUnavailable, "Database not connected", "StoreUnavailable"},
		{"timeout", apperr.StoreTimeout(nil), http.StatusGatewayTimeout, "Database operation timed out", "StoreTimeout"},
		{"unclassified", errors.New("driver exploded"), http.StatusInternalServerError, "Internal server error", "InternalError"},
		{"body too large", errBodyTooLarge, http.StatusRequestEntityTooLarge, "Request body too large", "ValidationError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/form", nil)
			rec := httptest.NewRecorder()

			writeError(rec, req, testutil.DiscardLogger(), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var response dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, response.Error)
			}
			if response.Type != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, response.Type)
			}
		})
	}
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/form", nil)
	rec := httptest.NewRecorder()

	writeError(rec, req, testutil.DiscardLogger(), apperr.Internal(errors.New("password=hunter2")))

	if body := rec.Body.String(); strings.Contains(body, "hunter2") {
		t.Errorf("internal cause leaked: %s", body)
	}
}

func TestWriteError_AfterHeadersSent(t *testing.T) {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial"))
		writeError(w, r, testutil.DiscardLogger(), apperr.NotFound())
	})
	handler = middleware.Logger(testutil.DiscardLogger())(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/form", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected original status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "partial" {
		t.Errorf("expected no second body, got %q", rec.Body.String())
	}
}
