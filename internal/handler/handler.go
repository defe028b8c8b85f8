// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/handler/dto"
	"github.com/formapi/formapi/internal/middleware"
)

// MsgRouteNotFound is returned for unmatched routes.
const MsgRouteNotFound = "Route not found"

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: MsgRouteNotFound})
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, dto.ErrorResponse{Error: "Method not allowed"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status line is already out; an encode failure can only be dropped.
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err onto the taxonomy and writes it. When the response has
// already started the error is logged and nothing is written.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	requestID := middleware.GetRequestID(r.Context())

	if middleware.HeadersSent(w) {
		logger.Error("response already started, error not written",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		return
	}

	if errors.Is(err, errBodyTooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{
			Error: middleware.MsgBodyTooLarge,
			Type:  string(apperr.KindValidation),
		})
		return
	}

	appErr := apperr.As(err)
	if appErr.Kind == apperr.KindInternal {
		logger.Error("internal_error",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, appErr.Kind.HTTPStatus(), dto.ErrorResponse{
		Error:   appErr.Message,
		Type:    string(appErr.Kind),
		Details: appErr.Fields,
	})
}
