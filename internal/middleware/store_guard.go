package middleware

import (
	"log/slog"
	"net/http"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/handler/dto"
	"github.com/formapi/formapi/internal/store"
)

// RequireStore rejects requests with 503 while the store is not connected,
// so no handler waits on a call that cannot succeed.
func RequireStore(src store.StateSource, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := src.ReadyState()
			if state == store.StateConnected {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("request rejected, store not connected",
				slog.String("request_id", GetRequestID(r.Context())),
				slog.String("path", r.URL.Path),
				slog.String("ready_state", state.String()),
			)

			writeJSON(w, http.StatusServiceUnavailable, dto.StoreUnavailableResponse{
				Error:      apperr.MsgStoreUnavailable,
				Type:       string(apperr.KindStoreUnavailable),
				Message:    "The database is not connected. Check the connection string and that the server is reachable.",
				ReadyState: int(state),
				States:     store.StateNames(),
			})
		})
	}
}
