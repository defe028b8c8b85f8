package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/handler/dto"
)

// Recoverer is a middleware that recovers from panics.
// It logs the panic and returns a 500 unless a response is already under way,
// in which case the panic is only logged.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				requestID := GetRequestID(r.Context())
				sent := HeadersSent(w)

				logger.Error("panic recovered",
					slog.String("request_id", requestID),
					slog.Any("panic", rvr),
					slog.Bool("headers_sent", sent),
					slog.String("stack", string(debug.Stack())),
				)

				if os.Getenv("APP_ENV") == "development" {
					debug.PrintStack()
				}

				if sent {
					return
				}
				writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{
					Error: apperr.MsgInternal,
					Type:  string(apperr.KindInternal),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
