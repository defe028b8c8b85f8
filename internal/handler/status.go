package handler

import (
	"net/http"
	"time"

	"github.com/formapi/formapi/internal/handler/dto"
	"github.com/formapi/formapi/internal/store"
)

// StatusSource reports the store connection for the status page.
type StatusSource interface {
	store.StateSource
	Info() store.Info
}

// StatusHandler serves the service status and route index.
type StatusHandler struct {
	src            StatusSource
	uriSet         bool
	metricsEnabled bool
	now            func() time.Time
}

// NewStatusHandler creates a new StatusHandler. uriSet reports whether the
// store connection string came from the environment.
func NewStatusHandler(src StatusSource, uriSet, metricsEnabled bool) *StatusHandler {
	return &StatusHandler{
		src:            src,
		uriSet:         uriSet,
		metricsEnabled: metricsEnabled,
		now:            time.Now,
	}
}

func formEndpoints() dto.FormEndpoints {
	return dto.FormEndpoints{
		GetAll: "GET /api/form",
		Create: "POST /api/form",
		GetOne: "GET /api/form/:id",
		Update: "PUT /api/form/:id",
		Delete: "DELETE /api/form/:id",
	}
}

// Status reports that the server runs and how the store is doing. It always
// answers 200, even while the store is down.
// GET /
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	state := h.src.ReadyState()
	info := h.src.Info()

	endpoints := dto.StatusEndpoints{
		Health: "GET /",
		Live:   "GET /healthz",
		Ready:  "GET /readyz",
		API:    "GET /api",
		Forms:  formEndpoints(),
	}
	if h.metricsEnabled {
		endpoints.Metrics = "GET /metrics"
	}

	writeJSON(w, http.StatusOK, dto.StatusResponse{
		Status:    "running",
		Message:   "Form API is running",
		Timestamp: h.now().UTC(),
		Database: dto.DatabaseStatus{
			Status:     state.String(),
			ReadyState: int(state),
			Connected:  state == store.StateConnected,
			Driver:     info.Driver,
			Name:       orNA(info.Database),
			Host:       orNA(info.Host),
			URISet:     h.uriSet,
		},
		Endpoints: endpoints,
	})
}

// Index lists the form routes.
// GET /api
func (h *StatusHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.IndexResponse{
		Message:   "Form API routes",
		Endpoints: formEndpoints(),
	})
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
