// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/model"
)

// FormRequest is the body of create and update requests. Absent fields
// stay nil so updates can tell "not sent" from "sent empty".
type FormRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Message *string `json:"message"`
}

// Patch converts the request into a store patch.
func (r FormRequest) Patch() model.FormPatch {
	return model.FormPatch{Name: r.Name, Email: r.Email, Message: r.Message}
}

// Value returns the field or "" when it was not sent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// DeleteResponse is returned after a successful delete.
type DeleteResponse struct {
	Message     string      `json:"message"`
	DeletedForm *model.Form `json:"deletedForm"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Type    string              `json:"type,omitempty"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// StoreUnavailableResponse is returned by the store guard.
type StoreUnavailableResponse struct {
	Error      string         `json:"error"`
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	ReadyState int            `json:"readyState"`
	States     map[int]string `json:"states"`
}

// DatabaseStatus describes the store connection on the status page.
type DatabaseStatus struct {
	Status     string `json:"status"`
	ReadyState int    `json:"readyState"`
	Connected  bool   `json:"connected"`
	Driver     string `json:"driver"`
	Name       string `json:"name"`
	Host       string `json:"host"`
	URISet     bool   `json:"uriSet"`
}

// FormEndpoints lists the CRUD routes.
type FormEndpoints struct {
	GetAll string `json:"getAll"`
	Create string `json:"create"`
	GetOne string `json:"getOne"`
	Update string `json:"update"`
	Delete string `json:"delete"`
}

// StatusEndpoints lists every public route.
type StatusEndpoints struct {
	Health  string        `json:"health"`
	Live    string        `json:"live"`
	Ready   string        `json:"ready"`
	Metrics string        `json:"metrics,omitempty"`
	API     string        `json:"api"`
	Forms   FormEndpoints `json:"forms"`
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Database  DatabaseStatus  `json:"database"`
	Endpoints StatusEndpoints `json:"endpoints"`
}

// IndexResponse is the body of GET /api.
type IndexResponse struct {
	Message   string        `json:"message"`
	Endpoints FormEndpoints `json:"endpoints"`
}
