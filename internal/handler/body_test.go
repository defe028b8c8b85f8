package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/formapi/formapi/internal/apperr"
)

func newBodyRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/form", strings.NewReader(body))
}

func TestDecodeForm(t *testing.T) {
	req, err := decodeForm(newBodyRequest(`{"name":"Ann","email":"ann@x.com","extra":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Name == nil || *req.Name != "Ann" {
		t.Errorf("expected name Ann, got %v", req.Name)
	}
	if req.Email == nil || *req.Email != "ann@x.com" {
		t.Errorf("expected email, got %v", req.Email)
	}
	if req.Message != nil {
		t.Errorf("expected absent message to stay nil, got %q", *req.Message)
	}
}

func TestDecodeForm_NullFieldIsEmpty(t *testing.T) {
	req, err := decodeForm(newBodyRequest(`{"name":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Name == nil || *req.Name != "" {
		t.Errorf("expected null name to decode as empty string, got %v", req.Name)
	}
}

func TestDecodeForm_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", apperr.MsgEmptyBody},
		{"whitespace", "  \n", apperr.MsgEmptyBody},
		{"null", "null", apperr.MsgEmptyBody},
		{"empty object", "{}", apperr.MsgEmptyBody},
		{"array", "[1,2]", apperr.MsgInvalidBody},
		{"string", `"hello"`, apperr.MsgInvalidBody},
		{"truncated", `{"name":"a"`, apperr.MsgInvalidBody},
		{"number field", `{"name":5}`, "name must be a string"},
		{"two bad fields", `{"name":5,"email":true}`, "name must be a string, email must be a string"},
		{"object field", `{"message":{"text":"x"}}`, "message must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeForm(newBodyRequest(tt.body))
			appErr := apperr.As(err)
			if appErr.Kind != apperr.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if appErr.Message != tt.want {
				t.Errorf("expected %q, got %q", tt.want, appErr.Message)
			}
		})
	}
}

func TestDecodeForm_TooLarge(t *testing.T) {
	req := newBodyRequest(`{"name":"` + strings.Repeat("a", 64) + `"}`)
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 16)

	_, err := decodeForm(req)
	if !errors.Is(err, errBodyTooLarge) {
		t.Errorf("expected errBodyTooLarge, got %v", err)
	}
}
