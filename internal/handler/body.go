package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/formapi/formapi/internal/apperr"
	"github.com/formapi/formapi/internal/handler/dto"
	"github.com/formapi/formapi/internal/model"
)

var errBodyTooLarge = errors.New("request body too large")

// decodeForm reads a create or update body.
//
// An absent body, a JSON null, or an object without keys is empty. Keys other
// than the form fields are ignored. A null field counts as an empty string so
// the required rule reports it.
func decodeForm(r *http.Request) (dto.FormRequest, error) {
	var req dto.FormRequest
	if r.Body == nil {
		return req, apperr.EmptyBody()
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return req, errBodyTooLarge
		}
		return req, apperr.InvalidBody(err)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return req, apperr.EmptyBody()
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return req, apperr.InvalidBody(err)
	}
	if len(raw) == 0 {
		return req, apperr.EmptyBody()
	}

	var failures []apperr.FieldError
	targets := map[string]**string{
		model.FieldName:    &req.Name,
		model.FieldEmail:   &req.Email,
		model.FieldMessage: &req.Message,
	}
	for _, field := range model.RequiredFields {
		value, ok := raw[field]
		if !ok {
			continue
		}

		var s string
		if !bytes.Equal(value, []byte("null")) {
			if err := json.Unmarshal(value, &s); err != nil {
				failures = append(failures, apperr.FieldError{
					Field:   field,
					Rule:    "string",
					Message: field + " must be a string",
				})
				continue
			}
		}
		*targets[field] = &s
	}

	if len(failures) > 0 {
		return req, apperr.Validation(failures...)
	}
	return req, nil
}
