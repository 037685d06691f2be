package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rpattn/testplan/internal/auth"
	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/properties"
	"github.com/rpattn/testplan/internal/repository"
	"github.com/rpattn/testplan/internal/schema"
	"github.com/rpattn/testplan/internal/service"
)

// errBadRequest marks malformed payloads and path parameters.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error      string     `json:"error"`
	PropertyID *uuid.UUID `json:"propertyId,omitempty"`
	Field      string     `json:"field,omitempty"`
}

func statusFor(err error) int {
	var schemaErr *domain.SchemaError
	switch {
	case errors.As(err, &schemaErr), errors.Is(err, properties.ErrValueOutsideDomain):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, schema.ErrUnknownProperty):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrScopeMismatch), errors.Is(err, service.ErrWrongWorkspace):
		return http.StatusForbidden
	case errors.Is(err, service.ErrDuplicateWorkspace):
		return http.StatusConflict
	case errors.Is(err, errBadRequest), errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrWorkspaceRequired), errors.Is(err, schema.ErrDuplicateProperty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorResponse{Error: err.Error()}

	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		body.Field = schemaErr.Field
		if schemaErr.PropertyID != uuid.Nil {
			id := schemaErr.PropertyID
			body.PropertyID = &id
		}
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		body.Error = "internal error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
