package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/gray-logic-onoff/internal/auth"
	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/configurable"
	"github.com/nerrad567/gray-logic-onoff/internal/instance"
)

// Error represents a structured error response.
type Error struct {
	Status     int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	InstanceID string `json:"instance_id,omitempty"`
}

// Common error codes.
const (
	ErrCodeBadRequest      = "bad_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnauthorized    = "unauthorised"
	ErrCodeForbidden       = "forbidden"
	ErrCodeConflict        = "conflict"
	ErrCodeInternal        = "internal_error"
	ErrCodeSchema          = "schema_violation"
	ErrCodeUnknownState    = "unknown_state"
	ErrCodeReadOnlyState   = "read_only_state"
	ErrCodeAutomationOnly  = "automation_only"
	ErrCodeNotActive       = "instance_not_active"
	ErrCodePortWriteFailed = "port_write_failed"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	writeJSONBody(w, status, v)
}

// writeJSONBody encodes v without touching Content-Type.
func writeJSONBody(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeForbidden writes a 403 error response.
func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// errorFor classifies a domain error into a response.
func errorFor(err error) Error {
	e := Error{Message: err.Error()}

	var actErr *instance.ActivationError
	if errors.As(err, &actErr) {
		e.InstanceID = actErr.InstanceID
	}
	var valErr *configurable.ValidationError
	var missErr *configurable.MissingFieldError
	switch {
	case errors.As(err, &valErr):
		e.Field = valErr.Field
	case errors.As(err, &missErr):
		e.Field = missErr.Field
	}

	switch kind := configurable.ErrorKind(err); kind {
	case configurable.KindValidation:
		e.Status, e.Code = http.StatusBadRequest, string(kind)
		return e
	case configurable.KindMissingField:
		e.Status, e.Code = http.StatusUnprocessableEntity, string(kind)
		return e
	case configurable.KindPortNotFound, configurable.KindCapabilityMismatch:
		e.Status, e.Code = http.StatusConflict, string(kind)
		return e
	case configurable.KindUnknownClass:
		e.Status, e.Code = http.StatusBadRequest, string(kind)
		return e
	}

	switch {
	case errors.Is(err, configurable.ErrSchemaViolation):
		e.Status, e.Code = http.StatusBadRequest, ErrCodeSchema
	case errors.Is(err, instance.ErrInstanceNotFound):
		e.Status, e.Code = http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, instance.ErrInstanceExists):
		e.Status, e.Code = http.StatusConflict, ErrCodeConflict
	case errors.Is(err, instance.ErrInvalidInstance):
		e.Status, e.Code = http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, instance.ErrNotActive), errors.Is(err, automation.ErrUnitNotFound):
		e.Status, e.Code = http.StatusConflict, ErrCodeNotActive
	case errors.Is(err, automation.ErrUnknownState):
		e.Status, e.Code = http.StatusBadRequest, ErrCodeUnknownState
	case errors.Is(err, automation.ErrReadOnlyState):
		e.Status, e.Code = http.StatusConflict, ErrCodeReadOnlyState
	case errors.Is(err, automation.ErrAutomationOnly):
		e.Status, e.Code = http.StatusConflict, ErrCodeAutomationOnly
	case errors.Is(err, automation.ErrPortWrite), errors.Is(err, automation.ErrPortRead):
		e.Status, e.Code = http.StatusBadGateway, ErrCodePortWriteFailed
	case errors.Is(err, auth.ErrForbidden):
		e.Status, e.Code = http.StatusForbidden, ErrCodeForbidden
	default:
		e.Status, e.Code, e.Message = http.StatusInternalServerError, ErrCodeInternal, "internal server error"
	}
	return e
}

// writeDomainError maps err onto a status code and error code.
// Saved-but-inactive instances carry their instance_id so clients can
// still address them.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	e := errorFor(err)
	if e.Status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", r.Context().Value(ctxKeyRequestID),
			"error", err,
		)
	}
	writeJSON(w, e.Status, e)
}
