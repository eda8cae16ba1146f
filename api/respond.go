package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avetch/accesskit/pkg/authz"
	"github.com/avetch/accesskit/pkg/logger"
	"github.com/avetch/accesskit/pkg/rbac"
	"github.com/avetch/accesskit/pkg/resource"
	"github.com/avetch/accesskit/pkg/tenant"
	"github.com/avetch/accesskit/pkg/user"
)

// envelope is the standard JSON response body.
type envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// respondError maps domain sentinels to HTTP statuses. Unknown errors become
// opaque 500s; the cause goes to the log, not the client.
func (h *handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			logger.Error(err),
			slog.String("path", r.URL.Path))
		msg = ""
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &errorDetail{Code: code, Message: msg}})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, authz.ErrAccessDenied):
		return http.StatusForbidden, "access_denied"

	case errors.Is(err, tenant.ErrTenantNotFound),
		errors.Is(err, resource.ErrResourceNotFound),
		errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, rbac.ErrRoleNotFound),
		errors.Is(err, authz.ErrBindingNotFound):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, tenant.ErrTenantExists),
		errors.Is(err, resource.ErrResourceExists),
		errors.Is(err, user.ErrUserExists),
		errors.Is(err, authz.ErrAlreadyAssigned):
		return http.StatusConflict, "conflict"

	case errors.Is(err, resource.ErrHasChildren),
		errors.Is(err, resource.ErrCrossTenantMove),
		errors.Is(err, resource.ErrCycleDetected),
		errors.Is(err, resource.ErrVersionConflict):
		return http.StatusConflict, "conflict"

	case errors.Is(err, errValidation):
		return http.StatusUnprocessableEntity, "validation_error"

	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"

	case errors.Is(err, errNoActor):
		return http.StatusUnauthorized, "unauthorized"

	default:
		// rbac.ErrRoleNotSeeded and driver errors land here.
		return http.StatusInternalServerError, "internal_error"
	}
}
