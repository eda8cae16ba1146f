package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

type roleBindingRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	RoleID     int16     `json:"role_id"`
	ResourceID uuid.UUID `json:"resource_id"`
}

func (req *roleBindingRequest) validate() error {
	if req.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id is required", errValidation)
	}
	if req.RoleID == 0 {
		return fmt.Errorf("%w: role_id is required", errValidation)
	}
	if req.ResourceID == uuid.Nil {
		return fmt.Errorf("%w: resource_id is required", errValidation)
	}
	return nil
}

func (h *handlers) assignRole(w http.ResponseWriter, r *http.Request) {
	actor, req, err := h.decodeBindingRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.grants.Assign(r.Context(), actor, req.UserID, req.RoleID, req.ResourceID); err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, map[string]any{
		"user_id":     req.UserID,
		"role_id":     req.RoleID,
		"resource_id": req.ResourceID,
	})
}

func (h *handlers) removeRole(w http.ResponseWriter, r *http.Request) {
	actor, req, err := h.decodeBindingRequest(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.grants.Remove(r.Context(), actor, req.UserID, req.RoleID, req.ResourceID); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) decodeBindingRequest(r *http.Request) (uuid.UUID, *roleBindingRequest, error) {
	actor, err := actorID(r)
	if err != nil {
		return uuid.Nil, nil, err
	}

	var req roleBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: invalid body", errBadRequest)
	}
	if err := req.validate(); err != nil {
		return uuid.Nil, nil, err
	}
	return actor, &req, nil
}
