package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type createResourceRequest struct {
	ParentID uuid.UUID `json:"parent_id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
}

func (req *createResourceRequest) validate() error {
	if req.ParentID == uuid.Nil {
		return fmt.Errorf("%w: parent_id is required", errValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", errValidation)
	}
	if strings.TrimSpace(req.Type) == "" {
		return fmt.Errorf("%w: type is required", errValidation)
	}
	return nil
}

func (h *handlers) createResource(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req createResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: invalid body", errBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	res, err := h.resources.CreateChild(r.Context(), actor, req.ParentID, req.Name, req.Type)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, res)
}

func (h *handlers) resourceTree(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	tree, err := h.resources.Tree(r.Context(), actor, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, tree)
}

type moveResourceRequest struct {
	NewParentID uuid.UUID `json:"new_parent_id"`
}

func (h *handlers) moveResource(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req moveResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: invalid body", errBadRequest))
		return
	}
	if req.NewParentID == uuid.Nil {
		h.respondError(w, r, fmt.Errorf("%w: new_parent_id is required", errValidation))
		return
	}

	moved, err := h.resources.Move(r.Context(), actor, id, req.NewParentID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, moved)
}

func (h *handlers) deleteResource(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.resources.Delete(r.Context(), actor, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) effectivePermissions(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// A caller may inspect another user's permissions via ?user_id=.
	subject := actor
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		subject, err = uuid.Parse(raw)
		if err != nil {
			h.respondError(w, r, fmt.Errorf("%w: invalid user_id", errBadRequest))
			return
		}
	}

	perms, err := h.engine.EffectivePermissions(r.Context(), subject, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"user_id":     subject,
		"resource_id": id,
		"permissions": perms,
	})
}
