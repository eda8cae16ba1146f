package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/avetch/accesskit/pkg/rbac"
	"github.com/avetch/accesskit/pkg/tenant"
)

type createTenantRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (req *createTenantRequest) validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", errValidation)
	}
	if strings.TrimSpace(req.Code) == "" {
		return fmt.Errorf("%w: code is required", errValidation)
	}
	return nil
}

func (h *handlers) createTenant(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// Bootstrapping a tenant is a global operation, not scoped to any
	// resource the caller already holds.
	if err := h.engine.CheckGlobalPermission(r.Context(), actor, rbac.PermTenantCreate); err != nil {
		h.respondError(w, r, err)
		return
	}

	var req createTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, r, fmt.Errorf("%w: invalid body", errBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	t, err := h.tenants.CreateTenant(r.Context(), req.Name, req.Code, actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, t)
}

// listTenants returns every tenant to an ADMIN holder and only the tenants
// the caller has a root binding on otherwise.
func (h *handlers) listTenants(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	admin, err := h.engine.IsAdmin(r.Context(), actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var tenants []*tenant.Tenant
	if admin {
		tenants, err = h.tenants.List(r.Context())
	} else {
		tenants, err = h.tenants.AccessibleBy(r.Context(), actor)
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, tenants)
}

func (h *handlers) accessibleTenants(w http.ResponseWriter, r *http.Request) {
	actor, err := actorID(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	tenants, err := h.tenants.AccessibleBy(r.Context(), actor)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, tenants)
}

func (h *handlers) getTenant(w http.ResponseWriter, r *http.Request) {
	if _, err := actorID(r); err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	t, err := h.tenants.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, t)
}
