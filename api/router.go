// Package api exposes the authorization core over HTTP. The surface is thin
// plumbing: JSON in, JSON out, domain sentinels mapped to statuses. Identity
// proofing is an upstream concern; the acting user arrives in the X-User-ID
// header.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/avetch/accesskit/pkg/authz"
	"github.com/avetch/accesskit/pkg/clientip"
	"github.com/avetch/accesskit/pkg/ratelimit"
	"github.com/avetch/accesskit/pkg/requestid"
	"github.com/avetch/accesskit/pkg/resource"
	"github.com/avetch/accesskit/pkg/tenant"
)

// ActorHeader carries the acting user's id on every request.
const ActorHeader = "X-User-ID"

var (
	errValidation = errors.New("api.validation")
	errBadRequest = errors.New("api.bad_request")
	errNoActor    = errors.New("api.missing_actor")
)

// Deps are the services the router exposes.
type Deps struct {
	Tenants   *tenant.Service
	Resources *resource.Service
	Grants    *authz.Grants
	Engine    *authz.Engine
	Logger    *slog.Logger

	// RateLimiter throttles per client IP when set.
	RateLimiter ratelimit.Limiter

	// Healthchecks are run by GET /healthz when present.
	Healthchecks []func(ctx context.Context) error
}

type handlers struct {
	tenants   *tenant.Service
	resources *resource.Service
	grants    *authz.Grants
	engine    *authz.Engine
	log       *slog.Logger
}

// NewRouter builds the chi router for the service.
func NewRouter(deps Deps) chi.Router {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	h := &handlers{
		tenants:   deps.Tenants,
		resources: deps.Resources,
		grants:    deps.Grants,
		engine:    deps.Engine,
		log:       log,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)
	if deps.RateLimiter != nil {
		r.Use(ratelimit.Middleware(deps.RateLimiter, clientip.GetIP))
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		for _, check := range deps.Healthchecks {
			if err := check(req.Context()); err != nil {
				log.ErrorContext(req.Context(), "healthcheck failed", slog.Any("error", err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	})

	r.Route("/tenants", func(r chi.Router) {
		r.Post("/", h.createTenant)
		r.Get("/", h.listTenants)
		r.Get("/accessible", h.accessibleTenants)
		r.Get("/{id}", h.getTenant)
	})

	r.Route("/resources", func(r chi.Router) {
		r.Post("/", h.createResource)
		r.Get("/{id}/tree", h.resourceTree)
		r.Post("/{id}/move", h.moveResource)
		r.Delete("/{id}", h.deleteResource)
		r.Get("/{id}/permissions", h.effectivePermissions)
	})

	r.Route("/roles", func(r chi.Router) {
		r.Post("/assign", h.assignRole)
		r.Post("/remove", h.removeRole)
	})

	return r
}

// actorID reads the acting user id from the request header.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := r.Header.Get(ActorHeader)
	if raw == "" {
		return uuid.Nil, errNoActor
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errBadRequest
	}
	return id, nil
}

// pathID reads a uuid path parameter.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, errBadRequest
	}
	return id, nil
}
