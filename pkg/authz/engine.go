package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/avetch/accesskit/pkg/rbac"
	"github.com/avetch/accesskit/pkg/resource"
)

// Engine resolves authorization decisions against the role catalog, the
// binding store and the resource tree. It is read-only and safe for
// concurrent use.
type Engine struct {
	catalog   *rbac.Catalog
	bindings  BindingStore
	resources ResourceGetter
	log       *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the debug logger. Defaults to a discarding logger;
// the decision path never writes anywhere else.
func WithEngineLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEngine creates an authorization engine.
func NewEngine(catalog *rbac.Catalog, bindings BindingStore, resources ResourceGetter, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog:   catalog,
		bindings:  bindings,
		resources: resources,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckPermission fails with the resource package's not found sentinel when
// resourceID does not resolve, with ErrAccessDenied when the user lacks the
// permission on the resource or any of its ancestors, and succeeds
// otherwise.
func (e *Engine) CheckPermission(ctx context.Context, userID, resourceID uuid.UUID, permission string) error {
	target, err := e.resources.Get(ctx, resourceID)
	if err != nil {
		return err
	}

	allowed, err := e.HasPermission(ctx, userID, permission, target)
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrAccessDenied, permission)
	}
	return nil
}

// CheckGlobalPermission succeeds when the user holds any binding, on any
// resource, whose role carries the permission. Used for checks that are not
// scoped to a resource, such as TENANT_CREATE. There is no name-based ADMIN
// shortcut here: the role's permission set decides.
func (e *Engine) CheckGlobalPermission(ctx context.Context, userID uuid.UUID, permission string) error {
	bindings, err := e.bindings.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	for _, b := range bindings {
		role, err := e.roleOf(ctx, b)
		if err != nil {
			return err
		}
		if role != nil && role.Can(permission) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrAccessDenied, permission)
}

// IsAdmin reports whether the user holds the ADMIN role on any resource.
func (e *Engine) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	bindings, err := e.bindings.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, b := range bindings {
		role, err := e.roleOf(ctx, b)
		if err != nil {
			return false, err
		}
		if role != nil && role.Name == rbac.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// HasPermission is the core decision algorithm. It walks from target up the
// parent chain, visiting each resource at most once, and returns true on the
// first level where one of the user's bindings carries the permission. A
// binding to the ADMIN role grants everything without walking.
func (e *Engine) HasPermission(ctx context.Context, userID uuid.UUID, permission string, target *resource.Resource) (bool, error) {
	if target == nil {
		return false, nil
	}

	bindings, err := e.bindings.ListByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if len(bindings) == 0 {
		return false, nil
	}

	for _, b := range bindings {
		role, err := e.roleOf(ctx, b)
		if err != nil {
			return false, err
		}
		if role != nil && role.Name == rbac.RoleAdmin {
			e.log.DebugContext(ctx, "admin bypass",
				slog.String("user_id", userID.String()),
				slog.String("permission", permission))
			return true, nil
		}
	}

	current := target
	visited := map[uuid.UUID]struct{}{}

	for current != nil {
		if _, ok := visited[current.ID]; ok {
			e.log.DebugContext(ctx, "cycle detected in resource ancestry",
				slog.String("resource_id", current.ID.String()))
			break
		}
		visited[current.ID] = struct{}{}

		for _, b := range bindings {
			if b.ResourceID != current.ID {
				continue
			}
			role, err := e.roleOf(ctx, b)
			if err != nil {
				return false, err
			}
			if role != nil && role.Can(permission) {
				return true, nil
			}
		}

		current, err = e.parentOf(ctx, current)
		if err != nil {
			return false, err
		}
	}

	return false, nil
}

// EffectivePermissions returns the aggregate permission-name set the user
// holds on the resource after inheritance, sorted. An ADMIN binding anywhere
// yields the ADMIN marker plus everything the ADMIN role carries in the
// catalog; otherwise the walk unions the cataloged permissions of every role
// bound on the ancestor chain.
func (e *Engine) EffectivePermissions(ctx context.Context, userID, resourceID uuid.UUID) ([]string, error) {
	target, err := e.resources.Get(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	bindings, err := e.bindings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(bindings) == 0 {
		return []string{}, nil
	}

	set := map[string]struct{}{}

	for _, b := range bindings {
		role, err := e.roleOf(ctx, b)
		if err != nil {
			return nil, err
		}
		if role == nil || role.Name != rbac.RoleAdmin {
			continue
		}
		// Super admins get the marker the UI treats as all-access plus
		// the role's cataloged permissions.
		set[rbac.RoleAdmin] = struct{}{}
		for _, p := range role.Permissions {
			set[p] = struct{}{}
		}
		return sorted(set), nil
	}

	current := target
	visited := map[uuid.UUID]struct{}{}

	for current != nil {
		if _, ok := visited[current.ID]; ok {
			break
		}
		visited[current.ID] = struct{}{}

		for _, b := range bindings {
			if b.ResourceID != current.ID {
				continue
			}
			role, err := e.roleOf(ctx, b)
			if err != nil {
				return nil, err
			}
			if role == nil {
				continue
			}
			for _, p := range role.Permissions {
				set[p] = struct{}{}
			}
		}

		current, err = e.parentOf(ctx, current)
		if err != nil {
			return nil, err
		}
	}

	return sorted(set), nil
}

// roleOf resolves the binding's role. A binding referencing a role that has
// been removed from the catalog contributes nothing instead of failing every
// check for the user.
func (e *Engine) roleOf(ctx context.Context, b Binding) (*rbac.Role, error) {
	role, err := e.catalog.ByID(b.RoleID)
	if err != nil {
		if errors.Is(err, rbac.ErrRoleNotFound) {
			e.log.WarnContext(ctx, "binding references unknown role",
				slog.Int("role_id", int(b.RoleID)),
				slog.String("user_id", b.UserID.String()))
			return nil, nil
		}
		return nil, err
	}
	return role, nil
}

// parentOf advances the ancestry walk. A dangling parent reference ends the
// chain rather than failing the check.
func (e *Engine) parentOf(ctx context.Context, r *resource.Resource) (*resource.Resource, error) {
	if r.ParentID == nil {
		return nil, nil
	}
	parent, err := e.resources.Get(ctx, *r.ParentID)
	if err != nil {
		if errors.Is(err, resource.ErrResourceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parent, nil
}

func sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
