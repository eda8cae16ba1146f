package rbac

import (
	"context"
	"fmt"
	"slices"
)

// Source provides the role rows the catalog is built from.
type Source interface {
	// Load returns all roles. Implementations must return independent
	// copies; the catalog treats the result as its own.
	Load(ctx context.Context) ([]Role, error)
}

// Catalog is an immutable, validated view of the role set.
// It is safe for concurrent use after construction.
type Catalog struct {
	byName map[string]*Role
	byID   map[int16]*Role
	names  []string
}

// NewCatalog loads roles from the source and validates them.
func NewCatalog(ctx context.Context, source Source) (*Catalog, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		byName: make(map[string]*Role, len(roles)),
		byID:   make(map[int16]*Role, len(roles)),
		names:  make([]string, 0, len(roles)),
	}

	for i := range roles {
		role := roles[i]
		if role.Name == "" || !role.Scope.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role.Name)
		}
		if _, ok := c.byName[role.Name]; ok {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicateRole, role.Name)
		}
		if _, ok := c.byID[role.ID]; ok {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicateRole, role.ID)
		}

		// Dedupe permission names so Can and set unions stay cheap.
		role.Permissions = dedupe(role.Permissions)

		c.byName[role.Name] = &role
		c.byID[role.ID] = &role
		c.names = append(c.names, role.Name)
	}

	slices.Sort(c.names)
	return c, nil
}

// ByName returns the role with the given name.
func (c *Catalog) ByName(name string) (*Role, error) {
	role, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoleNotFound, name)
	}
	return role, nil
}

// ByID returns the role with the given id.
func (c *Catalog) ByID(id int16) (*Role, error) {
	role, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrRoleNotFound, id)
	}
	return role, nil
}

// Require returns the named role, failing with ErrRoleNotSeeded when it is
// absent. Use for reserved roles the deployment cannot run without.
func (c *Catalog) Require(name string) (*Role, error) {
	role, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotSeeded, name)
	}
	return role, nil
}

// Names returns all role names sorted alphabetically.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
