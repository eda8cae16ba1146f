package authz_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetch/accesskit/pkg/audit"
	"github.com/avetch/accesskit/pkg/authz"
	"github.com/avetch/accesskit/pkg/rbac"
	"github.com/avetch/accesskit/pkg/resource"
	"github.com/avetch/accesskit/pkg/txn"
	"github.com/avetch/accesskit/pkg/user"
)

type grantsFixture struct {
	*engineFixture
	users    *user.MemoryStore
	auditMem *audit.MemoryStorage
	grants   *authz.Grants
}

func newGrantsFixture(t *testing.T) *grantsFixture {
	t.Helper()

	ef := newEngineFixture(t)
	users := user.NewMemoryStore()
	auditMem := audit.NewMemoryStorage()
	// The snapshot runner rolls participating stores back on error, the same
	// way the database-backed runner rolls its transaction back.
	runner := txn.SnapshotRunner(ef.bindings, auditMem)
	grants := authz.NewGrants(ef.engine, ef.catalog, ef.bindings, ef.resources, users, audit.NewLogger(auditMem),
		authz.WithGrantsTxRunner(runner))
	return &grantsFixture{engineFixture: ef, users: users, auditMem: auditMem, grants: grants}
}

func (f *grantsFixture) addUser(t *testing.T, name string) uuid.UUID {
	t.Helper()

	u := user.New(name+"@example.com", name, "x")
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func TestGrants_AssignAndRemove(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newGrantsFixture(t)

	tenantID := uuid.New()
	root := f.addResource(t, tenantID, nil, "Acme")

	actor := f.addUser(t, "alice")
	target := f.addUser(t, "bob")
	f.bind(t, actor, rbac.RoleTenantAdmin, root.ID)

	userRole, err := f.catalog.ByName(rbac.RoleUser)
	require.NoError(t, err)

	require.NoError(t, f.grants.Assign(ctx, actor, target, userRole.ID, root.ID))

	// The target can now use the granted role.
	ok, err := f.engine.HasPermission(ctx, target, rbac.PermResourceRead, root)
	require.NoError(t, err)
	assert.True(t, ok)

	event, okEvent := f.auditMem.Last()
	require.True(t, okEvent)
	assert.Equal(t, authz.ActionAssignRole, event.Action)
	assert.Equal(t, audit.OutcomeSuccess, event.Outcome)
	assert.Equal(t, actor, event.ActorID)
	assert.Equal(t, tenantID, event.TenantID)

	// Duplicate grant conflicts.
	assert.ErrorIs(t, f.grants.Assign(ctx, actor, target, userRole.ID, root.ID), authz.ErrAlreadyAssigned)

	require.NoError(t, f.grants.Remove(ctx, actor, target, userRole.ID, root.ID))

	ok, err = f.engine.HasPermission(ctx, target, rbac.PermResourceRead, root)
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing again misses.
	assert.ErrorIs(t, f.grants.Remove(ctx, actor, target, userRole.ID, root.ID), authz.ErrBindingNotFound)
}

func TestGrants_DenialIsAudited(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newGrantsFixture(t)

	tenantID := uuid.New()
	root := f.addResource(t, tenantID, nil, "Acme")

	actor := f.addUser(t, "mallory")
	target := f.addUser(t, "bob")
	// Actor holds only USER, which lacks ASSIGN_ROLE.
	f.bind(t, actor, rbac.RoleUser, root.ID)

	userRole, err := f.catalog.ByName(rbac.RoleUser)
	require.NoError(t, err)

	err = f.grants.Assign(ctx, actor, target, userRole.ID, root.ID)
	assert.ErrorIs(t, err, authz.ErrAccessDenied)

	// The error rolls the transaction back; the FAILURE record is written
	// before it opens and must survive.
	event, ok := f.auditMem.Last()
	require.True(t, ok)
	assert.Equal(t, authz.ActionAssignRole, event.Action)
	assert.Equal(t, audit.OutcomeFailure, event.Outcome)
	assert.Equal(t, actor, event.ActorID)

	// And the binding was not created.
	bindings, err := f.bindings.ListByUser(ctx, target)
	require.NoError(t, err)
	assert.Empty(t, bindings)

	// Same for a denied removal.
	err = f.grants.Remove(ctx, actor, target, userRole.ID, root.ID)
	assert.ErrorIs(t, err, authz.ErrAccessDenied)

	event, ok = f.auditMem.Last()
	require.True(t, ok)
	assert.Equal(t, authz.ActionRemoveRole, event.Action)
	assert.Equal(t, audit.OutcomeFailure, event.Outcome)
}

func TestGrants_UnknownParticipants(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newGrantsFixture(t)

	root := f.addResource(t, uuid.New(), nil, "Acme")
	actor := f.addUser(t, "alice")
	f.bind(t, actor, rbac.RoleTenantAdmin, root.ID)

	userRole, err := f.catalog.ByName(rbac.RoleUser)
	require.NoError(t, err)

	t.Run("missing resource", func(t *testing.T) {
		err := f.grants.Assign(ctx, actor, uuid.New(), userRole.ID, uuid.New())
		assert.ErrorIs(t, err, resource.ErrResourceNotFound)
	})

	t.Run("missing actor", func(t *testing.T) {
		err := f.grants.Assign(ctx, uuid.New(), actor, userRole.ID, root.ID)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("missing target", func(t *testing.T) {
		err := f.grants.Assign(ctx, actor, uuid.New(), userRole.ID, root.ID)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("missing role", func(t *testing.T) {
		target := f.addUser(t, "carol")
		err := f.grants.Assign(ctx, actor, target, 99, root.ID)
		assert.ErrorIs(t, err, rbac.ErrRoleNotFound)
	})
}

// Bindings created moments apart keep distinct timestamps.
func TestNewBinding_Timestamps(t *testing.T) {
	t.Parallel()

	b := authz.NewBinding(uuid.New(), 1, uuid.New())
	assert.WithinDuration(t, time.Now().UTC(), b.CreatedAt, time.Second)
}
