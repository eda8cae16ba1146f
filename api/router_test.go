package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetch/accesskit/api"
	"github.com/avetch/accesskit/pkg/audit"
	"github.com/avetch/accesskit/pkg/authz"
	"github.com/avetch/accesskit/pkg/rbac"
	"github.com/avetch/accesskit/pkg/resource"
	"github.com/avetch/accesskit/pkg/tenant"
	"github.com/avetch/accesskit/pkg/user"
)

type apiFixture struct {
	router   http.Handler
	users    *user.MemoryStore
	bindings *authz.MemoryBindingStore
	catalog  *rbac.Catalog
	creator  *user.User
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	catalog, err := rbac.NewCatalog(ctx, rbac.NewStaticSource(rbac.DefaultRoles()))
	require.NoError(t, err)

	tenants := tenant.NewMemoryStore()
	resources := resource.NewMemoryStore()
	bindings := authz.NewMemoryBindingStore()
	users := user.NewMemoryStore()
	auditLog := audit.NewLogger(audit.NewMemoryStorage())

	engine := authz.NewEngine(catalog, bindings, resources)

	creator := user.New("founder@acme.test", "founder", "hash")
	require.NoError(t, users.Create(ctx, creator))

	// The creator holds ADMIN on a seeded system tenant's root, the way a
	// fresh deployment seeds its operator. Creating tenants needs a global
	// TENANT_CREATE grant.
	system := tenant.New("System", "system")
	require.NoError(t, tenants.Create(ctx, system))
	sysRoot := resource.NewRoot(system.ID, "System")
	require.NoError(t, resources.Create(ctx, sysRoot))
	adminRole, err := catalog.Require(rbac.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, bindings.Create(ctx, authz.NewBinding(creator.ID, adminRole.ID, sysRoot.ID)))

	router := api.NewRouter(api.Deps{
		Tenants:   tenant.NewService(tenants, resources, bindings, users, catalog, auditLog),
		Resources: resource.NewService(resources, engine, auditLog),
		Grants:    authz.NewGrants(engine, catalog, bindings, resources, users, auditLog),
		Engine:    engine,
	})

	return &apiFixture{
		router:   router,
		users:    users,
		bindings: bindings,
		catalog:  catalog,
		creator:  creator,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string, actor uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if actor != uuid.Nil {
		req.Header.Set(api.ActorHeader, actor.String())
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func (f *apiFixture) bootstrapTenant(t *testing.T, name, code string) tenant.Tenant {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/tenants", f.creator.ID, map[string]string{
		"name": name,
		"code": code,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[tenant.Tenant](t, rec)
}

// findRootID returns the root the fixture creator was bound TENANT_ADMIN on
// during bootstrap, skipping the seeded system grant.
func (f *apiFixture) findRootID(t *testing.T) uuid.UUID {
	t.Helper()
	tenantAdmin, err := f.catalog.ByName(rbac.RoleTenantAdmin)
	require.NoError(t, err)

	bindings, err := f.bindings.ListByUser(context.Background(), f.creator.ID)
	require.NoError(t, err)
	for _, b := range bindings {
		if b.RoleID == tenantAdmin.ID {
			return b.ResourceID
		}
	}
	t.Fatal("creator has no tenant admin binding")
	return uuid.Nil
}

func TestRouter_TenantLifecycle(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	created := f.bootstrapTenant(t, "Acme", "acme")
	assert.Equal(t, "Acme", created.Name)
	assert.Equal(t, tenant.StatusActive, created.Status)

	t.Run("duplicate code conflicts", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/tenants", f.creator.ID, map[string]string{
			"name": "Other", "code": "acme",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/tenants", f.creator.ID, map[string]string{
			"code": "no-name",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("missing actor header", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/tenants", uuid.Nil, map[string]string{
			"name": "N", "code": "c",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("without global grant is forbidden", func(t *testing.T) {
		nobody := user.New("nobody@acme.test", "nobody", "hash")
		require.NoError(t, f.users.Create(context.Background(), nobody))

		rec := f.do(t, http.MethodPost, "/tenants", nobody.ID, map[string]string{
			"name": "N", "code": "c2",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		// An id with no account behind it is refused the same way.
		rec = f.do(t, http.MethodPost, "/tenants", uuid.New(), map[string]string{
			"name": "N", "code": "c2",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("get by id", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/tenants/"+created.ID.String(), f.creator.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeData[tenant.Tenant](t, rec)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("list as admin sees everything", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/tenants", f.creator.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeData[[]tenant.Tenant](t, rec)
		// The seeded system tenant plus the bootstrapped one.
		assert.Len(t, got, 2)
	})

	t.Run("list is filtered for everyone else", func(t *testing.T) {
		member := user.New("member@acme.test", "member", "hash")
		require.NoError(t, f.users.Create(context.Background(), member))

		rec := f.do(t, http.MethodGet, "/tenants", member.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeData[[]tenant.Tenant](t, rec))

		userRole, err := f.catalog.ByName(rbac.RoleUser)
		require.NoError(t, err)
		require.NoError(t, f.bindings.Create(context.Background(),
			authz.NewBinding(member.ID, userRole.ID, f.findRootID(t))))

		rec = f.do(t, http.MethodGet, "/tenants", member.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeData[[]tenant.Tenant](t, rec)
		require.Len(t, got, 1)
		assert.Equal(t, created.ID, got[0].ID)
	})

	t.Run("accessible", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/tenants/accessible", f.creator.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeData[[]tenant.Tenant](t, rec)
		ids := make([]uuid.UUID, 0, len(got))
		for _, tn := range got {
			ids = append(ids, tn.ID)
		}
		assert.Contains(t, ids, created.ID)

		empty := f.do(t, http.MethodGet, "/tenants/accessible", uuid.New(), nil)
		require.Equal(t, http.StatusOK, empty.Code)
		assert.Empty(t, decodeData[[]tenant.Tenant](t, empty))
	})
}

func TestRouter_ResourceLifecycle(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	f.bootstrapTenant(t, "Acme", "acme")
	rootID := f.findRootID(t)

	child := f.createResource(t, rootID, "Dept", "TEAM")
	assert.Equal(t, "/Acme/Dept", child.Path)

	t.Run("tree", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/resources/"+rootID.String()+"/tree", f.creator.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		tree := decodeData[resource.Node](t, rec)
		require.Len(t, tree.Children, 1)
		assert.Equal(t, child.ID, tree.Children[0].Resource.ID)
	})

	t.Run("tree denied without binding", func(t *testing.T) {
		outsider := user.New("o@x.test", "o", "h")
		require.NoError(t, f.users.Create(context.Background(), outsider))
		rec := f.do(t, http.MethodGet, "/resources/"+rootID.String()+"/tree", outsider.ID, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("move under own child conflicts", func(t *testing.T) {
		grand := f.createResource(t, child.ID, "Squad", "TEAM")
		rec := f.do(t, http.MethodPost, "/resources/"+child.ID.String()+"/move", f.creator.ID,
			map[string]string{"new_parent_id": grand.ID.String()})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete with children conflicts", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, "/resources/"+child.ID.String(), f.creator.ID, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("permissions", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/resources/"+child.ID.String()+"/permissions", f.creator.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data struct {
				Permissions []string `json:"permissions"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Data.Permissions, rbac.PermResourceCreate)
	})

	t.Run("missing resource is 404", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/resources/"+uuid.NewString()+"/tree", f.creator.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/resources/not-a-uuid/tree", f.creator.ID, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouter_RoleGrants(t *testing.T) {
	t.Parallel()
	f := newAPIFixture(t)

	f.bootstrapTenant(t, "Acme", "acme")
	rootID := f.findRootID(t)

	member := user.New("member@acme.test", "member", "hash")
	require.NoError(t, f.users.Create(context.Background(), member))

	userRole, err := f.catalog.ByName(rbac.RoleUser)
	require.NoError(t, err)

	grant := map[string]any{
		"user_id":     member.ID,
		"role_id":     userRole.ID,
		"resource_id": rootID,
	}

	t.Run("assign", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/roles/assign", f.creator.ID, grant)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("duplicate assign conflicts", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/roles/assign", f.creator.ID, grant)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("member can now read the tree", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/resources/"+rootID.String()+"/tree", member.ID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("member cannot grant", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/roles/assign", member.ID, map[string]any{
			"user_id":     member.ID,
			"role_id":     userRole.ID,
			"resource_id": rootID,
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("remove", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/roles/remove", f.creator.ID, grant)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		again := f.do(t, http.MethodPost, "/roles/remove", f.creator.ID, grant)
		assert.Equal(t, http.StatusNotFound, again.Code)
	})
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	t.Run("ready", func(t *testing.T) {
		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, "/healthz", uuid.Nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "READY", rec.Body.String())
	})

	t.Run("failing dependency", func(t *testing.T) {
		router := api.NewRouter(api.Deps{
			Healthchecks: []func(ctx context.Context) error{
				func(ctx context.Context) error { return fmt.Errorf("db down") },
			},
		})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

// createResource posts a child under parentID as the fixture creator.
func (f *apiFixture) createResource(t *testing.T, parentID uuid.UUID, name, rtype string) resource.Resource {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/resources", f.creator.ID, map[string]any{
		"parent_id": parentID,
		"name":      name,
		"type":      rtype,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[resource.Resource](t, rec)
}
