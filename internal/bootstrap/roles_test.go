package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-bootstrap/internal/domain"
)

func TestSeedDefaultUserRole_WithoutRoleOrder(t *testing.T) {
	h := newHarness(t, testOptions())
	res := &Result{}

	require.NoError(t, h.b.seedDefaultUserRole(context.Background(), res))

	assert.Empty(t, h.mem.Settings())
	assert.Zero(t, h.mem.Writes())
	assert.Empty(t, res.DefaultUserRoleID)
}

func TestSeedRoles_KeepsExistingRole(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	custom := &domain.Role{Name: domain.RoleNameSupport, Grants: []string{"tickets:view"}}
	require.NoError(t, h.mem.Repositories().Roles.Create(ctx, custom))

	require.NoError(t, h.b.seedRoles(ctx, &Result{}))

	roles := h.mem.Roles()
	assert.Len(t, roles, 3)
	for _, r := range roles {
		if r.Name == domain.RoleNameSupport {
			assert.Equal(t, []string{"tickets:view"}, r.Grants)
			assert.Equal(t, custom.ID, r.ID)
		}
	}
	require.Len(t, h.mem.RoleOrders(), 1)
	assert.Equal(t, custom.ID, h.mem.RoleOrders()[0].Order[1])
}

func TestSeedRoleOrder_MissingRole(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	require.NoError(t, h.mem.Repositories().Roles.Create(ctx, &domain.Role{Name: domain.RoleNameAdmin}))

	err := h.b.seedRoleOrder(ctx)

	assert.ErrorIs(t, err, ErrRoleMissing)
	assert.Empty(t, h.mem.RoleOrders())
}

func TestSeedRoleOrder_NeverRebuilt(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	existing := &domain.RoleOrder{Order: []string{"a", "b"}}
	require.NoError(t, h.mem.Repositories().Roles.CreateOrder(ctx, existing))

	require.NoError(t, h.b.seedRoles(ctx, &Result{}))
	res := &Result{}
	require.NoError(t, h.b.seedDefaultUserRole(ctx, res))

	require.Len(t, h.mem.RoleOrders(), 1)
	assert.Equal(t, []string{"a", "b"}, h.mem.RoleOrders()[0].Order)
	assert.Equal(t, "b", res.DefaultUserRoleID)
}

func TestDefaultRoles_Grants(t *testing.T) {
	byName := map[string]domain.Role{}
	for _, r := range DefaultRoles {
		byName[r.Name] = r
	}
	require.Len(t, byName, 3)
	assert.Contains(t, byName[domain.RoleNameAdmin].Grants, "admin:*")
	assert.Contains(t, byName[domain.RoleNameSupport].Grants, "tickets:*")
	assert.NotContains(t, byName[domain.RoleNameUser].Grants, "tickets:*")
}
