package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fixtureRoles() []Role {
	return []Role{
		{
			Name:        "Admin",
			Description: "Full access",
			Level:       4,
			Grants: []Grant{
				{Module: "Inventory Management", Actions: []Permission{
					PermInventoryView, PermInventoryCreate, PermInventoryUpdate, PermInventoryDelete,
				}},
				{Module: "User Management", Actions: []Permission{
					PermUsersView, PermUsersChangeRoles,
				}},
			},
		},
		{
			Name:        "Cashier",
			Description: "Sales only",
			Level:       1,
			Grants: []Grant{
				{Module: "Sales Management", Actions: []Permission{
					PermSalesView, PermSalesCreate, PermSalesProcess,
				}},
				{Module: "Inventory Management", Actions: []Permission{PermInventoryView}},
			},
		},
	}
}

func newFixtureEngine(t *testing.T) *Engine {
	t.Helper()
	registry, err := NewRegistry(NewCatalog(), fixtureRoles())
	require.NoError(t, err)
	return NewEngine(registry)
}

func TestHasPermissionMatchesGrants(t *testing.T) {
	engine := newFixtureEngine(t)

	require.True(t, engine.HasPermission("Admin", PermInventoryDelete))
	require.True(t, engine.HasPermission("Admin", PermUsersChangeRoles))
	require.True(t, engine.HasPermission("Cashier", PermSalesProcess))

	require.False(t, engine.HasPermission("Cashier", PermInventoryDelete))
	require.False(t, engine.HasPermission("Cashier", PermUsersView))
}

func TestHasPermissionRoleNameCaseInsensitive(t *testing.T) {
	engine := newFixtureEngine(t)

	require.True(t, engine.HasPermission("admin", PermInventoryView))
	require.True(t, engine.HasPermission("ADMIN", PermInventoryView))
	require.True(t, engine.HasPermission("  Admin  ", PermInventoryView))
}

func TestHasPermissionUnknownRoleDenies(t *testing.T) {
	engine := newFixtureEngine(t)

	require.False(t, engine.HasPermission("Intern", PermSalesView))
	require.False(t, engine.HasPermission("", PermSalesView))
}

func TestHasPermissionUnknownPermissionDenies(t *testing.T) {
	engine := newFixtureEngine(t)

	// A misspelled identifier never grants access, even for Admin.
	require.False(t, engine.HasPermission("Admin", Permission("inventory.vieww")))
	require.False(t, engine.HasPermission("Admin", Permission("")))
}

func TestCanAccessModule(t *testing.T) {
	engine := newFixtureEngine(t)

	tests := []struct {
		role   string
		module string
		want   bool
	}{
		{"Admin", "inventory", true},
		{"Admin", "users", true},
		{"Admin", "Inventory", true},
		{"Cashier", "sales", true},
		{"Cashier", "inventory", true},
		{"Cashier", "users", false},
		{"Cashier", "suppliers", false},
		{"Admin", "warehouse", false},
		{"Unknown", "sales", false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, engine.CanAccessModule(tc.role, tc.module),
			"role=%s module=%s", tc.role, tc.module)
	}
}

func TestEvaluationIsStable(t *testing.T) {
	engine := newFixtureEngine(t)

	for i := 0; i < 3; i++ {
		require.True(t, engine.HasPermission("Admin", PermUsersView))
		require.False(t, engine.HasPermission("Cashier", PermUsersView))
	}
}
