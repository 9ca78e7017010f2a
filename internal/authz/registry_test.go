package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRegistryRejectsUnknownPermission(t *testing.T) {
	roles := []Role{{
		Name: "Broken",
		Grants: []Grant{
			{Module: "Inventory Management", Actions: []Permission{Permission("inventory.fly")}},
		},
	}}

	_, err := NewRegistry(NewCatalog(), roles)
	require.Error(t, err)
	require.Contains(t, err.Error(), "inventory.fly")
}

func TestNewRegistryRejectsDuplicateRole(t *testing.T) {
	roles := []Role{
		{Name: "Admin"},
		{Name: "admin"},
	}

	_, err := NewRegistry(NewCatalog(), roles)
	require.Error(t, err)
}

func TestNewRegistryRejectsEmptyName(t *testing.T) {
	_, err := NewRegistry(NewCatalog(), []Role{{Name: "   "}})
	require.Error(t, err)
}

func TestRegistryGetCaseInsensitive(t *testing.T) {
	registry, err := NewRegistry(NewCatalog(), fixtureRoles())
	require.NoError(t, err)

	role, ok := registry.Get("CASHIER")
	require.True(t, ok)
	require.Equal(t, "Cashier", role.Name)
	require.Equal(t, 1, role.Level)

	_, ok = registry.Get("nobody")
	require.False(t, ok)
}

func TestRegistryListKeepsConstructionOrder(t *testing.T) {
	registry, err := NewRegistry(NewCatalog(), fixtureRoles())
	require.NoError(t, err)

	roles := registry.List()
	require.Len(t, roles, 2)
	require.Equal(t, "Admin", roles[0].Name)
	require.Equal(t, "Cashier", roles[1].Name)
}

func TestCatalogFailsClosed(t *testing.T) {
	catalog := NewCatalog()

	require.True(t, catalog.Exists(PermSuppliersDelete))
	require.False(t, catalog.Exists(Permission("suppliers.purge")))
	require.Len(t, catalog.List(), len(allPermissions))
}
