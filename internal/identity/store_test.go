package identity

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/coffeestock/coffeestock/internal/authz"
)

func testRegistry(t *testing.T) *authz.Registry {
	t.Helper()
	registry, err := authz.NewRegistry(authz.NewCatalog(), []authz.Role{
		{Name: "Admin", Level: 4},
		{Name: "Cashier", Level: 1},
	})
	require.NoError(t, err)
	return registry
}

func hash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestAuthenticate(t *testing.T) {
	store, err := NewStore(testRegistry(t), []Record{
		{
			Identity:     Identity{Username: "admin", FullName: "John Administrator", Role: "Admin", Active: true},
			PasswordHash: hash(t, "admin123"),
		},
		{
			Identity:     Identity{Username: "ghost", Role: "Cashier", Active: false},
			PasswordHash: hash(t, "ghost123"),
		},
		{
			Identity: Identity{Username: "nopass", Role: "Cashier", Active: true},
		},
	})
	require.NoError(t, err)

	ident, err := store.Authenticate("admin", "admin123")
	require.NoError(t, err)
	require.Equal(t, "Admin", ident.Role)
	require.Equal(t, "John Administrator", ident.FullName)

	_, err = store.Authenticate("admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = store.Authenticate("unknown", "admin123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Inactive identities fail even with the right password.
	_, err = store.Authenticate("ghost", "ghost123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Identities without a credential cannot log in.
	_, err = store.Authenticate("nopass", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestNewStoreRejectsUnknownRole(t *testing.T) {
	_, err := NewStore(testRegistry(t), []Record{
		{Identity: Identity{Username: "drifter", Role: "Janitor", Active: true}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Janitor")
}

func TestNewStoreRejectsDuplicateUsername(t *testing.T) {
	_, err := NewStore(testRegistry(t), []Record{
		{Identity: Identity{Username: "admin", Role: "Admin", Active: true}},
		{Identity: Identity{Username: "admin", Role: "Cashier", Active: true}},
	})
	require.Error(t, err)
}

func TestLookupAndList(t *testing.T) {
	store, err := NewStore(testRegistry(t), []Record{
		{Identity: Identity{Username: "admin", Role: "Admin", Active: true}},
		{Identity: Identity{Username: "cashier", Role: "Cashier", Active: true}},
	})
	require.NoError(t, err)

	ident, ok := store.Lookup("cashier")
	require.True(t, ok)
	require.Equal(t, "Cashier", ident.Role)

	_, ok = store.Lookup("nobody")
	require.False(t, ok)

	list := store.List()
	require.Len(t, list, 2)
	require.Equal(t, "admin", list[0].Username)
	require.Equal(t, "cashier", list[1].Username)
}
