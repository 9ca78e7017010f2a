package identity

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/coffeestock/coffeestock/internal/authz"
)

var (
	// ErrInvalidCredentials indicates login failure. Unknown usernames,
	// wrong passwords, and inactive accounts are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	// ErrNotFound indicates the username is not a known identity.
	ErrNotFound = errors.New("identity: not found")
)

// Identity is a concrete user record bound to exactly one role.
type Identity struct {
	Username string
	FullName string
	Email    string
	Role     string
	Active   bool
}

// Record is the startup configuration for one identity. PasswordHash is
// a bcrypt hash; identities without one cannot authenticate by
// credentials but remain selectable through the switcher.
type Record struct {
	Identity
	PasswordHash string
}

// Store is the fixed set of known identities. It is populated once at
// startup and read-only afterwards; lookups return copies so callers
// can never mutate the canonical record.
type Store struct {
	byUsername map[string]Record
	order      []string
}

// NewStore indexes the records, validating each against the role
// registry. An identity referencing an unknown role is a configuration
// error and fails construction.
func NewStore(registry *authz.Registry, records []Record) (*Store, error) {
	s := &Store{byUsername: make(map[string]Record, len(records))}
	for _, rec := range records {
		username := strings.TrimSpace(rec.Username)
		if username == "" {
			return nil, errors.New("identity: username required")
		}
		if _, exists := s.byUsername[username]; exists {
			return nil, fmt.Errorf("identity: duplicate username %q", username)
		}
		if _, ok := registry.Get(rec.Role); !ok {
			return nil, fmt.Errorf("identity: %q references unknown role %q", username, rec.Role)
		}
		rec.Username = username
		s.byUsername[username] = rec
		s.order = append(s.order, username)
	}
	return s, nil
}

// Lookup fetches an identity by username.
func (s *Store) Lookup(username string) (Identity, bool) {
	rec, ok := s.byUsername[strings.TrimSpace(username)]
	return rec.Identity, ok
}

// Authenticate validates username/password credentials and returns the
// matched identity. Inactive identities and identities without a
// credential always fail.
func (s *Store) Authenticate(username, password string) (Identity, error) {
	rec, ok := s.byUsername[strings.TrimSpace(username)]
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	if !rec.Active || rec.PasswordHash == "" {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return rec.Identity, nil
}

// List returns all identities in store construction order, for the
// identity-switcher UI.
func (s *Store) List() []Identity {
	out := make([]Identity, 0, len(s.order))
	for _, username := range s.order {
		out = append(out, s.byUsername[username].Identity)
	}
	return out
}
