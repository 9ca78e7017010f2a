package authz

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that the requested role does not exist.
var ErrNotFound = errors.New("authz: role not found")

// Registry resolves role definitions by name. It is built once at
// startup and read-only afterwards, so it is safe for concurrent reads.
type Registry struct {
	byName map[string]Role
	sets   map[string]map[Permission]struct{}
	order  []string
}

// NewRegistry validates the role definitions against the catalog and
// indexes them under normalized names. Any role granting a permission
// absent from the catalog, or a duplicate role name, is a configuration
// error and fails construction.
func NewRegistry(catalog *Catalog, roles []Role) (*Registry, error) {
	if catalog == nil {
		return nil, errors.New("authz: catalog is required")
	}
	r := &Registry{
		byName: make(map[string]Role, len(roles)),
		sets:   make(map[string]map[Permission]struct{}, len(roles)),
	}
	for _, role := range roles {
		name := strings.TrimSpace(role.Name)
		if name == "" {
			return nil, errors.New("authz: role name required")
		}
		key := normalizeRoleName(name)
		if _, exists := r.byName[key]; exists {
			return nil, fmt.Errorf("authz: duplicate role %q", name)
		}
		set := make(map[Permission]struct{})
		for _, grant := range role.Grants {
			for _, perm := range grant.Actions {
				if !catalog.Exists(perm) {
					return nil, fmt.Errorf("authz: role %q grants unknown permission %q", name, perm)
				}
				set[perm] = struct{}{}
			}
		}
		r.byName[key] = role
		r.sets[key] = set
		r.order = append(r.order, key)
	}
	return r, nil
}

// Get fetches a role by name. Lookup is case-insensitive because the
// rest of the system passes role names in display case ("Admin").
func (r *Registry) Get(name string) (Role, bool) {
	role, ok := r.byName[normalizeRoleName(name)]
	return role, ok
}

// List returns all roles in registry construction order. The order is
// significant for deterministic display, not for authorization.
func (r *Registry) List() []Role {
	out := make([]Role, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byName[key])
	}
	return out
}

// grantSet returns the flattened permission set for a role, or nil when
// the role is unknown.
func (r *Registry) grantSet(name string) map[Permission]struct{} {
	return r.sets[normalizeRoleName(name)]
}

func normalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
