// Package seed loads the startup configuration: role definitions,
// known identities, and the view catalog. The shipped default mirrors
// the demo coffeeshop data; a YAML file can replace it wholesale.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/coffeestock/coffeestock/internal/authz"
	"github.com/coffeestock/coffeestock/internal/guard"
	"github.com/coffeestock/coffeestock/internal/identity"
)

//go:embed default.yaml
var defaultSeed []byte

// File is the decoded seed document.
type File struct {
	Roles      []RoleSeed     `yaml:"roles" validate:"required,min=1,dive"`
	Identities []IdentitySeed `yaml:"identities" validate:"required,min=1,dive"`
	Views      []ViewSeed     `yaml:"views" validate:"required,min=1,dive"`
}

// RoleSeed defines one role and its grant matrix.
type RoleSeed struct {
	Name        string      `yaml:"name" validate:"required"`
	Description string      `yaml:"description"`
	Level       int         `yaml:"level" validate:"required,gte=1"`
	Grants      []GrantSeed `yaml:"grants" validate:"required,min=1,dive"`
}

// GrantSeed lists the granted actions for one functional area.
type GrantSeed struct {
	Module  string   `yaml:"module" validate:"required"`
	Actions []string `yaml:"actions" validate:"required,min=1,dive,required"`
}

// IdentitySeed defines one known identity. Password is plaintext demo
// configuration; it is hashed at load time and never kept.
type IdentitySeed struct {
	Username string `yaml:"username" validate:"required"`
	FullName string `yaml:"full_name"`
	Email    string `yaml:"email" validate:"omitempty,email"`
	Role     string `yaml:"role" validate:"required"`
	Password string `yaml:"password"`
	Active   bool   `yaml:"active"`
}

// ViewSeed maps a view id to its required permission. An empty
// permission means any authenticated identity may reach the view.
type ViewSeed struct {
	ID         string `yaml:"id" validate:"required"`
	Title      string `yaml:"title"`
	Permission string `yaml:"permission"`
}

// Assets holds the materialized startup data ready for the core
// constructors, which perform the cross-referential validation
// (grants vs catalog, identity roles vs registry, view permissions
// vs catalog).
type Assets struct {
	Roles      []authz.Role
	Identities []identity.Record
	Views      []guard.View
}

// Load reads and parses a seed file. An empty path selects the
// embedded default.
func Load(path string) (*File, error) {
	if path == "" {
		return Parse(defaultSeed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("seed: validate: %w", err)
	}
	return &f, nil
}

// Build converts the document into core types, hashing demo passwords.
func (f *File) Build() (*Assets, error) {
	assets := &Assets{}

	for _, rs := range f.Roles {
		role := authz.Role{
			Name:        rs.Name,
			Description: rs.Description,
			Level:       rs.Level,
		}
		for _, gs := range rs.Grants {
			grant := authz.Grant{Module: gs.Module}
			for _, action := range gs.Actions {
				grant.Actions = append(grant.Actions, authz.Permission(action))
			}
			role.Grants = append(role.Grants, grant)
		}
		assets.Roles = append(assets.Roles, role)
	}

	for _, is := range f.Identities {
		rec := identity.Record{
			Identity: identity.Identity{
				Username: is.Username,
				FullName: is.FullName,
				Email:    is.Email,
				Role:     is.Role,
				Active:   is.Active,
			},
		}
		if is.Password != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(is.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("seed: hash password for %s: %w", is.Username, err)
			}
			rec.PasswordHash = string(hashed)
		}
		assets.Identities = append(assets.Identities, rec)
	}

	for _, vs := range f.Views {
		assets.Views = append(assets.Views, guard.View{
			ID:       vs.ID,
			Title:    vs.Title,
			Required: authz.Permission(vs.Permission),
		})
	}
	return assets, nil
}
