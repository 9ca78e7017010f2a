package authz

import "strings"

// Permission identifies an atomic capability in canonical
// "<module>.<action>" form, e.g. "inventory.view". Comparisons are
// case-sensitive; the full set is fixed at build time by the Catalog.
type Permission string

func (p Permission) String() string { return string(p) }

// Module is a coarse functional area gated by its own view permission.
type Module string

const (
	ModuleDashboard Module = "dashboard"
	ModuleInventory Module = "inventory"
	ModuleStock     Module = "stock"
	ModuleSales     Module = "sales"
	ModuleSuppliers Module = "suppliers"
	ModuleReports   Module = "reports"
	ModuleUsers     Module = "users"
	ModuleSettings  Module = "settings"
)

// ParseModule normalizes a display identifier into a Module. It is the
// single boundary where free-form module strings enter the closed set.
func ParseModule(raw string) (Module, bool) {
	m := Module(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case ModuleDashboard, ModuleInventory, ModuleStock, ModuleSales,
		ModuleSuppliers, ModuleReports, ModuleUsers, ModuleSettings:
		return m, true
	}
	return "", false
}

// Grant bundles the permissions a role holds for one functional area.
// The Module field is a display label ("Inventory Management"), kept
// verbatim for role-detail screens.
type Grant struct {
	Module  string
	Actions []Permission
}

// Role is a named, fixed bundle of permissions plus metadata. Level is
// advisory ordering for display (higher = more privileges); no
// evaluation path consults it.
type Role struct {
	Name        string
	Description string
	Level       int
	Grants      []Grant
}
