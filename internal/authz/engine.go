package authz

// moduleViewPermissions maps each module to the permission that gates
// read access to it.
var moduleViewPermissions = map[Module]Permission{
	ModuleDashboard: PermDashboardView,
	ModuleInventory: PermInventoryView,
	ModuleStock:     PermStockView,
	ModuleSales:     PermSalesView,
	ModuleSuppliers: PermSuppliersView,
	ModuleReports:   PermReportsView,
	ModuleUsers:     PermUsersView,
	ModuleSettings:  PermSettingsView,
}

// Engine evaluates permission checks against the registry. Both methods
// are pure and total: they never mutate state and never fail, so they
// are safe to call on every navigation or render. Unknown roles,
// permissions, and modules all evaluate to false.
type Engine struct {
	registry *Registry
}

// NewEngine constructs an Engine backed by the registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// HasPermission reports whether the named role holds the permission.
// Evaluation is a flat set-membership test over the role's grants;
// there is no inheritance or wildcard expansion.
func (e *Engine) HasPermission(roleName string, perm Permission) bool {
	set := e.registry.grantSet(roleName)
	if set == nil {
		return false
	}
	_, ok := set[perm]
	return ok
}

// CanAccessModule reports whether the named role may view the module.
// An unrecognized module identifier denies access.
func (e *Engine) CanAccessModule(roleName string, moduleID string) bool {
	module, ok := ParseModule(moduleID)
	if !ok {
		return false
	}
	return e.HasPermission(roleName, moduleViewPermissions[module])
}
