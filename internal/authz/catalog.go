package authz

// Dashboard permissions.
const (
	PermDashboardView Permission = "dashboard.view"
)

// Inventory permissions.
const (
	PermInventoryView   Permission = "inventory.view"
	PermInventoryCreate Permission = "inventory.create"
	PermInventoryUpdate Permission = "inventory.update"
	PermInventoryDelete Permission = "inventory.delete"
)

// Stock permissions.
const (
	PermStockView    Permission = "stock.view"
	PermStockAdd     Permission = "stock.add"
	PermStockDeduct  Permission = "stock.deduct"
	PermStockHistory Permission = "stock.history"
)

// Sales permissions.
const (
	PermSalesView    Permission = "sales.view"
	PermSalesCreate  Permission = "sales.create"
	PermSalesProcess Permission = "sales.process"
)

// Supplier permissions.
const (
	PermSuppliersView   Permission = "suppliers.view"
	PermSuppliersCreate Permission = "suppliers.create"
	PermSuppliersUpdate Permission = "suppliers.update"
	PermSuppliersDelete Permission = "suppliers.delete"
)

// Report permissions.
const (
	PermReportsView     Permission = "reports.view"
	PermReportsBasic    Permission = "reports.basic"
	PermReportsAdvanced Permission = "reports.advanced"
	PermReportsExport   Permission = "reports.export"
)

// User management permissions.
const (
	PermUsersView           Permission = "users.view"
	PermUsersCreate         Permission = "users.create"
	PermUsersUpdate         Permission = "users.update"
	PermUsersDelete         Permission = "users.delete"
	PermUsersChangeRoles    Permission = "users.change_roles"
	PermUsersResetPasswords Permission = "users.reset_passwords"
)

// Settings permissions.
const (
	PermSettingsView     Permission = "settings.view"
	PermSettingsSystem   Permission = "settings.system"
	PermSettingsPersonal Permission = "settings.personal"
)

var allPermissions = []Permission{
	PermDashboardView,
	PermInventoryView, PermInventoryCreate, PermInventoryUpdate, PermInventoryDelete,
	PermStockView, PermStockAdd, PermStockDeduct, PermStockHistory,
	PermSalesView, PermSalesCreate, PermSalesProcess,
	PermSuppliersView, PermSuppliersCreate, PermSuppliersUpdate, PermSuppliersDelete,
	PermReportsView, PermReportsBasic, PermReportsAdvanced, PermReportsExport,
	PermUsersView, PermUsersCreate, PermUsersUpdate, PermUsersDelete,
	PermUsersChangeRoles, PermUsersResetPasswords,
	PermSettingsView, PermSettingsSystem, PermSettingsPersonal,
}

// Catalog is the closed registry of every permission the application
// recognizes. Checks against it fail closed: an identifier not present
// is treated as non-existent, never as an implicit grant.
type Catalog struct {
	perms map[Permission]struct{}
	order []Permission
}

// NewCatalog builds the full permission catalog.
func NewCatalog() *Catalog {
	c := &Catalog{
		perms: make(map[Permission]struct{}, len(allPermissions)),
		order: allPermissions,
	}
	for _, p := range allPermissions {
		c.perms[p] = struct{}{}
	}
	return c
}

// Exists reports whether the permission is part of the catalog.
func (c *Catalog) Exists(p Permission) bool {
	_, ok := c.perms[p]
	return ok
}

// List returns every permission in declaration order.
func (c *Catalog) List() []Permission {
	out := make([]Permission, len(c.order))
	copy(out, c.order)
	return out
}
