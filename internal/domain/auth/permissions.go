package auth

import (
	"slices"

	"shoppos/internal/core/apperror"
)

// Role is a fixed user role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

// Permissions checked by the HTTP layer.
const (
	PermBillCreate    = "bill:create"
	PermBillRead      = "bill:read"
	PermBillDelete    = "bill:delete"
	PermStockAdjust   = "stock:adjust"
	PermStockRead     = "stock:read"
	PermCatalogRead   = "catalog:read"
	PermCatalogWrite  = "catalog:write"
	PermCustomerRead  = "customer:read"
	PermCustomerWrite = "customer:write"
	PermReportRead    = "report:read"
	PermUserManage    = "user:manage"
)

// AllPermissions lists every permission, in display order.
var AllPermissions = []string{
	PermBillCreate, PermBillRead, PermBillDelete,
	PermStockAdjust, PermStockRead,
	PermCatalogRead, PermCatalogWrite,
	PermCustomerRead, PermCustomerWrite,
	PermReportRead, PermUserManage,
}

var rolePermissions = map[Role][]string{
	RoleAdmin: AllPermissions,
	RoleCashier: {
		PermBillCreate, PermBillRead,
		PermStockRead,
		PermCatalogRead,
		PermCustomerRead, PermCustomerWrite,
	},
}

// ParseRole validates s; empty means cashier.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case "":
		return RoleCashier, nil
	case RoleAdmin, RoleCashier:
		return r, nil
	default:
		return "", apperror.NewValidation("role must be admin or cashier").WithDetail("field", "role")
	}
}

// Permissions returns a copy of the permissions granted to r.
func (r Role) Permissions() []string {
	return slices.Clone(rolePermissions[r])
}

// Can reports whether r grants perm.
func (r Role) Can(perm string) bool {
	return slices.Contains(rolePermissions[r], perm)
}
