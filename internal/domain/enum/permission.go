package enum

// Permission names checked by the HTTP layer
const (
	PermManageMasters  = "manage-masters"
	PermManageUsers    = "manage-users"
	PermManagePrinters = "manage-printers"
	PermPunchKOT       = "punch-kot"
	PermManageBills    = "manage-bills"
	PermSettleBills    = "settle-bills"
	PermReverseBills   = "bills.reverse"
	PermEditSettlement = "edit-settlements"
	PermViewReports    = "view-reports"
	PermManageHandover = "manage-handover"
)

// Role names
const (
	RoleSuperAdmin = "super-admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleCashier    = "cashier"
	RoleCaptain    = "captain"
)

// AllPermissions lists every permission known to the service
var AllPermissions = []string{
	PermManageMasters,
	PermManageUsers,
	PermManagePrinters,
	PermPunchKOT,
	PermManageBills,
	PermSettleBills,
	PermReverseBills,
	PermEditSettlement,
	PermViewReports,
	PermManageHandover,
}

// RolePermissions maps each role to its permission set. Admin roles get all.
var RolePermissions = map[string][]string{
	RoleSuperAdmin: AllPermissions,
	RoleAdmin:      AllPermissions,
	RoleManager: {
		PermManageMasters, PermManagePrinters, PermPunchKOT, PermManageBills,
		PermSettleBills, PermReverseBills, PermEditSettlement, PermViewReports, PermManageHandover,
	},
	RoleCashier: {PermPunchKOT, PermManageBills, PermSettleBills, PermViewReports, PermManageHandover},
	RoleCaptain: {PermPunchKOT},
}

// IsAdminRole reports whether role bypasses outlet scoping
func IsAdminRole(role string) bool {
	return role == RoleSuperAdmin || role == RoleAdmin
}
