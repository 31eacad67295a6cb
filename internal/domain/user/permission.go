package user

type Permission string

const (
	// Attendance
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"

	// Payroll settlements
	PermissionPayrollView     Permission = "payroll.view"
	PermissionPayrollGenerate Permission = "payroll.generate"
	PermissionPayrollApprove  Permission = "payroll.approve"
	PermissionPayrollPay      Permission = "payroll.pay"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionPayrollView,
		PermissionPayrollGenerate,
		PermissionPayrollApprove,
		PermissionPayrollPay,
	},
	RoleManager: {
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
		PermissionPayrollView,
		PermissionPayrollGenerate,
		PermissionPayrollApprove,
	},
	RoleEmployee: {
		PermissionAttendanceViewOwn,
		PermissionAttendanceCreate,
	},
	RoleSystem: {
		// Scheduled generation only
		PermissionPayrollGenerate,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
