package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can generate and approve settlements
	RoleEmployee Role = "employee" // Regular employee
	RoleSystem   Role = "system"   // Background jobs running inside the service
)

// Actor is the already-authenticated identity performing an operation.
// It is resolved from verified token claims; credentials are never checked here.
type Actor struct {
	UserID     string
	CompanyID  string
	EmployeeID string
	Role       Role
}

// Can reports whether the actor's role grants the permission.
func (a Actor) Can(permission Permission) bool {
	return HasPermission(a.Role, permission)
}

// IsOwner checks if actor is company owner
func (a Actor) IsOwner() bool {
	return a.Role == RoleOwner
}

// IsManager checks if actor is manager or owner
func (a Actor) IsManager() bool {
	return a.Role == RoleManager || a.Role == RoleOwner
}
