package user

type Role string

const (
	RoleOwner    Role = "owner"    // Company owner - full access
	RoleManager  Role = "manager"  // Can view and run attendance operations
	RoleEmployee Role = "employee" // Regular employee
	RoleOperator Role = "operator" // Service account for ops tooling
)

func (r Role) IsValid() bool {
	_, ok := RolePermissions[r]
	return ok
}
