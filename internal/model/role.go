package model

// Role is the closed set of roles a user can hold. Authorization logic
// switches on this type, so invalid roles are rejected at the boundary.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleFinance  Role = "Finance"
	RoleAdmin    Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleFinance, RoleAdmin:
		return true
	}
	return false
}

// Assignable reports whether the role may be given to a user created via
// the admin endpoint. Admin accounts are only created at bootstrap.
func (r Role) Assignable() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleFinance:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
