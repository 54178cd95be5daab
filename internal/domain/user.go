package domain

// UserRole роль пользователя клуба
type UserRole string

const (
	RoleMember UserRole = "member"
	RoleStaff  UserRole = "staff"
	RoleAdmin  UserRole = "admin"
)

// IsPrivileged returns true for staff and admins
func (r UserRole) IsPrivileged() bool {
	return r == RoleStaff || r == RoleAdmin
}
