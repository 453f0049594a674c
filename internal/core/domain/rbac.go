package domain

import "time"

// Role defines a named bundle of permissions assignable to users.
type Role struct {
	ID   string
	Name string
	// UserCount is populated on reads that aggregate membership; it is not
	// a stored column.
	UserCount int
}

// Permission defines an immutable capability catalog entry. Owner is the
// label of the subsystem the permission belongs to.
type Permission struct {
	ID    string
	Name  string
	Owner string
}

// RolePermission links a role with a permission.
type RolePermission struct {
	RoleID       string
	PermissionID string
}

// UserRole assigns a role to a user.
type UserRole struct {
	UserID     string
	RoleID     string
	AssignedAt time.Time
}
