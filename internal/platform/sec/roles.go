// Copyright (c) 2026 Eduvia. All rights reserved.
// Author: platform@eduvia.io

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access: user administration, role changes, deletions
	RoleAdmin UserRole = "admin"

	// Default role for standard registered learners
	RoleUser UserRole = "user"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// IsValid reports whether the string value is a known role.
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleUser:
		return 10
	default:
		return 0
	}
}
