package domain

import "slices"

// Role represents a clinic staff role. Exactly one role is held per identity.
type Role string

const (
	// RoleAdmin manages the clinic account: users, settings, API keys and audit reports
	RoleAdmin Role = "ADMIN"

	// RoleDentist works with patients, treatments and AI analyses
	RoleDentist Role = "DENTIST"

	// RoleReceptionist handles patients and appointments
	RoleReceptionist Role = "RECEPTIONIST"
)

// ValidRoles contains all valid roles in the system
var ValidRoles = []Role{RoleAdmin, RoleDentist, RoleReceptionist}

// IsValidRole checks if a given role is valid
func IsValidRole(role string) bool {
	return slices.Contains(ValidRoles, Role(role))
}

// HasAnyRole checks if role is one of the required roles
func HasAnyRole(role Role, requiredRoles ...Role) bool {
	return slices.Contains(requiredRoles, role)
}
