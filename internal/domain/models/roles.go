package models

import "fmt"

// Role is a user's capability tier.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Roles lists every valid role in ascending order of capability.
var Roles = []Role{RoleUser, RoleOrganizer, RoleAdmin}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r carries administrative capability.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// CanOrganize reports whether r may organize events. Admins can do
// everything organizers can.
func (r Role) CanOrganize() bool { return r == RoleOrganizer || r == RoleAdmin }

// ParseRole accepts exactly one of the defined role names.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf(`invalid role %q: must be "user"|"organizer"|"admin"`, s)
	}
	return r, nil
}

// Status is a user's account state.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusSuspended
}

// ParseStatus accepts exactly one of the defined status names.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf(`invalid status %q: must be "active"|"suspended"`, s)
	}
	return st, nil
}
