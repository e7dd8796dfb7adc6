package auth

import (
	"errors"
	"strings"
)

// Role is the single, immutable role of an account.
type Role string

const (
	RolePatient       Role = "patient"
	RoleDoctor        Role = "doctor"
	RoleAdministrator Role = "administrator"
)

var ErrInvalidRole = errors.New("role must be patient, doctor or administrator")

// Roles lists every role in menu order.
func Roles() []Role {
	return []Role{RolePatient, RoleDoctor, RoleAdministrator}
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdministrator:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts a role name in any case, plus "admin" as a short form.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if r == "admin" {
		r = RoleAdministrator
	}
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}
