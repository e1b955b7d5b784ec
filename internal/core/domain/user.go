package domain

import (
	"errors"
	"time"
)

// Role is the closed set of actor roles in the credit registry.
type Role string

const (
	RoleProducer   Role = "producer"
	RoleBuyer      Role = "buyer"
	RoleAuditor    Role = "auditor"
	RoleRegulatory Role = "regulatory"
	RoleVerifier   Role = "verifier"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a stored role string into a Role, rejecting anything
// outside the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleProducer, RoleBuyer, RoleAuditor, RoleRegulatory, RoleVerifier:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User models an authenticated actor in the system. Roles are assigned at
// registration and are read-only from the credit workflows' perspective.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
