package services

import "errors"

// Sentinel errors shared by all services. Controllers map these onto HTTP
// responses; everything else is treated as an internal error.
var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("already exists")
)

// RoleChecker answers whether an actor holds a role. Satisfied by
// auth.Authenticator; kept as an interface so services stay decoupled from
// token handling.
type RoleChecker interface {
	HasRole(userID uint, roleName string) (bool, error)
}

// AdminRole is the distinguished role gating user and role management and
// the unscoped admin views.
const AdminRole = "admin"
