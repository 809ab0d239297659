package services

import (
	"errors"

	"fixit-api/models"
)

// Session carries the authenticated identity explicitly into every
// operation that needs it, instead of reading ambient auth state.
type Session struct {
	UID   string
	Email string
	Role  string
}

func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}

var (
	ErrNotFound             = errors.New("not found")
	ErrForbidden            = errors.New("forbidden")
	ErrBadStatus            = errors.New("invalid status")
	ErrTransitionNotAllowed = errors.New("transition not allowed")
)
