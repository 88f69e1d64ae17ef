package profile

import "errors"

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrEmailTaken      = errors.New("email already used by another profile")
)
