package admin

import "errors"

var (
	ErrInvalidRole   = errors.New("invalid role")
	ErrNotPartner    = errors.New("profile is not a partner")
	ErrSystemAccount = errors.New("system accounts cannot be managed")
	ErrInvalidStatus = errors.New("invalid status")
)
