package user

import "errors"

var (
	ErrActorMissing            = errors.New("authenticated actor is missing from context")
	ErrCompanyIDRequired       = errors.New("company ID is required")
	ErrEmployeeIDRequired      = errors.New("employee ID is required")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
