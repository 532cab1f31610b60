package user

import "errors"

var (
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrEmployeeProfileRequired = errors.New("an employee profile is required for this action")
	ErrInvalidRole             = errors.New("invalid role")
)
