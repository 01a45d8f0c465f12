package account

import "errors"

var (
	ErrForbidden     = errors.New("not allowed to access this account")
	ErrNotFound      = errors.New("account not found")
	ErrNotAnEmployee = errors.New("role is not an employee kind")
)
