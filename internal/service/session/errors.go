package session

import "errors"

var (
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrNoVisitor          = errors.New("visitor id is missing")
)
