package dashboard

import "errors"

var (
	ErrInvalidRange = errors.New("invalid date range")
	ErrForbidden    = errors.New("role may not view these statistics")
)
