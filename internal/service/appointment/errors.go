package appointment

import "errors"

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrUnknownKind       = errors.New("unknown appointment kind")
	ErrUnknownStatus     = errors.New("unknown appointment status")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrNotClaimable      = errors.New("appointment cannot be claimed")
	ErrNotClaimedByActor = errors.New("appointment is not claimed by this employee")
	ErrForbidden         = errors.New("role may not perform this action on appointments")
	ErrUnsupportedList   = errors.New("list is not available for this role")
	ErrInFlight          = errors.New("mutation already in progress")
)
