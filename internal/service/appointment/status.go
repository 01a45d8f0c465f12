package appointment

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an appointment. The order of the
// non-terminal states is the only direction progress may take.
type Status uint8

const (
	StatusPending Status = iota + 1
	StatusInProgress
	StatusCompleted
	StatusDeleted
)

var AllStatuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusDeleted}

// String returns the backend wire name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusDeleted:
		return "Deleted"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusDeleted:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusDeleted
}

// ParseStatus accepts every spelling the backend and older clients use.
func ParseStatus(raw string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(norm)
	switch norm {
	case "pending":
		return StatusPending, nil
	case "inprogress":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	case "deleted", "cancelled", "canceled":
		return StatusDeleted, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// transitions is the one transition table every caller consults.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress, StatusDeleted},
	StatusInProgress: {StatusCompleted, StatusDeleted},
	StatusCompleted:  nil,
	StatusDeleted:    nil,
}

// NextStatuses lists the states reachable from s in one step.
func NextStatuses(s Status) []Status {
	return append([]Status(nil), transitions[s]...)
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
