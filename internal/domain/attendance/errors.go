package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	// ErrInvalidTransition means the caller asked for a check-in/out the
	// session does not allow in its current state. It is a caller bug,
	// not a user-facing denial.
	ErrInvalidTransition = errors.New("invalid attendance transition")

	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrNoRecordToday      = errors.New("no attendance record for today")
)

// TransitionError carries the rejected action and the state it was tried from.
type TransitionError struct {
	Action string
	From   SessionStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %s", ErrInvalidTransition, e.Action, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}
