package attendance

import (
	"context"
	"time"
)

// Validator decides whether the user may check in/out from where they are.
type Validator interface {
	Validate(ctx context.Context) ValidationResult
}

// AttendanceService defines the client-side attendance workflow
type AttendanceService interface {
	// CheckIn validates location and records a check-in
	CheckIn(ctx context.Context, req CheckRequest) (CheckResponse, error)

	// CheckOut validates location and records a check-out
	CheckOut(ctx context.Context, req CheckRequest) (CheckResponse, error)

	// Session returns today's client-side session
	Session() SessionSnapshot

	// Resume seeds today's session from the server record
	Resume(ctx context.Context) (SessionSnapshot, error)

	// Rollover starts a new session when now is on a later day
	Rollover(now time.Time) bool

	Today(ctx context.Context) (Record, error)
	History(ctx context.Context, filter HistoryFilter) ([]Record, error)
	Stats(ctx context.Context, filter StatsFilter) (Stats, error)
	GetByID(ctx context.Context, id string) (Record, error)
}

// SessionObserver is told about every change to the client-side session.
type SessionObserver func(SessionSnapshot)
