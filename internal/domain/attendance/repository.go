package attendance

import "context"

// AttendanceRepository is the remote API that persists attendance events.
type AttendanceRepository interface {
	CheckIn(ctx context.Context, req RecordEventRequest) (Record, error)
	CheckOut(ctx context.Context, req RecordEventRequest) (Record, error)

	// Today returns ErrNoRecordToday when nothing was recorded yet
	Today(ctx context.Context) (Record, error)

	History(ctx context.Context, filter HistoryFilter) ([]Record, error)
	Stats(ctx context.Context, filter StatsFilter) (Stats, error)

	// GetByID returns ErrAttendanceNotFound for an unknown id
	GetByID(ctx context.Context, id string) (Record, error)
}
