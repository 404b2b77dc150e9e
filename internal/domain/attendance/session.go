package attendance

import (
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
)

type SessionStatus string

const (
	StatusNone       SessionStatus = "NONE"
	StatusCheckedIn  SessionStatus = "CHECKED_IN"
	StatusCheckedOut SessionStatus = "CHECKED_OUT"
)

// Session tracks today's attendance on the client: NONE -> CHECKED_IN -> CHECKED_OUT.
// CHECKED_OUT is terminal; a new Session is created for the next day.
type Session struct {
	mu  sync.RWMutex
	now func() time.Time

	day              time.Time
	status           SessionStatus
	checkInTime      *time.Time
	checkInLocation  *geo.Coordinate
	checkOutTime     *time.Time
	checkOutLocation *geo.Coordinate
}

// SessionSnapshot is a read-only copy of a Session.
type SessionSnapshot struct {
	Day              string          `json:"day"`
	Status           SessionStatus   `json:"status"`
	CheckInTime      *time.Time      `json:"check_in_time,omitempty"`
	CheckInLocation  *geo.Coordinate `json:"check_in_location,omitempty"`
	CheckOutTime     *time.Time      `json:"check_out_time,omitempty"`
	CheckOutLocation *geo.Coordinate `json:"check_out_location,omitempty"`
	WorkDuration     string          `json:"work_duration,omitempty"`
}

// NewSession starts an empty session for the current day. A nil clock means time.Now.
func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		now:    now,
		day:    startOfDay(now()),
		status: StatusNone,
	}
}

// RestoreSession rebuilds today's session from the server's record so a
// restarted client does not offer a second check-in.
func RestoreSession(record Record, now func() time.Time) *Session {
	s := NewSession(now)
	if record.CheckInTime == nil || !startOfDay(record.CheckInTime.In(s.day.Location())).Equal(s.day) {
		return s
	}

	loc := geo.Coordinate{Latitude: record.Location.Latitude, Longitude: record.Location.Longitude}
	in := *record.CheckInTime
	s.status = StatusCheckedIn
	s.checkInTime = &in
	s.checkInLocation = &loc

	if record.CheckOutTime != nil {
		out := *record.CheckOutTime
		s.status = StatusCheckedOut
		s.checkOutTime = &out
	}
	return s
}

// CheckIn is legal only from NONE.
func (s *Session) CheckIn(result Authorized) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusNone {
		return &TransitionError{Action: "check in", From: s.status}
	}

	now := s.now()
	loc := result.Fix.Coordinate
	s.checkInTime = &now
	s.checkInLocation = &loc
	s.status = StatusCheckedIn
	return nil
}

// CheckOut is legal only from CHECKED_IN.
func (s *Session) CheckOut(result Authorized) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusCheckedIn {
		return &TransitionError{Action: "check out", From: s.status}
	}

	now := s.now()
	loc := result.Fix.Coordinate
	s.checkOutTime = &now
	s.checkOutLocation = &loc
	s.status = StatusCheckedOut
	return nil
}

func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Session) CanCheckIn() bool {
	return s.Status() == StatusNone
}

func (s *Session) CanCheckOut() bool {
	return s.Status() == StatusCheckedIn
}

// Day is local midnight of the day the session belongs to.
func (s *Session) Day() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.day
}

// Expired reports whether t falls on a later calendar day than the session.
func (s *Session) Expired(t time.Time) bool {
	return startOfDay(t).After(s.Day())
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := SessionSnapshot{
		Day:              s.day.Format("2006-01-02"),
		Status:           s.status,
		CheckInTime:      copyTime(s.checkInTime),
		CheckInLocation:  copyCoordinate(s.checkInLocation),
		CheckOutTime:     copyTime(s.checkOutTime),
		CheckOutLocation: copyCoordinate(s.checkOutLocation),
	}
	if s.checkInTime != nil && s.checkOutTime != nil {
		snap.WorkDuration = FormatDuration(s.checkOutTime.Sub(*s.checkInTime))
	}
	return snap
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyCoordinate(c *geo.Coordinate) *geo.Coordinate {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}
