package attendance

import (
	"fmt"
	"time"
)

// RecordStatus is the server-side classification of a working day.
type RecordStatus string

const (
	RecordStatusPresent RecordStatus = "present"
	RecordStatusAbsent  RecordStatus = "absent"
	RecordStatusLate    RecordStatus = "late"
)

func (s RecordStatus) IsValid() bool {
	switch s {
	case RecordStatusPresent, RecordStatusAbsent, RecordStatusLate:
		return true
	}
	return false
}

type RecordLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address,omitempty"`
}

// Record is an attendance record as persisted by the remote API.
type Record struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	Date         string         `json:"date"`
	CheckInTime  *time.Time     `json:"checkInTime"`
	CheckOutTime *time.Time     `json:"checkOutTime"`
	Status       RecordStatus   `json:"status"`
	Location     RecordLocation `json:"location"`
	Notes        *string        `json:"notes,omitempty"`
}

// WorkDuration is zero until both check-in and check-out are known.
func (r Record) WorkDuration() time.Duration {
	if r.CheckInTime == nil || r.CheckOutTime == nil {
		return 0
	}
	d := r.CheckOutTime.Sub(*r.CheckInTime)
	if d < 0 {
		return 0
	}
	return d
}

// FormatWorkDuration renders the record duration as "Xh Ym", or "-" while open.
func (r Record) FormatWorkDuration() string {
	if r.CheckInTime == nil || r.CheckOutTime == nil {
		return "-"
	}
	return FormatDuration(r.WorkDuration())
}

func FormatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// Stats summarises attendance over a period.
type Stats struct {
	Present    int     `json:"present"`
	Absent     int     `json:"absent"`
	Late       int     `json:"late"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Summarize computes Stats from records. Late days count as attended.
func Summarize(records []Record) Stats {
	var s Stats
	for _, r := range records {
		switch r.Status {
		case RecordStatusPresent:
			s.Present++
		case RecordStatusAbsent:
			s.Absent++
		case RecordStatusLate:
			s.Late++
		default:
			continue
		}
		s.Total++
	}
	if s.Total > 0 {
		s.Percentage = float64(s.Present+s.Late) / float64(s.Total) * 100
	}
	return s
}

// WorkingHours is the office day used for client-side lateness checks.
type WorkingHours struct {
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// IsLate reports whether checkIn happened after the working-day start on its own day.
func (w WorkingHours) IsLate(checkIn time.Time) bool {
	start, err := time.Parse("15:04", w.Start)
	if err != nil {
		return false
	}
	scheduled := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(),
		start.Hour(), start.Minute(), 0, 0, checkIn.Location())
	return checkIn.After(scheduled)
}
