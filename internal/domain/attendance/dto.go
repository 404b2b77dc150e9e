package attendance

import (
	"net/url"

	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

const maxNotesLength = 500

// CheckRequest is what the UI sends for a check-in or check-out.
type CheckRequest struct {
	Notes *string `json:"notes,omitempty"`
}

func (r *CheckRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Notes != nil && len(*r.Notes) > maxNotesLength {
		errs.Add("notes", "notes must not exceed 500 characters")
	}

	return errs.Err()
}

// RecordEventRequest is the body of POST /attendance/check-in and /attendance/check-out.
type RecordEventRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Notes     *string `json:"notes,omitempty"`
}

func (r *RecordEventRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidLatitude(r.Latitude) {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if !validator.IsValidLongitude(r.Longitude) {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}
	if r.Notes != nil && len(*r.Notes) > maxNotesLength {
		errs.Add("notes", "notes must not exceed 500 characters")
	}

	return errs.Err()
}

// HistoryFilter narrows GET /attendance/history.
type HistoryFilter struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Status    string `json:"status,omitempty"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(f.StartDate)
	if f.StartDate != "" && !startOK {
		errs.Add("startDate", "startDate must be in YYYY-MM-DD format")
	}
	end, endOK := validator.IsValidDate(f.EndDate)
	if f.EndDate != "" && !endOK {
		errs.Add("endDate", "endDate must be in YYYY-MM-DD format")
	}
	if startOK && endOK && end.Before(start) {
		errs.Add("endDate", "endDate must not be before startDate")
	}
	if f.Status != "" && !RecordStatus(f.Status).IsValid() {
		errs.Add("status", "status must be one of: present, absent, late")
	}

	return errs.Err()
}

// Query encodes the non-empty fields as URL parameters.
func (f HistoryFilter) Query() url.Values {
	q := url.Values{}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	return q
}

// StatsFilter selects the month for GET /attendance/stats; empty means the current month.
type StatsFilter struct {
	Month string `json:"month,omitempty"`
}

func (f *StatsFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Month != "" {
		if _, ok := validator.IsValidMonth(f.Month); !ok {
			errs.Add("month", "month must be in YYYY-MM format")
		}
	}

	return errs.Err()
}

func (f StatsFilter) Query() url.Values {
	q := url.Values{}
	if f.Month != "" {
		q.Set("month", f.Month)
	}
	return q
}

// CheckResponse reports the outcome of a check-in/out attempt.
type CheckResponse struct {
	Authorized bool            `json:"authorized"`
	Reason     DenialReason    `json:"reason,omitempty"`
	Title      string          `json:"title,omitempty"`
	Message    string          `json:"message,omitempty"`
	Record     *Record         `json:"record,omitempty"`
	Session    SessionSnapshot `json:"session"`
}
