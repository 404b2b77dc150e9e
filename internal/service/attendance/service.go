package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/attendance"
)

type action string

const (
	actionCheckIn  action = "check in"
	actionCheckOut action = "check out"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	validator attendance.Validator
	observers []attendance.SessionObserver
	now       func() time.Time

	// flow serializes check flows so one location check maps to one transition.
	// mu guards session only and is never held across location or API calls.
	flow    sync.Mutex
	mu      sync.Mutex
	session *attendance.Session
}

func NewAttendanceService(repo attendance.AttendanceRepository, validator attendance.Validator, observers ...attendance.SessionObserver) attendance.AttendanceService {
	return newAttendanceService(repo, validator, time.Now, observers...)
}

func newAttendanceService(repo attendance.AttendanceRepository, validator attendance.Validator, now func() time.Time, observers ...attendance.SessionObserver) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		AttendanceRepository: repo,
		validator:            validator,
		observers:            observers,
		now:                  now,
		session:              attendance.NewSession(now),
	}
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckRequest) (attendance.CheckResponse, error) {
	return a.check(ctx, actionCheckIn, req)
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckRequest) (attendance.CheckResponse, error) {
	return a.check(ctx, actionCheckOut, req)
}

func (a *AttendanceServiceImpl) check(ctx context.Context, act action, req attendance.CheckRequest) (attendance.CheckResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.CheckResponse{}, err
	}

	a.flow.Lock()
	defer a.flow.Unlock()

	a.mu.Lock()
	a.rolloverLocked(a.now())
	allowed := a.session.CanCheckIn()
	if act == actionCheckOut {
		allowed = a.session.CanCheckOut()
	}
	from := a.session.Status()
	a.mu.Unlock()

	if !allowed {
		return attendance.CheckResponse{}, &attendance.TransitionError{Action: string(act), From: from}
	}

	result := a.validator.Validate(ctx)
	authorized, ok := result.(attendance.Authorized)
	if !ok {
		denied := result.(attendance.Denied)
		slog.Info("Attendance action denied", "action", act, "reason", denied.Reason)
		return attendance.CheckResponse{
			Authorized: false,
			Reason:     denied.Reason,
			Title:      denied.Reason.Title(),
			Message:    denied.Reason.Message(),
			Session:    a.Session(),
		}, nil
	}

	event := attendance.RecordEventRequest{
		Latitude:  authorized.Fix.Latitude,
		Longitude: authorized.Fix.Longitude,
		Notes:     req.Notes,
	}
	if err := event.Validate(); err != nil {
		return attendance.CheckResponse{}, fmt.Errorf("invalid location fix: %w", err)
	}

	var (
		record attendance.Record
		err    error
	)
	if act == actionCheckIn {
		record, err = a.AttendanceRepository.CheckIn(ctx, event)
	} else {
		record, err = a.AttendanceRepository.CheckOut(ctx, event)
	}
	if err != nil {
		return attendance.CheckResponse{}, err
	}

	a.mu.Lock()
	snapshot, err := a.applyLocked(act, authorized)
	a.mu.Unlock()
	if err != nil {
		return attendance.CheckResponse{}, fmt.Errorf("failed to update session after %s: %w", act, err)
	}

	slog.Info("Attendance recorded", "action", act, "record_id", record.ID, "status", snapshot.Status)
	a.notify(snapshot)

	return attendance.CheckResponse{
		Authorized: true,
		Record:     &record,
		Session:    snapshot,
	}, nil
}

// applyLocked records a persisted action on the current session. A Resume that
// ran meanwhile may already show the server state; that counts as applied.
func (a *AttendanceServiceImpl) applyLocked(act action, authorized attendance.Authorized) (attendance.SessionSnapshot, error) {
	var err error
	if act == actionCheckIn {
		err = a.session.CheckIn(authorized)
	} else {
		err = a.session.CheckOut(authorized)
	}

	target := attendance.StatusCheckedIn
	if act == actionCheckOut {
		target = attendance.StatusCheckedOut
	}
	if err != nil && a.session.Status() != target {
		return attendance.SessionSnapshot{}, err
	}
	return a.session.Snapshot(), nil
}

// Session implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Session() attendance.SessionSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.Snapshot()
}

// Resume implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Resume(ctx context.Context) (attendance.SessionSnapshot, error) {
	record, err := a.AttendanceRepository.Today(ctx)
	if err != nil && !errors.Is(err, attendance.ErrNoRecordToday) {
		return attendance.SessionSnapshot{}, fmt.Errorf("failed to resume session: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	restored := attendance.NewSession(a.now)
	if err == nil {
		restored = attendance.RestoreSession(record, a.now)
	}

	// a local transition is never rolled back by a stale server view
	if rank(restored.Status()) < rank(a.session.Status()) && !a.session.Expired(a.now()) {
		return a.session.Snapshot(), nil
	}

	changed := restored.Status() != a.session.Status()
	a.session = restored
	snapshot := restored.Snapshot()
	if changed {
		slog.Info("Attendance session resumed", "status", snapshot.Status)
		a.notify(snapshot)
	}
	return snapshot, nil
}

// Rollover implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Rollover(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rolloverLocked(now)
}

func (a *AttendanceServiceImpl) rolloverLocked(now time.Time) bool {
	if !a.session.Expired(now) {
		return false
	}

	previous := a.session.Snapshot()
	a.session = attendance.NewSession(a.now)
	snapshot := a.session.Snapshot()

	slog.Info("Attendance session rolled over", "previous_day", previous.Day, "previous_status", previous.Status, "day", snapshot.Day)
	a.notify(snapshot)
	return true
}

// History implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) History(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return a.AttendanceRepository.History(ctx, filter)
}

// Stats implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Stats(ctx context.Context, filter attendance.StatsFilter) (attendance.Stats, error) {
	if err := filter.Validate(); err != nil {
		return attendance.Stats{}, err
	}
	if filter.Month == "" {
		filter.Month = a.now().Format("2006-01")
	}
	return a.AttendanceRepository.Stats(ctx, filter)
}

func (a *AttendanceServiceImpl) notify(snapshot attendance.SessionSnapshot) {
	for _, observe := range a.observers {
		observe(snapshot)
	}
}

func rank(s attendance.SessionStatus) int {
	switch s {
	case attendance.StatusCheckedIn:
		return 1
	case attendance.StatusCheckedOut:
		return 2
	}
	return 0
}
