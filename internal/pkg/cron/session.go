package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
)

type SessionJobs struct {
	attendanceService attendance.AttendanceService
	authService       auth.AuthService
	now               func() time.Time
}

func NewSessionJobs(attendanceService attendance.AttendanceService, authService auth.AuthService) *SessionJobs {
	return &SessionJobs{
		attendanceService: attendanceService,
		authService:       authService,
		now:               time.Now,
	}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("attendance_session_rollover", time.Minute, j.RolloverSession)
	scheduler.AddJob("attendance_session_sync", 15*time.Minute, j.SyncSession)
	scheduler.AddJob("access_token_refresh", 5*time.Minute, j.KeepTokenFresh)
}

// RolloverSession starts a fresh session once the calendar day changes and
// picks up anything the server already has for the new day.
func (j *SessionJobs) RolloverSession(ctx context.Context) error {
	if !j.attendanceService.Rollover(j.now()) {
		return nil
	}
	return j.SyncSession(ctx)
}

// SyncSession reconciles the local session with the server's record for today,
// e.g. after a check-in from another device.
func (j *SessionJobs) SyncSession(ctx context.Context) error {
	if _, err := j.authService.Current(); err != nil {
		return nil
	}

	snapshot, err := j.attendanceService.Resume(ctx)
	if err != nil {
		return fmt.Errorf("failed to sync attendance session: %w", err)
	}
	slog.Debug("Cron: attendance session synced", "day", snapshot.Day, "status", snapshot.Status)
	return nil
}

// KeepTokenFresh asks for a token so it is refreshed ahead of expiry rather
// than on the next user action.
func (j *SessionJobs) KeepTokenFresh(ctx context.Context) error {
	if _, err := j.authService.Current(); err != nil {
		return nil
	}

	_, err := j.authService.TokenSource().Token()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrRefreshUnavailable):
		slog.Warn("Cron: access token expired, sign in again", "error", err)
		return nil
	}
	return fmt.Errorf("failed to refresh access token: %w", err)
}
