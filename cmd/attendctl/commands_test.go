package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	auth.AuthService
	session *auth.Session
	login   auth.LoginRequest
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
	f.login = req
	f.session = &auth.Session{AccessToken: "token", User: user.User{ID: "u-1", Name: "Jane", Role: user.RoleEmployee}}
	return f.session, nil
}

func (f *fakeAuthService) Restore(ctx context.Context) (*auth.Session, error) {
	if f.session == nil {
		return nil, auth.ErrNotAuthenticated
	}
	return f.session, nil
}

type fakeAttendanceService struct {
	attendance.AttendanceService
	checkIn attendance.CheckResponse
	history []attendance.Record
	filter  attendance.HistoryFilter
}

func (f *fakeAttendanceService) Resume(ctx context.Context) (attendance.SessionSnapshot, error) {
	return attendance.SessionSnapshot{Status: attendance.StatusNone}, nil
}

func (f *fakeAttendanceService) CheckIn(ctx context.Context, req attendance.CheckRequest) (attendance.CheckResponse, error) {
	return f.checkIn, nil
}

func (f *fakeAttendanceService) History(ctx context.Context, filter attendance.HistoryFilter) ([]attendance.Record, error) {
	f.filter = filter
	return f.history, nil
}

func newTestApp(t *testing.T, input string, authSvc *fakeAuthService, attendanceSvc *fakeAttendanceService) (*app, *bytes.Buffer) {
	t.Helper()

	fence, err := geo.NewOfficeGeofence(geo.Coordinate{Latitude: -6.2, Longitude: 106.8}, 100)
	require.NoError(t, err)

	var out bytes.Buffer
	in := strings.NewReader(input)
	a := &app{
		in:                in,
		out:               &out,
		authService:       authSvc,
		attendanceService: attendanceSvc,
		workingHours:      attendance.WorkingHours{Start: "09:00", End: "17:00"},
		geofence:          fence,
	}
	a.lines = bufio.NewReader(in)
	return a, &out
}

func TestLogin_PromptsForMissingCredentials(t *testing.T) {
	authSvc := &fakeAuthService{}
	a, out := newTestApp(t, "jane@example.com\nsecret1\n", authSvc, &fakeAttendanceService{})

	require.NoError(t, a.run(context.Background(), "login", nil))

	assert.Equal(t, "jane@example.com", authSvc.login.Username)
	assert.Equal(t, "secret1", authSvc.login.Password)
	assert.Contains(t, out.String(), "Signed in as Jane (employee)")
}

func TestCheckIn_DeniedIsReported(t *testing.T) {
	authSvc := &fakeAuthService{session: &auth.Session{AccessToken: "token"}}
	attendanceSvc := &fakeAttendanceService{checkIn: attendance.CheckResponse{
		Authorized: false,
		Reason:     attendance.ReasonOutsideGeofence,
		Title:      attendance.ReasonOutsideGeofence.Title(),
		Message:    attendance.ReasonOutsideGeofence.Message(),
	}}
	a, _ := newTestApp(t, "", authSvc, attendanceSvc)

	err := a.run(context.Background(), "check-in", nil)

	var denied *deniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, attendance.ReasonOutsideGeofence, denied.reason)
	assert.Equal(t, "Outside Office Area", denied.title)
}

func TestCheckIn_ReportsLateness(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.Local)
	authSvc := &fakeAuthService{session: &auth.Session{AccessToken: "token"}}
	attendanceSvc := &fakeAttendanceService{checkIn: attendance.CheckResponse{
		Authorized: true,
		Session:    attendance.SessionSnapshot{Status: attendance.StatusCheckedIn, CheckInTime: &at},
	}}
	a, out := newTestApp(t, "", authSvc, attendanceSvc)

	require.NoError(t, a.run(context.Background(), "check-in", nil))

	assert.Contains(t, out.String(), "Checked in at 09:30")
	assert.Contains(t, out.String(), "Late")
}

func TestHistory_PassesFilterAndPrintsRecords(t *testing.T) {
	in := time.Date(2026, 3, 2, 8, 55, 0, 0, time.Local)
	outAt := in.Add(8*time.Hour + 5*time.Minute)
	authSvc := &fakeAuthService{session: &auth.Session{AccessToken: "token"}}
	attendanceSvc := &fakeAttendanceService{history: []attendance.Record{
		{ID: "r-1", Date: "2026-03-02", Status: attendance.RecordStatusPresent, CheckInTime: &in, CheckOutTime: &outAt},
	}}
	a, out := newTestApp(t, "", authSvc, attendanceSvc)

	err := a.run(context.Background(), "history", []string{"-from", "2026-03-01", "-status", "present"})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-01", attendanceSvc.filter.StartDate)
	assert.Equal(t, "present", attendanceSvc.filter.Status)
	assert.Contains(t, out.String(), "2026-03-02")
	assert.Contains(t, out.String(), "8h 5m")
	assert.Contains(t, out.String(), "1 days: 1 present, 0 late, 0 absent (100.0% attended)")
}

func TestCommands_RequireSignIn(t *testing.T) {
	a, _ := newTestApp(t, "", &fakeAuthService{}, &fakeAttendanceService{})

	err := a.run(context.Background(), "today", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestRun_UnknownCommand(t *testing.T) {
	a, _ := newTestApp(t, "", &fakeAuthService{}, &fakeAttendanceService{})

	assert.Error(t, a.run(context.Background(), "dance", nil))
}
