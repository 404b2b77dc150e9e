package attendance

import (
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var office = geo.Coordinate{Latitude: 40.7128, Longitude: -74.006}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func authorizedAt(c geo.Coordinate, at time.Time) Authorized {
	return Authorized{Fix: geo.LocationFix{Coordinate: c, SampledAt: at}}
}

func TestSession_CheckInThenCheckOut(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 55, 0, 0, time.UTC)
	s := NewSession(fixedClock(now))
	require.Equal(t, StatusNone, s.Status())
	assert.True(t, s.CanCheckIn())
	assert.False(t, s.CanCheckOut())

	require.NoError(t, s.CheckIn(authorizedAt(office, now)))
	snap := s.Snapshot()
	assert.Equal(t, StatusCheckedIn, snap.Status)
	require.NotNil(t, snap.CheckInTime)
	assert.Equal(t, now, *snap.CheckInTime)
	require.NotNil(t, snap.CheckInLocation)
	assert.Equal(t, office, *snap.CheckInLocation)
	assert.Equal(t, "2026-03-02", snap.Day)

	require.NoError(t, s.CheckOut(authorizedAt(office, now)))
	assert.Equal(t, StatusCheckedOut, s.Status())
	assert.False(t, s.CanCheckIn())
	assert.False(t, s.CanCheckOut())
}

func TestSession_DoubleCheckInIsInvalidTransition(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := NewSession(fixedClock(now))
	require.NoError(t, s.CheckIn(authorizedAt(office, now)))

	err := s.CheckIn(authorizedAt(office, now))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StatusCheckedIn, te.From)
	assert.Equal(t, StatusCheckedIn, s.Status())
}

func TestSession_CheckOutWithoutCheckIn(t *testing.T) {
	s := NewSession(nil)
	err := s.CheckOut(authorizedAt(office, time.Now()))
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StatusNone, s.Status())
	assert.Nil(t, s.Snapshot().CheckOutTime)
}

func TestSession_CheckedOutIsTerminal(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := NewSession(fixedClock(now))
	require.NoError(t, s.CheckIn(authorizedAt(office, now)))
	require.NoError(t, s.CheckOut(authorizedAt(office, now)))

	assert.ErrorIs(t, s.CheckIn(authorizedAt(office, now)), ErrInvalidTransition)
	assert.ErrorIs(t, s.CheckOut(authorizedAt(office, now)), ErrInvalidTransition)
	assert.Equal(t, StatusCheckedOut, s.Status())
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := NewSession(fixedClock(now))
	require.NoError(t, s.CheckIn(authorizedAt(office, now)))

	snap := s.Snapshot()
	snap.CheckInLocation.Latitude = 0
	assert.Equal(t, office, *s.Snapshot().CheckInLocation)
}

func TestSession_WorkDuration(t *testing.T) {
	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := NewSession(func() time.Time { return clock })
	require.NoError(t, s.CheckIn(authorizedAt(office, clock)))
	clock = clock.Add(8*time.Hour + 15*time.Minute)
	require.NoError(t, s.CheckOut(authorizedAt(office, clock)))

	assert.Equal(t, "8h 15m", s.Snapshot().WorkDuration)
}

func TestSession_Expired(t *testing.T) {
	now := time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)
	s := NewSession(fixedClock(now))
	assert.False(t, s.Expired(now))
	assert.False(t, s.Expired(now.Add(30*time.Second)))
	assert.True(t, s.Expired(now.Add(2*time.Minute)))
}

func TestRestoreSession(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	in := now.Add(-3 * time.Hour)
	out := now.Add(-time.Hour)

	open := RestoreSession(Record{
		CheckInTime: &in,
		Location:    RecordLocation{Latitude: office.Latitude, Longitude: office.Longitude},
	}, fixedClock(now))
	assert.Equal(t, StatusCheckedIn, open.Status())
	assert.Equal(t, office, *open.Snapshot().CheckInLocation)

	closed := RestoreSession(Record{CheckInTime: &in, CheckOutTime: &out}, fixedClock(now))
	assert.Equal(t, StatusCheckedOut, closed.Status())

	empty := RestoreSession(Record{}, fixedClock(now))
	assert.Equal(t, StatusNone, empty.Status())
}

func TestRestoreSession_IgnoresOtherDays(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	yesterday := now.Add(-20 * time.Hour)

	s := RestoreSession(Record{CheckInTime: &yesterday}, fixedClock(now))
	assert.Equal(t, StatusNone, s.Status())
	assert.True(t, s.CanCheckIn())
}
