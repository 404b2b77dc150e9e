package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
)

// ValidatorImpl authorizes attendance actions by checking the device
// location against the office geofence. It keeps no state between calls.
type ValidatorImpl struct {
	provider geo.Provider
	fence    *geo.OfficeGeofence
	timeout  time.Duration
	maxAge   time.Duration
}

func NewValidator(provider geo.Provider, fence *geo.OfficeGeofence, timeout, maxAge time.Duration) attendance.Validator {
	if timeout <= 0 {
		timeout = geo.DefaultFixTimeout
	}
	if maxAge < 0 {
		maxAge = geo.DefaultFixMaxAge
	}
	return &ValidatorImpl{
		provider: provider,
		fence:    fence,
		timeout:  timeout,
		maxAge:   maxAge,
	}
}

// Validate implements attendance.Validator.
func (v *ValidatorImpl) Validate(ctx context.Context) attendance.ValidationResult {
	if !v.provider.RequestPermission(ctx) {
		slog.Warn("Attendance denied: location permission not granted")
		return attendance.Denied{Reason: attendance.ReasonPermissionDenied, Cause: geo.ErrPermissionDenied}
	}

	fix, err := v.provider.GetFix(ctx, v.timeout, v.maxAge)
	if err != nil {
		slog.Warn("Attendance denied: no location fix", "error", err)
		return attendance.Denied{Reason: attendance.ReasonLocationUnavailable, Cause: err}
	}

	distance := v.fence.Distance(fix.Coordinate)
	if !v.fence.Contains(fix.Coordinate) {
		slog.Info("Attendance denied: outside office geofence",
			"location", fix.Coordinate.String(),
			"distance_m", distance,
			"radius_m", v.fence.RadiusMeters())
		return attendance.Denied{Reason: attendance.ReasonOutsideGeofence, DistanceMeters: &distance}
	}

	slog.Debug("Attendance location authorized", "location", fix.Coordinate.String(), "distance_m", distance, "source", fix.Source)
	return attendance.Authorized{Fix: fix}
}
