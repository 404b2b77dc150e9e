package attendance

import (
	"fmt"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/geo"
)

// DenialReason explains why a check-in/out was not authorized.
type DenialReason string

const (
	ReasonPermissionDenied    DenialReason = "PERMISSION_DENIED"
	ReasonLocationUnavailable DenialReason = "LOCATION_UNAVAILABLE"
	ReasonOutsideGeofence     DenialReason = "OUTSIDE_GEOFENCE"
)

// Message is the user-facing text for the reason.
func (r DenialReason) Message() string {
	switch r {
	case ReasonPermissionDenied:
		return "Location permission is required for attendance tracking. Please enable it in settings."
	case ReasonLocationUnavailable:
		return "Failed to get your current location. Please ensure location services are enabled."
	case ReasonOutsideGeofence:
		return "You are not within the designated office premises. Please move closer to the office location."
	}
	return "Attendance is not allowed right now."
}

// Title is the short heading shown with Message.
func (r DenialReason) Title() string {
	switch r {
	case ReasonPermissionDenied:
		return "Permission Denied"
	case ReasonLocationUnavailable:
		return "Location Error"
	case ReasonOutsideGeofence:
		return "Outside Office Area"
	}
	return "Not Allowed"
}

// ValidationResult is either Authorized or Denied.
type ValidationResult interface {
	validationResult()
	IsAuthorized() bool
}

// Authorized carries the fix that passed the geofence.
type Authorized struct {
	Fix geo.LocationFix
}

// Denied carries the reason. Cause is the underlying error for
// PermissionDenied/LocationUnavailable; DistanceMeters is set for OutsideGeofence.
type Denied struct {
	Reason         DenialReason
	Cause          error
	DistanceMeters *float64
}

func (Authorized) validationResult() {}
func (Denied) validationResult()     {}

func (Authorized) IsAuthorized() bool { return true }
func (Denied) IsAuthorized() bool     { return false }

func (d Denied) String() string {
	if d.DistanceMeters != nil {
		return fmt.Sprintf("%s (%.0fm from office)", d.Reason, *d.DistanceMeters)
	}
	return string(d.Reason)
}
