package geo

import "errors"

// Geo domain errors
var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrInvalidRadius       = errors.New("geofence radius must be positive")
)
