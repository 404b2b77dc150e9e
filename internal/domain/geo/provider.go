package geo

import (
	"context"
	"time"
)

// Default fix acquisition bounds.
const (
	DefaultFixTimeout = 15 * time.Second
	DefaultFixMaxAge  = 10 * time.Second
)

// Provider wraps the device location service.
type Provider interface {
	// RequestPermission asks for location access. The first call in a
	// process lifetime may prompt the user.
	RequestPermission(ctx context.Context) bool

	// GetFix returns a fix no older than maxAge, waiting at most timeout.
	// Failures wrap ErrPermissionDenied or ErrLocationUnavailable.
	GetFix(ctx context.Context, timeout, maxAge time.Duration) (LocationFix, error)
}

// PermissionResetter is implemented by providers that cache the permission
// answer. After ResetPermission the next RequestPermission prompts again.
type PermissionResetter interface {
	ResetPermission()
}
