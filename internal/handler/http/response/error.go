package response

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var transitionErr *attendance.TransitionError
	if errors.As(err, &transitionErr) {
		Fail(w, http.StatusConflict, "INVALID_TRANSITION",
			"Cannot "+transitionErr.Action+" while session is "+string(transitionErr.From), nil, nil)
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid username or password")
	case errors.Is(err, auth.ErrNotAuthenticated):
		Unauthorized(w, "Not logged in")
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrRefreshUnavailable):
		Unauthorized(w, "Session expired, please log in again")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidTransition):
		Conflict(w, "Invalid attendance transition")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrNoRecordToday):
		NotFound(w, "No attendance recorded today")

	case errors.Is(err, context.DeadlineExceeded):
		Fail(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "The attendance server did not respond in time", nil, nil)

	// Remote API errors
	case apiclient.StatusCode(err) != 0:
		remoteError(w, err)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

// remoteError passes client errors from the API through and reports server
// errors as a bad gateway.
func remoteError(w http.ResponseWriter, err error) {
	var apiErr *apiclient.Error
	errors.As(err, &apiErr)

	if apiErr.StatusCode == http.StatusUnauthorized {
		Unauthorized(w, "Session expired, please log in again")
		return
	}
	if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		Fail(w, apiErr.StatusCode, "REMOTE_REJECTED", apiErr.Message, nil, nil)
		return
	}

	slog.Error("Attendance server error", "status", apiErr.StatusCode, "message", apiErr.Message)
	Fail(w, http.StatusBadGateway, "BAD_GATEWAY", apiErr.Message, nil, nil)
}
