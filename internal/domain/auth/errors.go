package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrNotAuthenticated    = errors.New("not logged in")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshUnavailable  = errors.New("no refresh token available")
	ErrUnsupportedAuthMode = errors.New("unsupported auth mode")
)
