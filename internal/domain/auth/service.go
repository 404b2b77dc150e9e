package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
	"golang.org/x/oauth2"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Register(ctx context.Context, req RegisterRequest) (user.User, error)
	Logout(ctx context.Context) error

	// Restore loads a stored session at startup; ErrNotAuthenticated if none.
	Restore(ctx context.Context) (*Session, error)
	Current() (*Session, error)

	Me(ctx context.Context) (user.User, error)
	UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.User, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error

	// TokenSource feeds the current access token to outgoing API requests.
	TokenSource() oauth2.TokenSource

	// Invalidate drops the stored credentials after the API rejected them.
	Invalidate()
}

// Authenticator exchanges credentials for tokens. There is one per backend contract.
type Authenticator interface {
	Authenticate(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenResponse, error)
}

// TokenStore is the local credential storage.
type TokenStore interface {
	Get(key string) (string, bool, error)
	Set(values map[string]string) error
	Delete(keys ...string) error
}
