package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
)

// AuthRepository is the remote account API.
type AuthRepository interface {
	Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (user.User, error)
	UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.User, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
}
