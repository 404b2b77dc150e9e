package remote

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/apiclient"
)

type authRepository struct {
	api *apiclient.Client
}

// Register implements auth.AuthRepository.
func (a *authRepository) Register(ctx context.Context, req auth.RegisterRequest) (auth.RegisterResponse, error) {
	var resp auth.RegisterResponse
	if err := a.api.PostPublic(ctx, "/auth/register", req, &resp); err != nil {
		return auth.RegisterResponse{}, fmt.Errorf("failed to register: %w", err)
	}
	return resp, nil
}

// Logout implements auth.AuthRepository.
func (a *authRepository) Logout(ctx context.Context) error {
	if err := a.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// Me implements auth.AuthRepository.
func (a *authRepository) Me(ctx context.Context) (user.User, error) {
	var u user.User
	if err := a.api.Get(ctx, "/auth/me", nil, &u); err != nil {
		if apiclient.IsNotFound(err) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u, nil
}

// UpdateProfile implements auth.AuthRepository.
func (a *authRepository) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.User, error) {
	var u user.User
	if err := a.api.Put(ctx, "/auth/profile", req, &u); err != nil {
		return user.User{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

// ChangePassword implements auth.AuthRepository.
func (a *authRepository) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	if err := a.api.Post(ctx, "/auth/change-password", req, nil); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

func NewAuthRepository(api *apiclient.Client) auth.AuthRepository {
	return &authRepository{api: api}
}
