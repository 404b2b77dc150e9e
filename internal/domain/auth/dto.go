package auth

import (
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/validator"
)

// GrantTypePassword is the OAuth2 password grant.
const GrantTypePassword = "password"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Username) {
		errs.Add("username", "username is required")
	}
	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	}

	return errs.Err()
}

type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    *string `json:"phone,omitempty"`
}

func (r *RegisterRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len(r.Name) > 255 {
		errs.Add("name", "name must not exceed 255 characters")
	}

	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "email must be a valid email address")
	}

	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	} else if len(r.Password) < 6 {
		errs.Add("password", "password must be at least 6 characters long")
	}

	if r.Phone != nil && !validator.IsValidPhoneNumber(*r.Phone) {
		errs.Add("phone", "phone must contain 8 to 15 digits")
	}

	return errs.Err()
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.OldPassword) {
		errs.Add("oldPassword", "oldPassword is required")
	}
	if validator.IsEmpty(r.NewPassword) {
		errs.Add("newPassword", "newPassword is required")
	} else if len(r.NewPassword) < 6 {
		errs.Add("newPassword", "newPassword must be at least 6 characters long")
	} else if r.NewPassword == r.OldPassword {
		errs.Add("newPassword", "newPassword must differ from oldPassword")
	}

	return errs.Err()
}

// TokenResponse is what the remote API hands back on login or refresh.
type TokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenType    string     `json:"token_type,omitempty"`
	ExpiresIn    int64      `json:"expires_in,omitempty"`
	User         *user.User `json:"user,omitempty"`
}

// RegisterResponse is the body of POST /auth/register.
type RegisterResponse struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

// LoginResponse is what the bridge returns to the UI after login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   int64     `json:"expires_at"`
	User        user.User `json:"user"`
}
