package auth

import (
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
)

// Token store keys
const (
	KeyUser         = "user"
	KeyAuthToken    = "authToken"
	KeyRefreshToken = "refreshToken"
	KeyTokenExpiry  = "authTokenExpiresAt"
)

// Session is the signed-in user's credentials and identity. It is created at
// login or restore and discarded at logout.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time // zero when the server did not say
	User         user.User
}

// IsExpired treats tokens within leeway of expiry as already expired.
func (s *Session) IsExpired(now time.Time, leeway time.Duration) bool {
	if s == nil || s.AccessToken == "" {
		return true
	}
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(s.ExpiresAt)
}

func (s *Session) CanRefresh() bool {
	return s != nil && s.RefreshToken != ""
}
