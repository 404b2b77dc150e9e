package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/jwt"
	"golang.org/x/oauth2"
)

const (
	// refreshLeeway renews tokens this long before they expire
	refreshLeeway  = 30 * time.Second
	refreshTimeout = 10 * time.Second
)

type AuthServiceImpl struct {
	auth.AuthRepository
	authenticator auth.Authenticator
	store         auth.TokenStore
	now           func() time.Time

	mu      sync.Mutex
	session *auth.Session
}

func NewAuthService(authRepository auth.AuthRepository, authenticator auth.Authenticator, store auth.TokenStore) auth.AuthService {
	return &AuthServiceImpl{
		AuthRepository: authRepository,
		authenticator:  authenticator,
		store:          store,
		now:            time.Now,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (*auth.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	token, err := a.authenticator.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	session := a.sessionFromToken(token, req.Username)
	a.setSession(copySession(session))

	// The token endpoint rarely returns a profile; ask for it now that we can.
	if token.User == nil {
		profile, err := a.AuthRepository.Me(ctx)
		if apiclient.IsUnauthorized(err) {
			return nil, fmt.Errorf("%w: profile request rejected", auth.ErrInvalidToken)
		}
		if err != nil {
			slog.Warn("Failed to load profile after login, using token identity", "username", req.Username, "error", err)
		} else {
			session.User = profile
		}
	}

	if err := a.persist(session); err != nil {
		return nil, err
	}
	a.setSession(session)

	slog.Info("User logged in", "user_id", session.User.ID, "email", session.User.Email)
	return copySession(session), nil
}

func (a *AuthServiceImpl) sessionFromToken(token auth.TokenResponse, username string) *auth.Session {
	session := &auth.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if session.TokenType == "" {
		session.TokenType = "Bearer"
	}
	if token.ExpiresIn > 0 {
		session.ExpiresAt = a.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	claims, err := jwt.ParseUnverified(token.AccessToken)
	if err != nil {
		// opaque tokens are fine, they just carry no identity
		slog.Debug("Access token is not a JWT", "error", err)
	}
	if session.ExpiresAt.IsZero() && !claims.ExpiresAt.IsZero() {
		session.ExpiresAt = claims.ExpiresAt
	}

	if token.User != nil {
		session.User = *token.User
		return session
	}

	session.User = user.User{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  user.Role(claims.Role),
	}
	if session.User.ID == "" {
		session.User.ID = username
	}
	if session.User.Email == "" {
		session.User.Email = username
	}
	if session.User.Name == "" {
		session.User.Name = username
	}
	if !session.User.Role.IsValid() {
		session.User.Role = user.RoleEmployee
	}
	return session
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}

	resp, err := a.AuthRepository.Register(ctx, req)
	if err != nil {
		return user.User{}, err
	}

	// a registration that hands back a token signs the user straight in
	if resp.Token != "" {
		registered := resp.User
		session := a.sessionFromToken(auth.TokenResponse{AccessToken: resp.Token, User: &registered}, req.Email)
		if err := a.persist(session); err != nil {
			return user.User{}, err
		}
		a.setSession(session)
	}

	slog.Info("User registered", "user_id", resp.User.ID, "email", resp.User.Email)
	return resp.User, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context) error {
	if _, err := a.Current(); err == nil {
		// local state goes regardless of what the server says
		if err := a.AuthRepository.Logout(ctx); err != nil {
			slog.Warn("Remote logout failed", "error", err)
		}
	}

	a.setSession(nil)
	if err := a.store.Delete(auth.KeyUser, auth.KeyAuthToken, auth.KeyRefreshToken, auth.KeyTokenExpiry); err != nil {
		return fmt.Errorf("failed to clear stored credentials: %w", err)
	}
	slog.Info("User logged out")
	return nil
}

// Restore implements auth.AuthService.
func (a *AuthServiceImpl) Restore(ctx context.Context) (*auth.Session, error) {
	accessToken, ok, err := a.store.Get(auth.KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored credentials: %w", err)
	}
	userJSON, hasUser, err := a.store.Get(auth.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored credentials: %w", err)
	}
	if !ok || !hasUser || accessToken == "" {
		return nil, auth.ErrNotAuthenticated
	}

	session := &auth.Session{AccessToken: accessToken, TokenType: "Bearer"}
	if err := json.Unmarshal([]byte(userJSON), &session.User); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}
	if refresh, ok, _ := a.store.Get(auth.KeyRefreshToken); ok {
		session.RefreshToken = refresh
	}
	if expiry, ok, _ := a.store.Get(auth.KeyTokenExpiry); ok && expiry != "" {
		if unix, err := strconv.ParseInt(expiry, 10, 64); err == nil {
			session.ExpiresAt = time.Unix(unix, 0)
		}
	}

	a.setSession(session)
	slog.Debug("Restored stored session", "user_id", session.User.ID)
	return copySession(session), nil
}

// Current implements auth.AuthService.
func (a *AuthServiceImpl) Current() (*auth.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return nil, auth.ErrNotAuthenticated
	}
	return copySession(a.session), nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (user.User, error) {
	if _, err := a.Current(); err != nil {
		return user.User{}, err
	}
	profile, err := a.AuthRepository.Me(ctx)
	if err != nil {
		return user.User{}, err
	}
	a.updateUser(profile)
	return profile, nil
}

// UpdateProfile implements auth.AuthService.
func (a *AuthServiceImpl) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.User, error) {
	if err := req.Validate(); err != nil {
		return user.User{}, err
	}
	if _, err := a.Current(); err != nil {
		return user.User{}, err
	}
	profile, err := a.AuthRepository.UpdateProfile(ctx, req)
	if err != nil {
		return user.User{}, err
	}
	a.updateUser(profile)
	return profile, nil
}

// ChangePassword implements auth.AuthService.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if _, err := a.Current(); err != nil {
		return err
	}
	return a.AuthRepository.ChangePassword(ctx, req)
}

// Invalidate implements auth.AuthService.
func (a *AuthServiceImpl) Invalidate() {
	a.setSession(nil)
	if err := a.store.Delete(auth.KeyAuthToken, auth.KeyUser, auth.KeyTokenExpiry); err != nil {
		slog.Error("Failed to clear rejected credentials", "error", err)
		return
	}
	slog.Warn("Stored credentials cleared after the API rejected them")
}

// TokenSource implements auth.AuthService.
func (a *AuthServiceImpl) TokenSource() oauth2.TokenSource {
	return sessionTokenSource{a}
}

type sessionTokenSource struct {
	svc *AuthServiceImpl
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	return s.svc.token()
}

// token returns the current access token, refreshing it first when it is
// about to expire and a refresh token is available.
func (a *AuthServiceImpl) token() (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return nil, auth.ErrNotAuthenticated
	}

	if a.session.IsExpired(a.now(), refreshLeeway) {
		if !a.session.CanRefresh() {
			return nil, auth.ErrTokenExpired
		}

		// oauth2.TokenSource.Token takes no context, so the caller's cancellation cannot reach the refresh
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		resp, err := a.authenticator.Refresh(ctx, a.session.RefreshToken)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) || errors.Is(err, auth.ErrRefreshUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to refresh access token: %w", err)
		}

		refreshed := a.sessionFromToken(resp, a.session.User.Email)
		refreshed.User = a.session.User
		if refreshed.RefreshToken == "" {
			refreshed.RefreshToken = a.session.RefreshToken
		}
		if err := a.persist(refreshed); err != nil {
			return nil, err
		}
		a.session = refreshed
		slog.Info("Access token refreshed", "user_id", refreshed.User.ID, "expires_at", refreshed.ExpiresAt)
	}

	return &oauth2.Token{
		AccessToken: a.session.AccessToken,
		TokenType:   a.session.TokenType,
		Expiry:      a.session.ExpiresAt,
	}, nil
}

func (a *AuthServiceImpl) setSession(session *auth.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = session
}

func (a *AuthServiceImpl) updateUser(profile user.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session.User = profile
	if err := a.persist(a.session); err != nil {
		slog.Warn("Failed to store updated profile", "error", err)
	}
}

func (a *AuthServiceImpl) persist(session *auth.Session) error {
	userJSON, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	values := map[string]string{
		auth.KeyAuthToken:    session.AccessToken,
		auth.KeyUser:         string(userJSON),
		auth.KeyRefreshToken: session.RefreshToken,
		auth.KeyTokenExpiry:  "",
	}
	if !session.ExpiresAt.IsZero() {
		values[auth.KeyTokenExpiry] = strconv.FormatInt(session.ExpiresAt.Unix(), 10)
	}

	if err := a.store.Set(values); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}

func copySession(s *auth.Session) *auth.Session {
	c := *s
	return &c
}
