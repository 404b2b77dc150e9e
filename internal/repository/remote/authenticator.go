package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/apiclient"
	"golang.org/x/oauth2"
)

// OAuth2 password grant against /oauth/token with HTTP Basic client credentials.
type passwordAuthenticator struct {
	api    *apiclient.Client
	config *oauth2.Config
}

func NewPasswordAuthenticator(api *apiclient.Client, clientID, clientSecret string) auth.Authenticator {
	return &passwordAuthenticator{
		api: api,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  api.BaseURL() + "/oauth/token",
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
	}
}

// Authenticate implements auth.Authenticator.
func (p *passwordAuthenticator) Authenticate(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.api.HTTPClient())

	token, err := p.config.PasswordCredentialsToken(ctx, req.Username, req.Password)
	if err != nil {
		return auth.TokenResponse{}, mapRetrieveError(err)
	}
	return fromOAuth2Token(token), nil
}

// Refresh implements auth.Authenticator.
func (p *passwordAuthenticator) Refresh(ctx context.Context, refreshToken string) (auth.TokenResponse, error) {
	if refreshToken == "" {
		return auth.TokenResponse{}, auth.ErrRefreshUnavailable
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.api.HTTPClient())

	token, err := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		err = mapRetrieveError(err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return auth.TokenResponse{}, fmt.Errorf("%w: refresh rejected", auth.ErrTokenExpired)
		}
		return auth.TokenResponse{}, err
	}

	resp := fromOAuth2Token(token)
	// servers may keep the refresh token and not echo it back
	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}
	return resp, nil
}

func fromOAuth2Token(token *oauth2.Token) auth.TokenResponse {
	resp := auth.TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
	}
	if !token.Expiry.IsZero() {
		resp.ExpiresIn = int64(time.Until(token.Expiry).Round(time.Second).Seconds())
	}
	return resp
}

func mapRetrieveError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		switch re.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return fmt.Errorf("%w: %s", auth.ErrInvalidCredentials, retrieveMessage(re))
		}
		return &apiclient.Error{StatusCode: re.Response.StatusCode, Message: retrieveMessage(re)}
	}
	return fmt.Errorf("failed to obtain token: %w", err)
}

func retrieveMessage(re *oauth2.RetrieveError) string {
	switch {
	case re.ErrorDescription != "":
		return re.ErrorDescription
	case re.ErrorCode != "":
		return re.ErrorCode
	}
	return http.StatusText(re.Response.StatusCode)
}

// JSON login at /auth/login for backends without an OAuth2 token endpoint.
type jsonAuthenticator struct {
	api *apiclient.Client
}

func NewJSONAuthenticator(api *apiclient.Client) auth.Authenticator {
	return &jsonAuthenticator{api: api}
}

// Authenticate implements auth.Authenticator.
func (j *jsonAuthenticator) Authenticate(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	var resp auth.TokenResponse
	if err := j.api.PostPublic(ctx, "/auth/login", req, &resp); err != nil {
		if apiclient.IsUnauthorized(err) || apiclient.StatusCode(err) == http.StatusBadRequest {
			return auth.TokenResponse{}, fmt.Errorf("%w: %v", auth.ErrInvalidCredentials, err)
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to login: %w", err)
	}
	if resp.AccessToken == "" {
		return auth.TokenResponse{}, fmt.Errorf("%w: login response carried no access token", auth.ErrInvalidToken)
	}
	return resp, nil
}

// Refresh implements auth.Authenticator. The JSON contract has no refresh endpoint.
func (j *jsonAuthenticator) Refresh(ctx context.Context, refreshToken string) (auth.TokenResponse, error) {
	return auth.TokenResponse{}, auth.ErrRefreshUnavailable
}
