package jwt

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Token types issued by the bridge
const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"
)

// Service issues and checks the short-lived tokens the local bridge hands to the UI.
// They are signed with a per-process secret and never leave the device.
type Service interface {
	GenerateAccessToken(userID string, email string, role string) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
}

const sseTokenTTL = 5 * time.Minute

type JWTService struct {
	accessTokenTTL time.Duration
	tokenAuth      *jwtauth.JWTAuth

	mu sync.Mutex
	// revoked maps a token to the time it would have expired anyway
	revoked map[string]time.Time
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration) Service {
	return &JWTService{
		accessTokenTTL: accessTokenTTL,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revoked:        make(map[string]time.Time),
	}
}

// NewRandomSecret returns a hex secret suitable for NewJWTService.
func NewRandomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) issue(claims map[string]any, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl)
	claims["exp"] = expiresAt.Unix()
	_, token, err := j.tokenAuth.Encode(claims)
	return token, expiresAt, err
}

func (j *JWTService) GenerateAccessToken(userID string, email string, role string) (string, int64, error) {
	token, expiresAt, err := j.issue(map[string]any{
		"user_id": userID,
		"email":   email,
		"role":    role,
		"type":    TokenTypeAccess,
	}, j.accessTokenTTL)
	return token, expiresAt.Unix(), err
}

// GenerateSSEToken issues the query-string token for /events/stream.
func (j *JWTService) GenerateSSEToken(userID string) (string, int, error) {
	token, _, err := j.issue(map[string]any{
		"user_id": userID,
		"type":    TokenTypeSSE,
	}, sseTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return token, int(sseTokenTTL.Seconds()), nil
}

// RevokeToken blocks a bridge token until it would have expired. Entries
// past that point are dropped on the next revocation.
func (j *JWTService) RevokeToken(token string) {
	now := time.Now()

	j.mu.Lock()
	defer j.mu.Unlock()
	for t, until := range j.revoked {
		if now.After(until) {
			delete(j.revoked, t)
		}
	}
	j.revoked[token] = now.Add(j.accessTokenTTL)
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.revoked[token]
	return ok
}

// ValidateSSEToken returns the user a valid SSE token was issued to.
func (j *JWTService) ValidateSSEToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	if typ, _ := token.Get("type"); typ != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}
	if userID, _ := token.Get("user_id"); userID != nil {
		if id, ok := userID.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", jwt.ErrInvalidJWT()
}
