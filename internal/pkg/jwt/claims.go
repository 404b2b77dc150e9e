package jwt

import (
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// RemoteClaims is the identity carried in a backend access token.
type RemoteClaims struct {
	Subject   string
	Email     string
	Name      string
	Role      string
	ExpiresAt time.Time
}

// ParseUnverified reads claims from a backend token without checking its
// signature. The client cannot verify it and only uses the claims for display
// and expiry bookkeeping; the backend still authorizes every request.
func ParseUnverified(tokenString string) (RemoteClaims, error) {
	token, err := jwt.ParseString(tokenString, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return RemoteClaims{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	claims := RemoteClaims{
		Subject:   token.Subject(),
		ExpiresAt: token.Expiration(),
		Email:     stringClaim(token, "email"),
		Name:      stringClaim(token, "name"),
		Role:      stringClaim(token, "role"),
	}

	// Spring-style OAuth2 servers put the login in user_name and roles in authorities
	if claims.Subject == "" {
		claims.Subject = stringClaim(token, "user_name")
	}
	if claims.Subject == "" {
		claims.Subject = stringClaim(token, "user_id")
	}
	if claims.Role == "" {
		claims.Role = roleFromAuthorities(token)
	}

	return claims, nil
}

func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func roleFromAuthorities(token jwt.Token) string {
	v, ok := token.Get("authorities")
	if !ok {
		return ""
	}
	list, ok := v.([]interface{})
	if !ok {
		return ""
	}
	role := ""
	for _, item := range list {
		s, _ := item.(string)
		s = strings.ToLower(strings.TrimPrefix(strings.ToUpper(s), "ROLE_"))
		if s == "admin" {
			return s
		}
		if s == "employee" || s == "user" {
			role = "employee"
		}
	}
	return role
}
