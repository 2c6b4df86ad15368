package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what a client can read from a bearer token without the signing key
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token has an expiry in the past
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// InspectToken decodes the claims of a JWT without verifying its signature.
// Opaque tokens yield an error; callers treat them as valid until the server says otherwise.
func InspectToken(tokenString string) (TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("failed to parse token: %w", err)
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
