package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var nowFunc = time.Now // mockable

// tokenExpired decodes the token's embedded expiry claim without verifying
// the signature (the server owns verification; the client only needs to know
// whether a round-trip is worth making). A token that cannot be decoded, or
// that carries no expiry claim, is treated as expired.
func tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Before(nowFunc())
}
