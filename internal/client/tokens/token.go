// Package tokens reads the claims of the API's session tokens. The client
// never holds the signing key, so nothing here verifies a signature; the
// server remains the authority on whether a token is valid.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("token is not a JWT")

// Claims are the registered claims plus the user id some API builds add.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
}

// Inspect decodes the claims of token without checking its signature.
func Inspect(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrNotJWT, err)
	}
	return claims, nil
}

// ExpiresAt returns the exp claim, or the zero time when the token has none
// or is not a JWT.
func ExpiresAt(token string) time.Time {
	claims, err := Inspect(token)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Expired reports whether token carries an exp claim at or before now.
// Opaque tokens never expire here.
func Expired(token string, now time.Time) bool {
	exp := ExpiresAt(token)
	return !exp.IsZero() && !now.Before(exp)
}
