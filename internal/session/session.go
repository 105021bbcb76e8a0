// Package session reads the claims of the backend-issued session token. The
// client holds no signing secret, verification is the server's job; the
// claims are only used to know who the current user is.
package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Parse extracts the claims without verifying the signature.
func Parse(token string) (Claims, error) {
	var claims Claims

	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(token, &claims)
	if err != nil {
		return Claims{}, errors.Wrap(err, "parsing session token")
	}

	if claims.UserID == "" {
		return Claims{}, errors.New("session token carries no user ID")
	}
	return claims, nil
}
