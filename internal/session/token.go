package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/me/examdesk/pkg/model"
)

// errNoExpiry is returned by ExpiryOf when the token carries no exp claim.
var errNoExpiry = errors.New("token has no exp claim")

// ExpiryOf decodes the exp claim of a JWT without verifying its signature.
// The client never holds the signing key; the backend verifies tokens, the
// client only needs to know when to stop presenting one.
func ExpiryOf(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errNoExpiry
	}
	return exp.Time, nil
}

// EvaluateToken classifies token at instant now. It never fails: an empty
// token is Unauthenticated, and anything undecodable or lacking an expiry
// is Expired.
func EvaluateToken(token string, now time.Time) model.Session {
	if token == "" {
		return model.Session{Status: model.SessionUnauthenticated}
	}
	exp, err := ExpiryOf(token)
	if err != nil {
		return model.Session{Token: token, Status: model.SessionExpired}
	}
	if !now.Before(exp) {
		return model.Session{Token: token, ExpiresAt: exp, Status: model.SessionExpired}
	}
	return model.Session{Token: token, ExpiresAt: exp, Status: model.SessionValid}
}
