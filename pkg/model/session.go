package model

import "time"

// SessionStatus is the outcome of evaluating the stored bearer token.
type SessionStatus string

const (
	SessionUnauthenticated SessionStatus = "UNAUTHENTICATED"
	SessionValid           SessionStatus = "VALID"
	SessionExpired         SessionStatus = "EXPIRED"
)

// String returns the string representation of the session status.
func (s SessionStatus) String() string {
	return string(s)
}

// Session is a snapshot of the client's authentication state.
type Session struct {
	Token     string        `json:"-"`
	ExpiresAt time.Time     `json:"expires_at,omitempty"`
	Status    SessionStatus `json:"status"`
}

// IsValid reports whether the session grants access.
func (s Session) IsValid() bool {
	return s.Status == SessionValid
}

// Credentials is the login/register request body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
