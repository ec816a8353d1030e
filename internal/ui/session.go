package ui

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	// SessionCookieName is the name of the console session cookie.
	SessionCookieName = "examdesk_session"
	// SessionDuration is the default console session lifetime.
	SessionDuration = 12 * time.Hour
)

// ConsoleSession ties one browser to the operator's backend session. The
// backend token itself never leaves the token store.
type ConsoleSession struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *ConsoleSession) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionManager keeps the console's browser sessions in memory. They do
// not survive a restart of `examdesk serve`.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*ConsoleSession
	now      func() time.Time
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*ConsoleSession),
		now:      time.Now,
	}
}

// CreateSession starts a browser session. It ends no later than
// tokenExp when that is set.
func (sm *SessionManager) CreateSession(tokenExp time.Time) (*ConsoleSession, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	now := sm.now()
	sess := &ConsoleSession{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionDuration),
	}
	if !tokenExp.IsZero() && tokenExp.Before(sess.ExpiresAt) {
		sess.ExpiresAt = tokenExp
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[id] = sess
	return sess, nil
}

// GetSession returns the live session with id, or nil. Expired sessions
// are dropped on sight.
func (sm *SessionManager) GetSession(id string) *ConsoleSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sess, ok := sm.sessions[id]
	if !ok {
		return nil
	}
	if sess.expired(sm.now()) {
		delete(sm.sessions, id)
		return nil
	}
	return sess
}

// DeleteSession ends the session with id.
func (sm *SessionManager) DeleteSession(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, id)
}

// GetSessionFromRequest returns the session named by the request cookie.
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *ConsoleSession {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}
	return sm.GetSession(cookie.Value)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, sess *ConsoleSession, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  sess.ExpiresAt,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "sess_" + hex.EncodeToString(b), nil
}
