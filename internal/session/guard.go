// Package session owns the bearer token lifecycle: storage, expiry
// evaluation and the redirect decisions protected views depend on.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/me/examdesk/internal/tokenstore"
	"github.com/me/examdesk/pkg/model"
)

// ErrNotAuthenticated is returned by Token and Require when no valid
// session exists.
var ErrNotAuthenticated = errors.New("not authenticated: run examdesk login")

// Location names a view. Login and Register are the public surfaces; every
// other location is protected.
type Location string

const (
	LocationLogin    Location = "login"
	LocationRegister Location = "register"
	LocationHome     Location = "home"
)

// IsPublic reports whether loc is reachable without a session.
func (l Location) IsPublic() bool {
	return l == LocationLogin || l == LocationRegister
}

// Navigator performs the navigation side effect of a guard decision.
type Navigator interface {
	Navigate(ctx context.Context, to Location)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, to Location)

// Navigate calls f(ctx, to).
func (f NavigatorFunc) Navigate(ctx context.Context, to Location) { f(ctx, to) }

type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, Location) {}

// MountResult is the outcome of OnMount.
type MountResult struct {
	Status   model.SessionStatus
	Redirect Location // empty when the view may render
}

// Guard is the single owner of the persisted token. It is safe for
// concurrent use.
type Guard struct {
	mu            sync.Mutex
	store         tokenstore.Store
	nav           Navigator
	now           func() time.Time
	logger        *slog.Logger
	authenticated bool
}

// Option configures a Guard.
type Option func(*Guard)

// WithClock replaces time.Now (for tests).
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithNavigator sets the navigation side effect. Without one the guard
// only reports redirect decisions.
func WithNavigator(nav Navigator) Option {
	return func(g *Guard) { g.nav = nav }
}

// NewGuard creates a Guard over store.
func NewGuard(store tokenstore.Store, logger *slog.Logger, opts ...Option) *Guard {
	g := &Guard{
		store:  store,
		nav:    nopNavigator{},
		now:    time.Now,
		logger: logger.With("component", "session"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate classifies the persisted token. A store read failure counts as
// no token. Evaluate has no side effects.
func (g *Guard) Evaluate(ctx context.Context) model.SessionStatus {
	return g.Session(ctx).Status
}

// Session returns the evaluated session snapshot.
func (g *Guard) Session(ctx context.Context) model.Session {
	tok, err := g.store.Get(ctx)
	if err != nil {
		g.logger.Warn("read token failed", "error", err)
		return model.Session{Status: model.SessionUnauthenticated}
	}
	return EvaluateToken(tok, g.now())
}

// Authenticated reports the guard's current authenticated flag, as last
// set by OnMount, Login, Logout or Invalidate.
func (g *Guard) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated
}

// OnMount runs when a view at loc initializes. An invalid session is torn
// down, and a redirect to login is issued unless loc is already public.
func (g *Guard) OnMount(ctx context.Context, loc Location) MountResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	status := g.Evaluate(ctx)
	if status == model.SessionValid {
		g.authenticated = true
		return MountResult{Status: status}
	}

	g.teardownLocked(ctx, status)
	res := MountResult{Status: status}
	if !loc.IsPublic() {
		res.Redirect = LocationLogin
		g.nav.Navigate(ctx, LocationLogin)
	}
	return res
}

// Login persists token, marks the session authenticated and navigates to
// the default protected surface.
func (g *Guard) Login(ctx context.Context, token string) error {
	if token == "" {
		return model.NewValidationError("login", "backend returned an empty token")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Set(ctx, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	g.authenticated = true
	g.logger.Info("logged in")
	g.nav.Navigate(ctx, LocationHome)
	return nil
}

// Logout clears the token, marks the session unauthenticated and navigates
// to login.
func (g *Guard) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.authenticated = false
	if err := g.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	g.logger.Info("logged out")
	g.nav.Navigate(ctx, LocationLogin)
	return nil
}

// Invalidate tears the session down after the backend rejected the token.
func (g *Guard) Invalidate(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.teardownLocked(ctx, model.SessionExpired)
	g.nav.Navigate(ctx, LocationLogin)
}

// Token returns the bearer token when the session is valid.
func (g *Guard) Token(ctx context.Context) (string, error) {
	sess := g.Session(ctx)
	if !sess.IsValid() {
		return "", ErrNotAuthenticated
	}
	return sess.Token, nil
}

// Require runs OnMount for a protected location and converts a redirect
// into ErrNotAuthenticated.
func (g *Guard) Require(ctx context.Context, loc Location) error {
	if res := g.OnMount(ctx, loc); res.Redirect != "" || res.Status != model.SessionValid {
		return ErrNotAuthenticated
	}
	return nil
}

// teardownLocked clears the stored token and the authenticated flag.
// g.mu must be held.
func (g *Guard) teardownLocked(ctx context.Context, status model.SessionStatus) {
	g.authenticated = false
	if err := g.store.Clear(ctx); err != nil {
		g.logger.Warn("clear token failed", "error", err)
		return
	}
	if status == model.SessionExpired {
		g.logger.Info("session expired, token cleared")
	}
}
