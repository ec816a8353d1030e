package ui

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/examdesk/internal/session"
)

// loggingMiddleware logs each console request (method, path, status, duration).
func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// sameOriginOnly rejects state-changing requests sent by another site.
// Browsers that report Sec-Fetch-Site are trusted on it; otherwise the
// Origin header, when present, must name this host.
func sameOriginOnly(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if crossSite(r) {
				logger.Warn("cross-site request rejected",
					"method", r.Method,
					"path", r.URL.Path,
					"origin", r.Header.Get("Origin"),
					"request_id", middleware.GetReqID(r.Context()),
				)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func crossSite(r *http.Request) bool {
	switch r.Header.Get("Sec-Fetch-Site") {
	case "same-origin", "none":
		return false
	case "":
	default:
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return true
	}
	return u.Host != r.Host
}

// requireConsoleSession lets a request through only when it carries a live
// console session cookie. It runs after the guard, so the backend token is
// already known to be valid.
func (ui *UI) requireConsoleSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ui.sessions.GetSessionFromRequest(r) == nil {
			ClearSessionCookie(w)
			http.Redirect(w, r, ui.paths[session.LocationLogin], http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// publicOnly sends a browser that already has a console session away from
// loc. A browser without one always gets the public view, even when the
// token store holds a valid token.
func (ui *UI) publicOnly(loc session.Location) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := ui.guard.PublicOnly(loc, ui.paths)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ui.sessions.GetSessionFromRequest(r) == nil {
				next.ServeHTTP(w, r)
				return
			}
			guarded.ServeHTTP(w, r)
		})
	}
}
