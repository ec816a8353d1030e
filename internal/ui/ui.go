// Package ui is the local web console: server-rendered views over the
// same guard, API client and list controllers the CLI uses.
package ui

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/examdesk/internal/api"
	"github.com/me/examdesk/internal/session"
	"github.com/me/examdesk/pkg/model"
)

// UI handles the web console.
type UI struct {
	guard     *session.Guard
	sessions  *SessionManager
	client    *api.Client
	logger    *slog.Logger
	pageSize  int
	paths     session.Paths
	startTime time.Time
}

// Config holds UI configuration.
type Config struct {
	PageSize int
}

// New creates the web console.
func New(guard *session.Guard, client *api.Client, logger *slog.Logger, cfg Config) *UI {
	if cfg.PageSize <= 0 {
		cfg.PageSize = model.DefaultPageSize
	}
	return &UI{
		guard:     guard,
		sessions:  NewSessionManager(),
		client:    client,
		logger:    logger.With("component", "ui"),
		pageSize:  cfg.PageSize,
		paths:     session.DefaultPaths,
		startTime: time.Now(),
	}
}

// Handler returns the console's router.
func (ui *UI) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(ui.logger))
	r.Use(sameOriginOnly(ui.logger))
	ui.RegisterRoutes(r)
	return r
}

// page builds the common template data for a view. The navigation is
// shown only to a browser with a console session while the guard holds
// the operator as authenticated.
func (ui *UI) page(r *http.Request, title string) map[string]any {
	q := r.URL.Query()
	return map[string]any{
		"Title":         title + " - examdesk",
		"Flash":         q.Get("msg"),
		"Error":         q.Get("err"),
		"Session":       ui.guard.Session(r.Context()),
		"Authenticated": ui.guard.Authenticated() && ui.sessions.GetSessionFromRequest(r) != nil,
	}
}

func (ui *UI) render(w http.ResponseWriter, name string, data map[string]any) {
	ui.renderStatus(w, http.StatusOK, name, data)
}

func (ui *UI) renderStatus(w http.ResponseWriter, status int, name string, data map[string]any) {
	var buf bytes.Buffer
	if err := renderTemplate(&buf, name, data); err != nil {
		ui.logger.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderError shows a failed backend call. A 401 has already torn the
// session down, so the operator is sent to login instead.
func (ui *UI) renderError(w http.ResponseWriter, r *http.Request, message string, err error) {
	if model.IsUnauthorized(err) || errors.Is(err, session.ErrNotAuthenticated) {
		ui.redirect(w, r, ui.paths[session.LocationLogin], "", "Session expired, please log in again")
		return
	}
	ui.logger.Error(message, "error", err)
	status := http.StatusBadGateway
	if model.IsNotFound(err) {
		status = http.StatusNotFound
	}
	data := ui.page(r, "Error")
	data["Message"] = message
	data["Detail"] = errorText(err)
	ui.renderStatus(w, status, "error", data)
}

// redirect answers with 303 to path, carrying a flash notification.
func (ui *UI) redirect(w http.ResponseWriter, r *http.Request, path, msg, errMsg string) {
	q := url.Values{}
	if msg != "" {
		q.Set("msg", msg)
	}
	if errMsg != "" {
		q.Set("err", errMsg)
	}
	if len(q) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + q.Encode()
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// errorText is the operator-facing text of an operation failure.
func errorText(err error) string {
	if apiErr, ok := model.AsAPIError(err); ok {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return apiErr.Error()
	}
	return err.Error()
}

// queryPage reads the 1-based ?page= parameter.
func queryPage(r *http.Request) int {
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		return n
	}
	return 1
}

// pagination builds the template data for a pager.
func pagination(p model.Pagination, extra url.Values) map[string]any {
	first, last := p.Range()
	link := func(page int) string {
		q := url.Values{}
		for k, v := range extra {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		return "?" + q.Encode()
	}
	return map[string]any{
		"Page":       p.Page,
		"TotalPages": p.TotalPages,
		"Total":      p.TotalItems,
		"First":      first,
		"Last":       last,
		"HasPrev":    p.HasPrev(),
		"HasNext":    p.HasNext(),
		"PrevLink":   link(p.Page - 1),
		"NextLink":   link(p.Page + 1),
	}
}
