package ui

import (
	"net/http"
	"strings"

	"github.com/me/examdesk/internal/session"
	"github.com/me/examdesk/pkg/model"
)

// HandleLogin renders the login page.
func (ui *UI) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ui.render(w, "login", ui.page(r, "Login"))
}

// HandleLoginPost exchanges the submitted credentials for a token and
// starts the session.
func (ui *UI) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	loginPath := ui.paths[session.LocationLogin]
	if err := r.ParseForm(); err != nil {
		ui.redirect(w, r, loginPath, "", "Invalid request")
		return
	}
	creds := model.Credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}

	token, err := ui.client.Login(r.Context(), creds)
	if err != nil {
		ui.logger.Warn("login failed", "email", creds.Email, "error", err)
		ui.redirect(w, r, loginPath, "", errorText(err))
		return
	}
	if err := ui.guard.Login(r.Context(), token); err != nil {
		ui.logger.Error("store session failed", "error", err)
		ui.redirect(w, r, loginPath, "", "Could not save the session")
		return
	}
	sess, err := ui.sessions.CreateSession(ui.guard.Session(r.Context()).ExpiresAt)
	if err != nil {
		ui.logger.Error("create console session failed", "error", err)
		ui.redirect(w, r, loginPath, "", "Could not start the session")
		return
	}
	SetSessionCookie(w, sess, r.TLS != nil)
	ui.redirect(w, r, ui.paths[session.LocationHome], "Login successful", "")
}

// HandleRegister renders the registration page.
func (ui *UI) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ui.render(w, "register", ui.page(r, "Register"))
}

// HandleRegisterPost creates an operator account and sends the operator
// to login. Each backend validation message is shown.
func (ui *UI) HandleRegisterPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ui.redirect(w, r, ui.paths[session.LocationRegister], "", "Invalid request")
		return
	}
	creds := model.Credentials{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if err := ui.client.Register(r.Context(), creds); err != nil {
		data := ui.page(r, "Register")
		data["Email"] = creds.Email
		if apiErr, ok := model.AsAPIError(err); ok {
			data["Errors"] = apiErr.Messages()
		} else {
			data["Errors"] = []string{err.Error()}
		}
		ui.renderStatus(w, http.StatusUnprocessableEntity, "register", data)
		return
	}
	ui.redirect(w, r, ui.paths[session.LocationLogin], "Registration successful, please log in", "")
}

// HandleLogout ends the session. When the token cannot be cleared the
// console session is kept and the operator is told so.
func (ui *UI) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := ui.guard.Logout(r.Context()); err != nil {
		ui.logger.Error("logout failed", "error", err)
		ui.redirect(w, r, ui.paths[session.LocationHome], "", "Logout failed: "+err.Error())
		return
	}
	if sess := ui.sessions.GetSessionFromRequest(r); sess != nil {
		ui.sessions.DeleteSession(sess.ID)
	}
	ClearSessionCookie(w)
	ui.redirect(w, r, ui.paths[session.LocationLogin], "Logged out", "")
}
