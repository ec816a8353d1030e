package session

import (
	"net/http"

	"github.com/me/examdesk/pkg/model"
)

// Paths maps locations to the URL paths used for HTTP redirects.
type Paths map[Location]string

// DefaultPaths is the web console's route layout.
var DefaultPaths = Paths{
	LocationLogin:    "/login",
	LocationRegister: "/register",
	LocationHome:     "/",
}

func (p Paths) path(loc Location) string {
	if s, ok := p[loc]; ok {
		return s
	}
	return DefaultPaths[loc]
}

// Protect wraps a protected view: the guard's mount check runs on every
// request and an invalid session is answered with a redirect to login in
// place of the view.
func (g *Guard) Protect(paths Paths) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := g.OnMount(r.Context(), LocationHome)
			if res.Redirect != "" {
				http.Redirect(w, r, paths.path(res.Redirect), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PublicOnly wraps a public view (login, register): an already valid
// session is sent to the default protected surface instead.
func (g *Guard) PublicOnly(loc Location, paths Paths) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if res := g.OnMount(r.Context(), loc); res.Status == model.SessionValid {
				http.Redirect(w, r, paths.path(LocationHome), http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
