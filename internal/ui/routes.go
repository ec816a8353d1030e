package ui

import (
	"github.com/go-chi/chi/v5"

	"github.com/me/examdesk/internal/session"
)

// RegisterRoutes registers all console routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	// Public views; a valid session is sent to the dashboard instead.
	r.Group(func(r chi.Router) {
		r.Use(ui.publicOnly(session.LocationLogin))
		r.Get("/login", ui.HandleLogin)
		r.Post("/login", ui.HandleLoginPost)
	})
	r.Group(func(r chi.Router) {
		r.Use(ui.publicOnly(session.LocationRegister))
		r.Get("/register", ui.HandleRegister)
		r.Post("/register", ui.HandleRegisterPost)
	})

	// Protected views.
	r.Group(func(r chi.Router) {
		r.Use(ui.guard.Protect(ui.paths))
		r.Use(ui.requireConsoleSession)

		r.Get("/", ui.HandleDashboard)
		r.Post("/logout", ui.HandleLogout)

		r.Route("/students", func(r chi.Router) {
			r.Get("/", ui.HandleStudentList)
			r.Get("/export.csv", ui.HandleStudentExport)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ui.HandleStudentDetail)
				r.Post("/", ui.HandleStudentUpdate)
				r.Post("/delete", ui.HandleStudentDelete)
				r.Post("/assign", ui.HandleStudentAssign)
			})
		})

		r.Route("/exams", func(r chi.Router) {
			r.Get("/", ui.HandleExamList)
			r.Post("/", ui.HandleExamCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", ui.HandleExamDetail)
				r.Post("/delete", ui.HandleExamDelete)
				r.Post("/questions", ui.HandleQuestionCreate)
			})
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/", ui.HandleImageList)
			r.Post("/delete", ui.HandleImageDelete)
		})
	})
}
