package ui

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/me/examdesk/internal/listing"
	"github.com/me/examdesk/pkg/model"
)

// HandleExamList renders a page of exams, optionally filtered (?q=) and
// sorted (?sort=title|date).
func (ui *UI) HandleExamList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	exams := listing.NewExams(ui.client, ui.pageSize, ui.logger)

	st, err := exams.FetchPage(ctx, model.ListQuery{Page: queryPage(r), PageSize: ui.pageSize})
	if model.IsUnauthorized(err) {
		ui.renderError(w, r, "Session rejected", err)
		return
	}
	term := strings.TrimSpace(q.Get("q"))
	if err == nil && term != "" {
		st, _ = exams.Search(ctx, term)
	}
	if key, ok := listing.ParseSortKey(q.Get("sort")); ok && err == nil {
		st = exams.Sort(listing.ExamOrder(key))
	}

	extra := url.Values{}
	for _, k := range []string{"q", "sort"} {
		if v := q.Get(k); v != "" {
			extra.Set(k, v)
		}
	}
	data := ui.page(r, "Exams")
	data["Exams"] = st
	data["Search"] = term
	data["Sort"] = q.Get("sort")
	data["Pagination"] = pagination(st.Pagination, extra)
	ui.render(w, "exams", data)
}

// HandleExamCreate creates an exam from the list page form.
func (ui *UI) HandleExamCreate(w http.ResponseWriter, r *http.Request) {
	in := model.ExamInput{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if err := ui.client.CreateExam(r.Context(), in); err != nil {
		if model.IsUnauthorized(err) {
			ui.renderError(w, r, "Session rejected", err)
			return
		}
		ui.redirect(w, r, "/exams", "", "Error creating exam: "+errorText(err))
		return
	}
	ui.redirect(w, r, "/exams", "Exam created successfully", "")
}

// HandleExamDetail renders an exam with its questions and the question form.
func (ui *UI) HandleExamDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exam, err := ui.client.GetExam(r.Context(), id)
	if err != nil {
		ui.renderError(w, r, "Failed to load exam", err)
		return
	}
	data := ui.page(r, exam.Title)
	data["Exam"] = exam
	data["ID"] = id
	ui.render(w, "exam", data)
}

// HandleExamDelete deletes an exam and returns to the list.
func (ui *UI) HandleExamDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	exams := listing.NewExams(ui.client, ui.pageSize, ui.logger)
	if _, err := exams.DeleteItem(r.Context(), id); err != nil {
		if model.IsUnauthorized(err) {
			ui.renderError(w, r, "Session rejected", err)
			return
		}
		ui.redirect(w, r, "/exams", "", "Error deleting exam: "+errorText(err))
		return
	}
	ui.redirect(w, r, "/exams", "Exam deleted successfully", "")
}

// HandleQuestionCreate adds a question to the exam.
func (ui *UI) HandleQuestionCreate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/exams/" + url.PathEscape(id)
	if err := r.ParseForm(); err != nil {
		ui.redirect(w, r, back, "", "Invalid form")
		return
	}
	q := model.Question{
		ExamID:        id,
		QuestionText:  strings.TrimSpace(r.FormValue("questionText")),
		Options:       r.Form["option"],
		CorrectAnswer: r.FormValue("correctAnswer"),
	}
	if err := ui.client.CreateQuestion(r.Context(), q); err != nil {
		if model.IsUnauthorized(err) {
			ui.renderError(w, r, "Session rejected", err)
			return
		}
		ui.redirect(w, r, back, "", errorText(err))
		return
	}
	ui.redirect(w, r, back, "Question created successfully", "")
}
