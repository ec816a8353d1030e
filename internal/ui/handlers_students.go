package ui

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sourcegraph/conc/pool"

	"github.com/me/examdesk/internal/listing"
	"github.com/me/examdesk/pkg/model"
)

// HandleDashboard shows the first student page next to the exam selector
// used for assignment. Both lists load concurrently.
func (ui *UI) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	students := listing.NewStudents(ui.client, ui.pageSize, ui.logger)
	var (
		studentState listing.State[model.Student]
		exams        []model.Exam
		examErr      error
	)

	p := pool.New().WithMaxGoroutines(2)
	p.Go(func() {
		studentState, _ = students.FetchPage(ctx, model.ListQuery{Page: queryPage(r), PageSize: ui.pageSize})
	})
	p.Go(func() {
		exams, examErr = ui.client.ListExams(ctx)
	})
	p.Wait()

	for _, err := range []error{studentState.Err, examErr} {
		if model.IsUnauthorized(err) {
			ui.renderError(w, r, "Session rejected", err)
			return
		}
	}

	data := ui.page(r, "Dashboard")
	data["Students"] = studentState
	data["Pagination"] = pagination(studentState.Pagination, nil)
	data["Exams"] = exams
	if examErr != nil {
		data["ExamError"] = errorText(examErr)
	}
	data["Uptime"] = ui.startTime
	ui.render(w, "dashboard", data)
}

// HandleStudentList renders one page of students, or the result of a
// registration number lookup when ?q= is set.
func (ui *UI) HandleStudentList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	students := listing.NewStudents(ui.client, ui.pageSize, ui.logger)
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		st  listing.State[model.Student]
		err error
	)
	if term != "" {
		st, err = students.Search(ctx, term)
	} else {
		st, err = students.FetchPage(ctx, model.ListQuery{Page: queryPage(r), PageSize: ui.pageSize})
	}
	if model.IsUnauthorized(err) {
		ui.renderError(w, r, "Session rejected", err)
		return
	}

	data := ui.page(r, "Students")
	data["Students"] = st
	data["Search"] = term
	data["Pagination"] = pagination(st.Pagination, nil)
	ui.render(w, "students", data)
}

// HandleStudentExport downloads the requested student page as CSV.
func (ui *UI) HandleStudentExport(w http.ResponseWriter, r *http.Request) {
	students := listing.NewStudents(ui.client, ui.pageSize, ui.logger)
	if _, err := students.FetchPage(r.Context(), model.ListQuery{Page: queryPage(r), PageSize: ui.pageSize}); err != nil {
		ui.renderError(w, r, "Failed to fetch students", err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", listing.StudentExportFile))
	if _, err := students.ExportCurrentPage(w); err != nil {
		ui.logger.Error("csv export failed", "error", err)
	}
}

// HandleStudentDetail renders a student's profile with the edit form.
func (ui *UI) HandleStudentDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := ui.client.GetStudent(r.Context(), id)
	if err != nil {
		ui.renderError(w, r, "Failed to load student", err)
		return
	}
	if s == nil {
		ui.renderError(w, r, "Student not found", model.NewHTTPError("get student", http.StatusNotFound, "Student not found"))
		return
	}
	data := ui.page(r, s.Name)
	data["Student"] = s
	data["ID"] = id
	ui.render(w, "student", data)
}

// HandleStudentUpdate saves the edit form. Picture uploads are staged in
// temporary files and sent as a multipart update.
func (ui *UI) HandleStudentUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := "/students/" + url.PathEscape(id)
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		ui.redirect(w, r, back, "", "Invalid form")
		return
	}

	upd := model.StudentUpdate{Student: model.Student{
		Name:            strings.TrimSpace(r.FormValue("name")),
		RegistrationNo:  strings.TrimSpace(r.FormValue("registrationNo")),
		Course:          r.FormValue("course"),
		DateOfAdmission: r.FormValue("dateOfAdmission"),
		CourseDuration:  r.FormValue("courseDuration"),
		DateOfBirth:     r.FormValue("dateOfBirth"),
		MothersName:     r.FormValue("mothersName"),
		FathersName:     r.FormValue("fathersName"),
		Grade:           r.FormValue("grade"),
		Address:         r.FormValue("address"),
	}}

	dir, err := os.MkdirTemp("", "examdesk-upload-")
	if err != nil {
		ui.renderError(w, r, "Failed to stage upload", err)
		return
	}
	defer os.RemoveAll(dir)
	if upd.ProfilePicPath, err = stageUpload(r, "profilePic", dir); err != nil {
		ui.redirect(w, r, back, "", err.Error())
		return
	}
	if upd.CertificatePicPath, err = stageUpload(r, "certificatePic", dir); err != nil {
		ui.redirect(w, r, back, "", err.Error())
		return
	}

	if err := ui.client.UpdateStudent(r.Context(), id, upd); err != nil {
		if model.IsUnauthorized(err) {
			ui.renderError(w, r, "Session rejected", err)
			return
		}
		ui.redirect(w, r, back, "", "Error updating student: "+errorText(err))
		return
	}
	ui.logger.Info("student updated", "id", id)
	ui.redirect(w, r, back, "Student updated successfully", "")
}

// stageUpload copies the uploaded form file field into dir and returns
// its path, or "" when the field is empty.
func stageUpload(r *http.Request, field, dir string) (string, error) {
	if r.MultipartForm == nil {
		return "", nil
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", field, err)
	}
	defer f.Close()
	return saveUpload(f, hdr, dir)
}

func saveUpload(src multipart.File, hdr *multipart.FileHeader, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(hdr.Filename))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", hdr.Filename, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return "", fmt.Errorf("stage %s: %w", hdr.Filename, err)
	}
	return dst, nil
}

// HandleStudentDelete deletes a student and returns to the list.
func (ui *UI) HandleStudentDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	students := listing.NewStudents(ui.client, ui.pageSize, ui.logger)
	if _, err := students.DeleteItem(r.Context(), id); err != nil {
		if model.IsUnauthorized(err) {
			ui.renderError(w, r, "Session rejected", err)
			return
		}
		ui.redirect(w, r, "/students", "", "Error deleting student: "+errorText(err))
		return
	}
	ui.redirect(w, r, "/students", "Student deleted successfully", "")
}

// HandleStudentAssign assigns the selected exam to a student.
func (ui *UI) HandleStudentAssign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := r.FormValue("back")
	if back == "" || !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		back = "/"
	}
	a := model.ExamAssignment{StudentID: id, ExamID: r.FormValue("examId")}
	if err := ui.client.AssignExam(r.Context(), a); err != nil {
		if model.IsUnauthorized(err) {
			ui.renderError(w, r, "Session rejected", err)
			return
		}
		ui.redirect(w, r, back, "", "Error: "+errorText(err))
		return
	}
	ui.logger.Info("exam assigned", "student", id, "exam", a.ExamID)
	ui.redirect(w, r, back, "Exam Assigned Successfully", "")
}
