package listing

import (
	"context"
	"log/slog"

	"github.com/me/examdesk/internal/api"
	"github.com/me/examdesk/pkg/model"
)

// StudentExportFile is the default file name of a student CSV export.
const StudentExportFile = "student_data.csv"

// StudentColumns are the CSV columns of a student export.
var StudentColumns = []Column[model.Student]{
	{"_id", func(s model.Student) string { return s.Key() }},
	{"name", func(s model.Student) string { return s.Name }},
	{"registrationNo", func(s model.Student) string { return s.RegistrationNo }},
	{"course", func(s model.Student) string { return s.Course }},
	{"dateOfAdmission", func(s model.Student) string { return s.DateOfAdmission }},
	{"courseDuration", func(s model.Student) string { return s.CourseDuration }},
	{"dateOfBirth", func(s model.Student) string { return s.BirthDate() }},
	{"mothersName", func(s model.Student) string { return s.MothersName }},
	{"fathersName", func(s model.Student) string { return s.FathersName }},
	{"grade", func(s model.Student) string { return s.Grade }},
	{"address", func(s model.Student) string { return s.Address }},
}

// NewStudents is the student list: server paginated, searched by exact
// registration number.
func NewStudents(c *api.Client, pageSize int, logger *slog.Logger) *List[model.Student] {
	raw := func(ctx context.Context, q model.ListQuery) ([]byte, error) {
		return c.ListStudentsRaw(ctx, q.Page, q.PageSize)
	}
	return New(Config[model.Student]{
		Name:     "students",
		PageSize: pageSize,
		Fetch:    Adapt[model.Student]("list students", raw),
		Key:      model.Student.Key,
		Delete:   c.DeleteStudent,
		Mode:     SearchLookup,
		Lookup:   c.FindStudentByRegistration,
		Columns:  StudentColumns,
		Logger:   logger,
	})
}

// NewExams is the exam list: the backend returns every exam, paged here.
// Search filters the held page by title and description.
func NewExams(c *api.Client, pageSize int, logger *slog.Logger) *List[model.Exam] {
	return New(Config[model.Exam]{
		Name:     "exams",
		PageSize: pageSize,
		Fetch:    Collect(c.ListExams),
		Key:      model.Exam.Key,
		Delete:   c.DeleteExam,
		Mode:     SearchFilter,
		Fields:   func(e model.Exam) []string { return []string{e.Title, e.Description} },
		Columns: []Column[model.Exam]{
			{"_id", model.Exam.Key},
			{"title", func(e model.Exam) string { return e.Title }},
			{"description", func(e model.Exam) string { return e.Description }},
			{"createdAt", func(e model.Exam) string { return e.CreatedAt }},
		},
		Logger: logger,
	})
}

// NewImages is the image gallery list, filtered by category or public id.
func NewImages(c *api.Client, pageSize int, logger *slog.Logger) *List[model.Image] {
	return New(Config[model.Image]{
		Name:     "images",
		PageSize: pageSize,
		Fetch:    Collect(c.ListImages),
		Key:      model.Image.Key,
		Delete:   c.DeleteImage,
		Mode:     SearchFilter,
		Fields:   func(i model.Image) []string { return []string{i.Category, i.PublicID} },
		Columns: []Column[model.Image]{
			{"public_id", model.Image.Key},
			{"category", func(i model.Image) string { return i.Category }},
			{"url", func(i model.Image) string { return i.SecureURL }},
		},
		Logger: logger,
	})
}
