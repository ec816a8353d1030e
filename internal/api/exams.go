package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/me/examdesk/pkg/model"
)

// ListExams fetches every exam visible to the admin.
func (c *Client) ListExams(ctx context.Context) ([]model.Exam, error) {
	var exams []model.Exam
	if err := c.call(ctx, "list exams", http.MethodGet, "/exam/admin", true, nil, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}

// GetExam fetches one exam with its questions.
func (c *Client) GetExam(ctx context.Context, id string) (*model.Exam, error) {
	var exam model.Exam
	if err := c.call(ctx, "get exam", http.MethodGet, "/exam/"+url.PathEscape(id)+"/adminId", true, nil, &exam); err != nil {
		return nil, err
	}
	return &exam, nil
}

// CreateExam creates an exam.
func (c *Client) CreateExam(ctx context.Context, in model.ExamInput) error {
	const op = "create exam"
	if err := c.check(op, in); err != nil {
		return err
	}
	return c.call(ctx, op, http.MethodPost, "/exam", true, in, nil)
}

// UpdateExam replaces an exam's title and description.
func (c *Client) UpdateExam(ctx context.Context, id string, in model.ExamInput) error {
	const op = "update exam"
	if err := c.check(op, in); err != nil {
		return err
	}
	return c.call(ctx, op, http.MethodPut, "/exam/"+url.PathEscape(id), true, in, nil)
}

// DeleteExam deletes an exam.
func (c *Client) DeleteExam(ctx context.Context, id string) error {
	return c.call(ctx, "delete exam", http.MethodDelete, "/exam/"+url.PathEscape(id), true, nil, nil)
}

// AssignExam assigns an exam to a student. Both ids are required; a
// missing exam selection fails before any request is sent.
func (c *Client) AssignExam(ctx context.Context, a model.ExamAssignment) error {
	const op = "assign exam"
	if a.ExamID == "" {
		return model.NewValidationError(op, "please select an exam to assign")
	}
	if err := c.check(op, a); err != nil {
		return err
	}
	return c.call(ctx, op, http.MethodPost, "/exam/assign", true, a, nil)
}

// SearchExams finds exams by name. The backend matches lower-cased names.
func (c *Client) SearchExams(ctx context.Context, name string) ([]model.Exam, error) {
	const op = "search exams"
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewValidationError(op, "exam name is required")
	}
	body := map[string]string{"examName": strings.ToLower(name)}
	var exams []model.Exam
	if err := c.call(ctx, op, http.MethodPost, "/exam/getExamByName", true, body, &exams); err != nil {
		return nil, err
	}
	return exams, nil
}
