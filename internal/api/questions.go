package api

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/me/examdesk/pkg/model"
)

const questionsPath = "/questions/create_question"

// CreateQuestion adds a single question to an exam. The question needs
// exactly four options and a correct answer equal to one of them.
func (c *Client) CreateQuestion(ctx context.Context, q model.Question) error {
	const op = "create question"
	if err := c.check(op, q); err != nil {
		return err
	}
	if !q.HasCorrectOption() {
		return model.NewValidationError(op, "correct answer must be one of the options",
			model.FieldError{Path: "Question.CorrectAnswer", Message: "correct answer must be one of the options"})
	}
	return c.call(ctx, op, http.MethodPost, questionsPath, true, q, nil)
}

// ImportQuestions uploads a spreadsheet of questions for bulk creation.
func (c *Client) ImportQuestions(ctx context.Context, xlsxPath string) error {
	const op = "import questions"
	if !strings.EqualFold(filepath.Ext(xlsxPath), ".xlsx") {
		return model.NewValidationError(op, "question import needs an .xlsx file")
	}
	req, err := multipartRequest(op, http.MethodPost, questionsPath, nil, []formFile{{field: "file", path: xlsxPath}})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, req)
	return err
}
