package model

// Exam is an exam definition.
type Exam struct {
	ID          ID         `json:"_id,omitempty"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	CreatedAt   string     `json:"createdAt,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
}

// Key returns the identifier used in /exam/:id paths.
func (e Exam) Key() string {
	return e.ID.String()
}

// ExamInput is the create/update request body.
type ExamInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

// Question is a multiple-choice question belonging to an exam.
type Question struct {
	ID            ID       `json:"_id,omitempty"`
	ExamID        string   `json:"examId" validate:"required"`
	QuestionText  string   `json:"questionText" validate:"required"`
	Options       []string `json:"options" validate:"len=4,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
}

// HasCorrectOption reports whether CorrectAnswer is one of Options.
func (q Question) HasCorrectOption() bool {
	for _, o := range q.Options {
		if o == q.CorrectAnswer {
			return true
		}
	}
	return false
}
