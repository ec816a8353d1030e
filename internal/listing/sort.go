package listing

import (
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/me/examdesk/pkg/model"
)

// SortKey names an exam ordering.
type SortKey string

const (
	SortByTitle SortKey = "title"
	SortByDate  SortKey = "date"
)

// ParseSortKey accepts "title", "date" or "createdAt".
func ParseSortKey(s string) (SortKey, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "name":
		return SortByTitle, true
	case "date", "createdat", "created":
		return SortByDate, true
	}
	return "", false
}

// ByTitle orders exams A to Z using locale-aware collation. The returned
// comparator must not be shared between goroutines.
func ByTitle() func(a, b model.Exam) int {
	c := collate.New(language.English, collate.IgnoreCase)
	return func(a, b model.Exam) int {
		return c.CompareString(a.Title, b.Title)
	}
}

// ByCreated orders exams oldest first. Unparseable dates sort last.
func ByCreated(a, b model.Exam) int {
	ta, tb := model.ParseDate(a.CreatedAt), model.ParseDate(b.CreatedAt)
	switch {
	case ta.IsZero() && tb.IsZero():
		return 0
	case ta.IsZero():
		return 1
	case tb.IsZero():
		return -1
	}
	return ta.Compare(tb)
}

// ExamOrder returns the comparator for key.
func ExamOrder(key SortKey) func(a, b model.Exam) int {
	if key == SortByDate {
		return ByCreated
	}
	return ByTitle()
}
