package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/me/examdesk/internal/listing"
	"github.com/me/examdesk/pkg/model"
)

// traceList logs every state change of l at debug level.
func traceList[T any](l *listing.List[T]) *listing.List[T] {
	l.Subscribe(func(s listing.State[T]) {
		args := []any{"status", s.Status.String(), "page", s.Query.Page, "items", len(s.Items)}
		if s.Err != nil {
			args = append(args, "error", s.Err)
		}
		logger.Debug("list state", args...)
	})
	return l
}

// printShowing prints the pager summary line.
func printShowing(w io.Writer, p model.Pagination) {
	if p.TotalItems == 0 {
		return
	}
	first, last := p.Range()
	fmt.Fprintf(w, "\nShowing %d to %d of %s results (page %d of %d)\n",
		first, last, humanize.Comma(int64(p.TotalItems)), p.Page, p.TotalPages)
}

// ago renders a backend date relative to now.
func ago(s string) string {
	t := model.ParseDate(s)
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
