package model

// ListStatus is the lifecycle state of a list view's result.
type ListStatus string

const (
	ListStatusLoading ListStatus = "LOADING"
	ListStatusReady   ListStatus = "READY"
	ListStatusFailed  ListStatus = "FAILED"
)

// String returns the string representation of the list status.
func (s ListStatus) String() string {
	return string(s)
}

// DefaultPageSize is the page size every list view uses unless configured.
const DefaultPageSize = 10

// ListQuery selects one page of a resource list.
type ListQuery struct {
	Page       int
	PageSize   int
	SearchTerm string
}

// DefaultListQuery returns the first page with the default page size.
func DefaultListQuery() ListQuery {
	return ListQuery{Page: 1, PageSize: DefaultPageSize}
}

// Clamp enforces a 1-based page and a positive page size.
func (q *ListQuery) Clamp() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
}

// Pagination holds the page metadata of a list result.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// TotalPagesFor returns ceil(count/pageSize), or 0 for an empty set.
func TotalPagesFor(count, pageSize int) int {
	if count <= 0 || pageSize <= 0 {
		return 0
	}
	return (count + pageSize - 1) / pageSize
}

// Range returns the 1-based first and last item numbers shown on the
// current page, for "Showing A to B of N results".
func (p Pagination) Range() (first, last int) {
	if p.TotalItems == 0 {
		return 0, 0
	}
	first = (p.Page-1)*p.PageSize + 1
	last = p.Page * p.PageSize
	if last > p.TotalItems {
		last = p.TotalItems
	}
	return first, last
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}
