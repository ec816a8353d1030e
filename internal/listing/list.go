// Package listing is the paginated data-fetch controller shared by every
// list view: one generic List parametrized by a fetch function and a
// response shape adapter.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/me/examdesk/pkg/model"
)

// ErrStale is returned by a fetch whose response was discarded because a
// newer query was issued while it was in flight.
var ErrStale = errors.New("stale response discarded")

// SearchMode selects how Search interprets its term.
type SearchMode int

const (
	// SearchNone disables search.
	SearchNone SearchMode = iota
	// SearchLookup asks the backend for the record with exactly this
	// identifier.
	SearchLookup
	// SearchFilter filters the held page client-side.
	SearchFilter
)

// LookupFunc finds a single record by exact identifier. A missing record
// is (nil, nil).
type LookupFunc[T any] func(ctx context.Context, term string) (*T, error)

// Config describes one list view.
type Config[T any] struct {
	Name     string
	PageSize int
	Fetch    FetchFunc[T]
	Key      func(T) string

	// Delete removes one record on the backend. Nil disables DeleteItem.
	Delete func(ctx context.Context, id string) error
	// ReconcileAfterDelete refetches the current page after a successful
	// delete instead of only dropping the item locally.
	ReconcileAfterDelete bool

	Mode   SearchMode
	Lookup LookupFunc[T]
	// Fields returns the display fields the client-side filter matches.
	Fields func(T) []string

	Columns []Column[T]
	Logger  *slog.Logger
}

// State is a snapshot of a list.
type State[T any] struct {
	Query      model.ListQuery
	Items      []T
	Pagination model.Pagination
	Status     model.ListStatus
	Err        error
	// NotFound is set when a search matched nothing.
	NotFound bool
}

// List is a PagedResourceList. It is safe for concurrent use; fetches run
// outside the lock and only the most recent one may update state.
type List[T any] struct {
	cfg    Config[T]
	logger *slog.Logger

	mu        sync.Mutex
	gen       uint64
	state     State[T]
	fetched   []T // the page as delivered, before any client filter
	observers map[int]func(State[T])
	nextObs   int
}

// New creates a list. Nothing is fetched until Load or FetchPage.
func New[T any](cfg Config[T]) *List[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = model.DefaultPageSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	q := model.DefaultListQuery()
	q.PageSize = cfg.PageSize
	return &List[T]{
		cfg:       cfg,
		logger:    logger.With("component", "listing", "list", cfg.Name),
		state:     State[T]{Query: q, Status: model.ListStatusLoading},
		observers: make(map[int]func(State[T])),
	}
}

// Subscribe registers fn to receive every state change. Observers run with
// the list locked and must not call back into it. The returned func
// removes the observer.
func (l *List[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextObs
	l.nextObs++
	l.observers[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.observers, id)
	}
}

// Snapshot returns a copy of the current state.
func (l *List[T]) Snapshot() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *List[T]) snapshotLocked() State[T] {
	s := l.state
	s.Items = slices.Clone(l.state.Items)
	return s
}

func (l *List[T]) notifyLocked() {
	if len(l.observers) == 0 {
		return
	}
	s := l.snapshotLocked()
	for _, fn := range l.observers {
		fn(s)
	}
}

// Load fetches the current query.
func (l *List[T]) Load(ctx context.Context) (State[T], error) {
	return l.FetchPage(ctx, l.Snapshot().Query)
}

// SetPage moves to page. It fetches only when the page actually changes
// or the previous fetch did not succeed.
func (l *List[T]) SetPage(ctx context.Context, page int) (State[T], error) {
	cur := l.Snapshot()
	if page == cur.Query.Page && cur.Status == model.ListStatusReady {
		return cur, nil
	}
	q := cur.Query
	q.Page = page
	return l.FetchPage(ctx, q)
}

// FetchPage issues exactly one request for q. Observers see Loading and
// then Ready or Failed. If another query is issued before the response
// arrives, the response is dropped and ErrStale returned.
func (l *List[T]) FetchPage(ctx context.Context, q model.ListQuery) (State[T], error) {
	if q.PageSize <= 0 {
		q.PageSize = l.cfg.PageSize
	}
	q.Clamp()

	gen := l.begin(q)
	l.logger.Debug("fetch page", "page", q.Page, "page_size", q.PageSize, "gen", gen)

	page, err := l.cfg.Fetch(ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		l.logger.Debug("discard stale page", "page", q.Page, "gen", gen, "current", l.gen)
		return l.snapshotLocked(), ErrStale
	}
	if err != nil {
		l.failLocked(err)
		return l.snapshotLocked(), err
	}

	l.fetched = page.Items
	l.state.Pagination = model.Pagination{
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: page.TotalPages,
		TotalItems: page.TotalItems,
	}
	// A filter applied while this page was in flight still holds.
	term := l.state.Query.SearchTerm
	l.state.Items = l.filterLocked(term)
	l.state.NotFound = term != "" && len(l.state.Items) == 0
	l.state.Status = model.ListStatusReady
	l.state.Err = nil
	l.notifyLocked()
	return l.snapshotLocked(), nil
}

// begin starts a new generation for q and publishes the Loading state.
func (l *List[T]) begin(q model.ListQuery) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.state.Query = q
	l.state.Status = model.ListStatusLoading
	l.state.Err = nil
	l.state.NotFound = false
	l.notifyLocked()
	return l.gen
}

func (l *List[T]) failLocked(err error) {
	l.logger.Warn("list fetch failed", "error", err)
	l.state.Status = model.ListStatusFailed
	l.state.Err = err
	l.state.Items = nil
	l.fetched = nil
	l.notifyLocked()
}

// Search applies term according to the list's search mode. An empty term
// clears the search and reloads the first page.
func (l *List[T]) Search(ctx context.Context, term string) (State[T], error) {
	term = strings.TrimSpace(term)
	cur := l.Snapshot()
	q := cur.Query

	if term == "" {
		q.SearchTerm = ""
		q.Page = 1
		return l.FetchPage(ctx, q)
	}

	switch l.cfg.Mode {
	case SearchLookup:
		return l.lookup(ctx, q, term)
	case SearchFilter:
		l.mu.Lock()
		defer l.mu.Unlock()
		l.state.Query.SearchTerm = term
		l.state.Items = l.filterLocked(term)
		l.state.NotFound = len(l.state.Items) == 0
		l.notifyLocked()
		return l.snapshotLocked(), nil
	default:
		return cur, errors.New(l.cfg.Name + " does not support search")
	}
}

func (l *List[T]) lookup(ctx context.Context, q model.ListQuery, term string) (State[T], error) {
	q.SearchTerm = term
	q.Page = 1
	gen := l.begin(q)
	l.logger.Debug("lookup", "term", term, "gen", gen)

	rec, err := l.cfg.Lookup(ctx, term)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return l.snapshotLocked(), ErrStale
	}
	if err != nil {
		l.failLocked(err)
		return l.snapshotLocked(), err
	}

	l.state.Pagination = model.Pagination{Page: 1, PageSize: q.PageSize, TotalPages: 1}
	if rec == nil {
		l.fetched = []T{}
		l.state.NotFound = true
	} else {
		l.fetched = []T{*rec}
		l.state.Pagination.TotalItems = 1
	}
	l.state.Items = slices.Clone(l.fetched)
	l.state.Status = model.ListStatusReady
	l.notifyLocked()
	return l.snapshotLocked(), nil
}

// filterLocked returns the fetched items matching term. Lookup results and
// lists without a client filter are returned as fetched.
func (l *List[T]) filterLocked(term string) []T {
	if term == "" || l.cfg.Mode != SearchFilter || l.cfg.Fields == nil {
		return slices.Clone(l.fetched)
	}
	fold := cases.Fold()
	needle := fold.String(term)
	out := make([]T, 0, len(l.fetched))
	for _, item := range l.fetched {
		for _, f := range l.cfg.Fields(item) {
			if strings.Contains(fold.String(f), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// DeleteItem deletes the record with id on the backend and then drops it
// from the held page without refetching, unless ReconcileAfterDelete is
// set. On failure the held items are left untouched.
func (l *List[T]) DeleteItem(ctx context.Context, id string) (State[T], error) {
	if l.cfg.Delete == nil {
		return l.Snapshot(), errors.New(l.cfg.Name + " does not support delete")
	}
	if err := l.cfg.Delete(ctx, id); err != nil {
		l.logger.Warn("delete failed", "id", id, "error", err)
		return l.Snapshot(), err
	}
	l.logger.Info("deleted", "id", id)

	if l.cfg.ReconcileAfterDelete {
		return l.Load(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	match := func(item T) bool { return l.cfg.Key(item) == id }
	before := len(l.fetched)
	l.fetched = slices.DeleteFunc(l.fetched, match)
	l.state.Items = slices.DeleteFunc(l.state.Items, match)
	if removed := before - len(l.fetched); removed > 0 && l.state.Pagination.TotalItems >= removed {
		l.state.Pagination.TotalItems -= removed
	}
	l.notifyLocked()
	return l.snapshotLocked(), nil
}

// Sort reorders the held items with cmp. Server order is kept until Sort
// is called and is restored by the next fetch.
func (l *List[T]) Sort(cmp func(a, b T) int) State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	slices.SortStableFunc(l.state.Items, cmp)
	l.notifyLocked()
	return l.snapshotLocked()
}
