package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/me/examdesk/pkg/model"
)

// Page is one normalized page of a resource list.
type Page[T any] struct {
	Items      []T
	TotalPages int
	TotalItems int
}

// FetchFunc loads the page selected by q.
type FetchFunc[T any] func(ctx context.Context, q model.ListQuery) (Page[T], error)

// RawFetchFunc loads the undecoded response body for the page selected by q.
type RawFetchFunc func(ctx context.Context, q model.ListQuery) ([]byte, error)

// DefaultItemKeys are the envelope keys that hold the items of a
// server-paginated response.
var DefaultItemKeys = []string{"students", "items"}

var (
	pageCountKeys = []string{"totalPages", "pages"}
	totalItemKeys = []string{"totalItems", "total"}
)

// Adapt turns a raw fetch into a FetchFunc by normalizing whichever
// response shape the backend sends. itemKeys overrides DefaultItemKeys.
func Adapt[T any](op string, raw RawFetchFunc, itemKeys ...string) FetchFunc[T] {
	if len(itemKeys) == 0 {
		itemKeys = DefaultItemKeys
	}
	return func(ctx context.Context, q model.ListQuery) (Page[T], error) {
		body, err := raw(ctx, q)
		if err != nil {
			return Page[T]{}, err
		}
		page, err := Normalize[T](body, q, itemKeys...)
		if err != nil {
			return Page[T]{}, model.NewDecodeError(op, err)
		}
		return page, nil
	}
}

// Collect turns a fetch of the whole collection into a FetchFunc that
// pages client-side.
func Collect[T any](all func(ctx context.Context) ([]T, error)) FetchFunc[T] {
	return func(ctx context.Context, q model.ListQuery) (Page[T], error) {
		items, err := all(ctx)
		if err != nil {
			return Page[T]{}, err
		}
		return Window(items, q), nil
	}
}

// Window cuts the page selected by q out of a full collection.
func Window[T any](all []T, q model.ListQuery) Page[T] {
	q.Clamp()
	page := Page[T]{
		TotalItems: len(all),
		TotalPages: model.TotalPagesFor(len(all), q.PageSize),
	}
	start := (q.Page - 1) * q.PageSize
	if start >= len(all) {
		page.Items = []T{}
		return page
	}
	end := min(start+q.PageSize, len(all))
	page.Items = append([]T(nil), all[start:end]...)
	return page
}

// Normalize decodes a list response in any of the accepted shapes:
//
//	{"students"|"items": [...], "totalPages"|"pages": N}   server paginated
//	{"data": [...], "meta": {"last_page": N}}              server paginated
//	{"data": [...]}                                        whole collection
//	[...]                                                  whole collection
//
// A whole collection is paged client-side with ceil(len/pageSize) pages.
func Normalize[T any](body []byte, q model.ListQuery, itemKeys ...string) (Page[T], error) {
	q.Clamp()
	if len(itemKeys) == 0 {
		itemKeys = DefaultItemKeys
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Page[T]{}, fmt.Errorf("empty response body")
	}

	switch body[0] {
	case '[':
		var all []T
		if err := json.Unmarshal(body, &all); err != nil {
			return Page[T]{}, fmt.Errorf("decode item array: %w", err)
		}
		return Window(all, q), nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return Page[T]{}, fmt.Errorf("decode envelope: %w", err)
		}
		for _, key := range itemKeys {
			if raw, ok := obj[key]; ok {
				return envelopePage[T](obj, key, raw, q)
			}
		}
		if raw, ok := obj["data"]; ok {
			return dataMetaPage[T](obj, raw, q)
		}
		return Page[T]{}, fmt.Errorf("unrecognized list response: object with keys %s", strings.Join(keysOf(obj), ", "))
	default:
		return Page[T]{}, fmt.Errorf("unrecognized list response: expected an array or object")
	}
}

func envelopePage[T any](obj map[string]json.RawMessage, key string, raw json.RawMessage, q model.ListQuery) (Page[T], error) {
	var page Page[T]
	if err := json.Unmarshal(raw, &page.Items); err != nil {
		return Page[T]{}, fmt.Errorf("decode %q: %w", key, err)
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	page.TotalPages = -1
	for _, k := range pageCountKeys {
		if v, ok := obj[k]; ok {
			if err := json.Unmarshal(v, &page.TotalPages); err != nil {
				return Page[T]{}, fmt.Errorf("decode %q: %w", k, err)
			}
			break
		}
	}
	for _, k := range totalItemKeys {
		if v, ok := obj[k]; ok {
			if err := json.Unmarshal(v, &page.TotalItems); err != nil {
				return Page[T]{}, fmt.Errorf("decode %q: %w", k, err)
			}
			break
		}
	}
	if page.TotalPages < 0 {
		// No page count: the envelope holds one page.
		page.TotalPages = 1
		if len(page.Items) == 0 {
			page.TotalPages = 0
		}
	}
	if page.TotalItems == 0 && page.TotalPages > 0 {
		page.TotalItems = estimateTotal(page.TotalPages, len(page.Items), q)
	}
	return page, nil
}

func dataMetaPage[T any](obj map[string]json.RawMessage, raw json.RawMessage, q model.ListQuery) (Page[T], error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return Page[T]{}, fmt.Errorf("decode \"data\": %w", err)
	}
	var meta struct {
		LastPage *int `json:"last_page"`
		Total    int  `json:"total"`
	}
	if metaRaw, ok := obj["meta"]; ok {
		if err := json.Unmarshal(metaRaw, &meta); err != nil {
			return Page[T]{}, fmt.Errorf("decode \"meta\": %w", err)
		}
	}
	if meta.LastPage == nil {
		// No page metadata: data is the whole collection.
		return Window(items, q), nil
	}
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, TotalPages: *meta.LastPage, TotalItems: meta.Total}, nil
}

// estimateTotal guesses the item count when the backend only reports a
// page count. It is exact on the last page.
func estimateTotal(totalPages, onPage int, q model.ListQuery) int {
	if q.Page >= totalPages {
		return (totalPages-1)*q.PageSize + onPage
	}
	return totalPages * q.PageSize
}

func keysOf(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
