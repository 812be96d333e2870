// Package listing implements the three list strategies used by staff screens:
//
//   - in-memory: a resident bounded dataset filtered by an ordered predicate
//     chain and sliced into numbered pages (View);
//   - cursor-append: a stable-ordered browse list fetched a page at a time and
//     appended to the resident list (Browser, browse mode);
//   - prefix-search: a bounded range query that replaces the resident list
//     while a search term of at least MinSearchChars is active (Browser,
//     search mode).
package listing

import (
	"errors"
	"slices"
)

// Allowed page sizes for the in-memory strategy.
var PageSizes = []int{20, 50, 100}

// DefaultPageSize is used when no page size has been chosen.
const DefaultPageSize = 20

// ErrBadPageSize is returned for a page size outside PageSizes.
var ErrBadPageSize = errors.New("page size must be 20, 50 or 100")

// Filter is one named predicate in the chain.
type Filter[T any] struct {
	Name  string
	Match func(T) bool
}

// Apply runs the filters in order and returns the surviving items, keeping
// input order. A nil Match is treated as "keep everything".
func Apply[T any](items []T, filters ...Filter[T]) []T {
	out := make([]T, 0, len(items))
next:
	for _, it := range items {
		for _, f := range filters {
			if f.Match != nil && !f.Match(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// Page is one numbered page of a filtered sequence.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns items[(page-1)*size : page*size]. page is clamped to 1;
// a page past the end is empty but still reports the totals.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	p := Page[T]{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
	}
	start := (page - 1) * size
	if start >= total {
		p.Items = []T{}
		return p
	}
	end := min(start+size, total)
	p.Items = items[start:end]
	return p
}

// View is the stateful in-memory strategy for one screen. Changing the
// dataset, any filter, or the page size resets the current page to 1.
type View[T any] struct {
	items    []T
	filters  []Filter[T]
	page     int
	pageSize int
}

// NewView returns a view over items with the default page size.
func NewView[T any](items []T) *View[T] {
	return &View[T]{items: items, page: 1, pageSize: DefaultPageSize}
}

// SetItems replaces the resident dataset.
func (v *View[T]) SetItems(items []T) {
	v.items = items
	v.page = 1
}

// SetFilter installs f, replacing any filter with the same name while keeping
// its position in the chain. New names are appended.
func (v *View[T]) SetFilter(f Filter[T]) {
	v.page = 1
	for i := range v.filters {
		if v.filters[i].Name == f.Name {
			v.filters[i] = f
			return
		}
	}
	v.filters = append(v.filters, f)
}

// ClearFilter removes the named filter.
func (v *View[T]) ClearFilter(name string) {
	v.page = 1
	v.filters = slices.DeleteFunc(v.filters, func(f Filter[T]) bool { return f.Name == name })
}

// SetPageSize changes the page size.
func (v *View[T]) SetPageSize(size int) error {
	if !slices.Contains(PageSizes, size) {
		return ErrBadPageSize
	}
	v.pageSize = size
	v.page = 1
	return nil
}

// SetPage moves to page n (clamped to 1).
func (v *View[T]) SetPage(n int) {
	v.page = max(n, 1)
}

// CurrentPage returns the page number the view is on.
func (v *View[T]) CurrentPage() int { return v.page }

// Filtered returns the whole filtered sequence.
func (v *View[T]) Filtered() []T {
	return Apply(v.items, v.filters...)
}

// Current returns the current page of the filtered sequence.
func (v *View[T]) Current() Page[T] {
	return Paginate(v.Filtered(), v.page, v.pageSize)
}
