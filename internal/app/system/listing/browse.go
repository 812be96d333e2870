package listing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"
)

// Defaults for the cursor-append and prefix-search strategies.
const (
	DefaultBrowsePageSize = 50
	DefaultSearchLimit    = 50
	MinSearchChars        = 2
)

// ErrSearchActive is returned by LoadMore while a search term is active.
var ErrSearchActive = errors.New("load more is disabled while searching")

// Source is the store side of a browse list.
//
// Page returns up to limit items ordered by a stable key strictly after the
// opaque cursor after ("" for the first page) together with the cursor of the
// last returned item. Search returns up to limit items whose search field lies
// in [term, term+sentinel).
type Source[T any] interface {
	Page(ctx context.Context, after string, limit int) (items []T, next string, err error)
	Search(ctx context.Context, term string, limit int) ([]T, error)
}

// Options tune a Browser. Zero values fall back to the defaults.
type Options struct {
	PageSize    int
	SearchLimit int
	MinChars    int
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultBrowsePageSize
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = DefaultSearchLimit
	}
	if o.MinChars <= 0 {
		o.MinChars = MinSearchChars
	}
	return o
}

// Searching reports whether term selects the prefix-search strategy.
func (o Options) Searching(term string) bool {
	o = o.withDefaults()
	return utf8.RuneCountInString(strings.TrimSpace(term)) >= o.MinChars
}

// Request is one stateless list request: either a browse page after a cursor
// or a search term.
type Request struct {
	After string
	Term  string
}

// Result is what one request produced.
type Result[T any] struct {
	Items     []T    `json:"items"`
	Next      string `json:"next,omitempty"`
	HasMore   bool   `json:"has_more"`
	Searching bool   `json:"searching"`
	Term      string `json:"term,omitempty"`
}

// Fetch runs one request against src, picking the strategy from the term.
// A term shorter than MinChars is ignored and the browse page is returned.
func Fetch[T any](ctx context.Context, src Source[T], req Request, opts Options) (Result[T], error) {
	opts = opts.withDefaults()
	term := strings.TrimSpace(req.Term)

	if opts.Searching(term) {
		items, err := src.Search(ctx, term, opts.SearchLimit)
		if err != nil {
			return Result[T]{Items: []T{}, Searching: true, Term: term}, err
		}
		return Result[T]{Items: nonNil(items), Searching: true, Term: term}, nil
	}

	items, next, err := src.Page(ctx, req.After, opts.PageSize)
	if err != nil {
		return Result[T]{Items: []T{}}, err
	}
	return Result[T]{
		Items:   nonNil(items),
		Next:    next,
		HasMore: len(items) == opts.PageSize,
	}, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// State is a snapshot of a Browser's resident list.
type State[T any] struct {
	Items     []T
	HasMore   bool
	Searching bool
	Term      string
}

// Browser holds the resident list for one browse screen and switches between
// cursor-append and prefix-search as the search term changes. It is safe for
// concurrent use; a response that arrives after a newer request was started
// is discarded.
type Browser[T any] struct {
	src  Source[T]
	opts Options

	mu      sync.Mutex
	items   []T
	cursor  string
	hasMore bool
	term    string
	gen     uint64
}

// NewBrowser returns an empty browser over src. Call Reset to load the first
// page.
func NewBrowser[T any](src Source[T], opts Options) *Browser[T] {
	return &Browser[T]{src: src, opts: opts.withDefaults()}
}

// Reset discards the resident list and fetches the first browse page. Use it
// when the underlying query changes (for example a different project).
func (b *Browser[T]) Reset(ctx context.Context) error {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.items, b.cursor, b.hasMore, b.term = nil, "", false, ""
	b.mu.Unlock()

	return b.fetchPage(ctx, gen, "", false)
}

// LoadMore appends the next browse page. It does nothing when the last page
// was short and refuses while a search is active.
func (b *Browser[T]) LoadMore(ctx context.Context) error {
	b.mu.Lock()
	if b.opts.Searching(b.term) {
		b.mu.Unlock()
		return ErrSearchActive
	}
	if !b.hasMore {
		b.mu.Unlock()
		return nil
	}
	b.gen++
	gen, after := b.gen, b.cursor
	b.mu.Unlock()

	return b.fetchPage(ctx, gen, after, true)
}

// SetTerm applies a new search term. A term of at least MinChars replaces the
// resident list with search results; leaving search mode re-fetches the
// first browse page from scratch.
func (b *Browser[T]) SetTerm(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)

	b.mu.Lock()
	wasSearching := b.opts.Searching(b.term)
	b.term = term
	if !b.opts.Searching(term) {
		if !wasSearching && b.items != nil {
			b.mu.Unlock()
			return nil
		}
		b.gen++
		gen := b.gen
		b.items, b.cursor, b.hasMore = nil, "", false
		b.mu.Unlock()
		return b.fetchPage(ctx, gen, "", false)
	}
	b.gen++
	gen := b.gen
	b.mu.Unlock()

	items, err := b.src.Search(ctx, term, b.opts.SearchLimit)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return nil
	}
	b.cursor, b.hasMore = "", false
	if err != nil {
		b.items = []T{}
		return err
	}
	b.items = nonNil(items)
	return nil
}

func (b *Browser[T]) fetchPage(ctx context.Context, gen uint64, after string, appendPage bool) error {
	items, next, err := b.src.Page(ctx, after, b.opts.PageSize)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.gen {
		return nil
	}
	if err != nil {
		b.items, b.cursor, b.hasMore = []T{}, "", false
		return err
	}
	if appendPage {
		b.items = append(b.items, items...)
	} else {
		b.items = nonNil(items)
	}
	if len(items) > 0 {
		b.cursor = next
	}
	b.hasMore = len(items) == b.opts.PageSize
	return nil
}

// State returns a copy of the resident list and flags.
func (b *Browser[T]) State() State[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State[T]{
		Items:     append([]T{}, b.items...),
		HasMore:   b.hasMore && !b.opts.Searching(b.term),
		Searching: b.opts.Searching(b.term),
		Term:      b.term,
	}
}
