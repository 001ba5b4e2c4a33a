package feed

import (
	"github.com/cristianoliveira/appfeed/internal/domain"
)

// Request is a page fetch issued by a Cursor. It remembers the cursor
// generation it was issued under so late results can be recognised.
type Request struct {
	domain.PageRequest
	generation uint64
}

// Generation returns the cursor generation the request belongs to.
func (r Request) Generation() uint64 {
	return r.generation
}

// Result is the outcome of fetching a Request.
type Result struct {
	Request Request
	Page    domain.Page
	Err     error
}

// Cursor tracks forward-only pagination for one feed scope.
//
// It moves Idle -> Loading on LoadMore and back to Idle on Complete,
// whether the fetch succeeded or not. While Loading, LoadMore is a no-op.
type Cursor struct {
	scope      domain.Scope
	limit      int
	next       string
	started    bool
	exhausted  bool
	loading    bool
	generation uint64
}

// NewCursor creates a cursor positioned before the first page of scope.
func NewCursor(scope domain.Scope, limit int) *Cursor {
	return &Cursor{
		scope: scope,
		limit: domain.PageRequest{Limit: limit}.NormalizedLimit(),
	}
}

// IsLoading reports whether a fetch is outstanding.
func (c *Cursor) IsLoading() bool {
	return c.loading
}

// HasMore reports whether another page may still be requested.
func (c *Cursor) HasMore() bool {
	return !c.exhausted
}

// Started reports whether at least one page has been delivered.
func (c *Cursor) Started() bool {
	return c.started
}

// Generation returns the current cursor generation.
func (c *Cursor) Generation() uint64 {
	return c.generation
}

// LoadMore issues the next page request. It returns false while a fetch is
// outstanding or once the source reported no further pages.
func (c *Cursor) LoadMore() (Request, bool) {
	if c.loading || c.exhausted {
		return Request{}, false
	}
	c.loading = true
	return Request{
		PageRequest: domain.PageRequest{
			Scope:  c.scope,
			Cursor: c.next,
			Limit:  c.limit,
		},
		generation: c.generation,
	}, true
}

// Complete settles the outstanding request. It returns false, leaving the
// cursor untouched, when res belongs to an older generation. A failed fetch
// returns the cursor to Idle without moving its position.
func (c *Cursor) Complete(res Result) (domain.Page, bool) {
	if res.Request.generation != c.generation || !c.loading {
		return domain.Page{}, false
	}
	c.loading = false
	if res.Err != nil {
		return domain.Page{}, true
	}
	c.started = true
	c.next = res.Page.NextCursor
	c.exhausted = !res.Page.HasMore()
	return res.Page, true
}

// Reset rebinds the cursor to scope, rewinds it to the first page and
// invalidates every request issued before the call.
func (c *Cursor) Reset(scope domain.Scope) {
	c.generation++
	c.scope = scope
	c.next = ""
	c.started = false
	c.exhausted = false
	c.loading = false
}
