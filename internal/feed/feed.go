package feed

import (
	"context"
	"fmt"

	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/logging"
)

// Feed is the controller for one notification feed. It accumulates the
// upstream record list delivered page by page, keeps the sticky partition
// in sync with it and owns the pagination cursor.
//
// Feed is not safe for concurrent use; all calls are expected to come from
// a single update loop.
type Feed struct {
	scope       domain.Scope
	pageSize    int
	records     []domain.Notification
	index       map[string]int
	partitioner *Partitioner
	cursor      *Cursor
	state       State
}

// New creates an empty feed for scope. pageSize <= 0 uses the domain default.
func New(scope domain.Scope, pageSize int) *Feed {
	return &Feed{
		scope:       scope,
		pageSize:    pageSize,
		index:       make(map[string]int),
		partitioner: NewPartitioner(scope),
		cursor:      NewCursor(scope, pageSize),
		state:       State{Unread: []domain.Notification{}, Latest: []domain.Notification{}},
	}
}

// Scope returns the active feed scope.
func (f *Feed) Scope() domain.Scope {
	return f.scope
}

// SetScope switches the feed to scope. A different scope drops every record,
// both buckets and the pagination position; results of fetches issued
// before the switch will be discarded. Returns true if the scope changed.
func (f *Feed) SetScope(scope domain.Scope) bool {
	if scope == f.scope {
		return false
	}
	logging.Debug("feed scope changed", "from", f.scope.String(), "to", scope.String())
	f.reset(scope)
	return true
}

// Reload drops all accumulated state for the current scope and rewinds
// pagination to the first page.
func (f *Feed) Reload() {
	f.reset(f.scope)
}

func (f *Feed) reset(scope domain.Scope) {
	f.scope = scope
	f.records = nil
	f.index = make(map[string]int)
	f.partitioner.Reset(scope)
	f.cursor.Reset(scope)
	f.state = f.partitioner.State()
}

// LoadMore asks the cursor for the next page. The second return value is
// false when a fetch is already outstanding or no pages remain.
func (f *Feed) LoadMore() (Request, bool) {
	return f.cursor.LoadMore()
}

// Receive applies the outcome of a fetch. Stale results, issued before the
// last scope switch or reload, are dropped and reported as not applied.
// A failed fetch is applied (the cursor returns to idle) but leaves the
// buckets untouched; its error is returned to the caller.
func (f *Feed) Receive(res Result) (bool, error) {
	page, ok := f.cursor.Complete(res)
	if !ok {
		logging.Debug("discarding stale feed page",
			"scope", res.Request.Scope.String(),
			"generation", res.Request.generation,
			"current_generation", f.cursor.Generation())
		return false, nil
	}
	if res.Err != nil {
		logging.Warn("feed page fetch failed", "scope", f.scope.String(), "error", res.Err)
		return true, res.Err
	}
	f.appendRecords(page.Notifications)
	f.refold()
	logging.Debug("feed page applied",
		"scope", f.scope.String(),
		"received", len(page.Notifications),
		"unread", len(f.state.Unread),
		"latest", len(f.state.Latest),
		"has_more", page.HasMore())
	return true, nil
}

// Replace swaps the whole upstream list, e.g. after an external refresh.
// Sticky unread membership survives the replacement.
func (f *Feed) Replace(records []domain.Notification) {
	f.records = nil
	f.index = make(map[string]int)
	f.appendRecords(records)
	f.refold()
}

// MarkRead flips the upstream record with id to read and re-derives the
// buckets. It reports whether the id is known to the feed.
func (f *Feed) MarkRead(id string) bool {
	i, ok := f.index[id]
	if !ok {
		return false
	}
	f.records[i] = f.records[i].MarkRead()
	f.refold()
	return true
}

// MarkAllRead flips every upstream record to read.
func (f *Feed) MarkAllRead() {
	for i := range f.records {
		f.records[i] = f.records[i].MarkRead()
	}
	f.refold()
}

func (f *Feed) appendRecords(incoming []domain.Notification) {
	for _, n := range incoming {
		if !n.Valid() {
			logging.Warn("dropping notification without id", "scope", f.scope.String())
			continue
		}
		if n.AppDomain != "" && n.AppDomain != f.scope.AppDomain {
			logging.Warn("dropping notification from another feed", "scope", f.scope.String(), "app_domain", n.AppDomain, "id", n.ID)
			continue
		}
		if i, ok := f.index[n.ID]; ok {
			if f.records[i].IsRead {
				n.IsRead = true
			}
			f.records[i] = n
			continue
		}
		f.index[n.ID] = len(f.records)
		f.records = append(f.records, n)
	}
}

func (f *Feed) refold() {
	f.state = f.partitioner.Apply(f.scope, f.records)
}

// State returns a copy of the current partition.
func (f *Feed) State() State {
	return f.state.Clone()
}

// Unread returns the records of the sticky unread bucket.
func (f *Feed) Unread() []domain.Notification {
	return cloneNotifications(f.state.Unread)
}

// Latest returns the records of the latest bucket.
func (f *Feed) Latest() []domain.Notification {
	return cloneNotifications(f.state.Latest)
}

// Records returns the accumulated upstream list.
func (f *Feed) Records() []domain.Notification {
	return cloneNotifications(f.records)
}

// Get returns the upstream record with id.
func (f *Feed) Get(id string) (domain.Notification, bool) {
	i, ok := f.index[id]
	if !ok {
		return domain.Notification{}, false
	}
	return f.records[i], true
}

// IsLoading reports whether a page fetch is outstanding.
func (f *Feed) IsLoading() bool {
	return f.cursor.IsLoading()
}

// HasMore reports whether further pages may be requested.
func (f *Feed) HasMore() bool {
	return f.cursor.HasMore()
}

// Started reports whether the first page has been delivered.
func (f *Feed) Started() bool {
	return f.cursor.Started()
}

// Trigger returns the item the visibility trigger should be attached to.
func (f *Feed) Trigger() Target {
	return TriggerTarget(f.state)
}

// Sections returns which section headers to render right now.
func (f *Feed) Sections() Sections {
	return VisibleSections(f.state, f.IsLoading())
}

// Collect synchronously pulls up to maxPages pages from src into the feed.
// maxPages <= 0 pulls until the source is exhausted.
func (f *Feed) Collect(ctx context.Context, src domain.PageSource, maxPages int) error {
	for fetched := 0; maxPages <= 0 || fetched < maxPages; fetched++ {
		req, ok := f.LoadMore()
		if !ok {
			return nil
		}
		page, err := src.FetchPage(ctx, req.PageRequest)
		if _, err := f.Receive(Result{Request: req, Page: page, Err: err}); err != nil {
			return fmt.Errorf("collect %s: %w", f.scope, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
