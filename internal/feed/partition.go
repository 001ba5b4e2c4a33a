// Package feed holds the notification feed state machine: the sticky
// unread/latest partition, the pagination cursor and the controller that
// ties them to a single feed scope. It has no UI dependencies.
package feed

import (
	"github.com/cristianoliveira/appfeed/internal/domain"
)

// Bucket names one of the two display sections of a feed.
type Bucket int

const (
	// BucketNone means no bucket holds an item.
	BucketNone Bucket = iota
	// BucketUnread is the sticky "Unread" section.
	BucketUnread
	// BucketLatest is the derived "Latest" section.
	BucketLatest
)

// String returns the section label for the bucket.
func (b Bucket) String() string {
	switch b {
	case BucketUnread:
		return "Unread"
	case BucketLatest:
		return "Latest"
	default:
		return "none"
	}
}

// State is the partition of a feed into its two display buckets.
// Unread and Latest never share an id.
type State struct {
	Unread []domain.Notification
	Latest []domain.Notification
}

// Len returns the number of records across both buckets.
func (s State) Len() int {
	return len(s.Unread) + len(s.Latest)
}

// IsEmpty reports whether both buckets are empty.
func (s State) IsEmpty() bool {
	return s.Len() == 0
}

// Clone returns a deep copy of the bucket slices.
func (s State) Clone() State {
	return State{
		Unread: cloneNotifications(s.Unread),
		Latest: cloneNotifications(s.Latest),
	}
}

// Merge folds an upstream record list into the previous partition.
//
// Membership in Unread is sticky: once an id is in prev.Unread it stays there
// at the same position, and only its read flag is carried forward. Unread
// records not seen before are appended in discovery order. When an id
// repeats within incoming, only its first occurrence counts. Latest is every
// upstream record that did not end up in Unread. Records without an id are
// dropped from both buckets. prev is never mutated.
func Merge(prev State, incoming []domain.Notification) State {
	unread := cloneNotifications(prev.Unread)
	position := make(map[string]int, len(unread)+len(incoming))
	for i, n := range unread {
		position[n.ID] = i
	}

	delivered := make(map[string]struct{}, len(incoming))
	for _, n := range incoming {
		if !n.Valid() {
			continue
		}
		// the first occurrence of an id in a delivery decides its bucket
		if _, dup := delivered[n.ID]; dup {
			continue
		}
		delivered[n.ID] = struct{}{}
		if i, tracked := position[n.ID]; tracked {
			if n.IsRead {
				unread[i].IsRead = true
			}
			continue
		}
		if !n.IsRead {
			position[n.ID] = len(unread)
			unread = append(unread, n)
		}
	}

	latest := make([]domain.Notification, 0, len(incoming))
	seen := make(map[string]struct{}, len(incoming))
	for _, n := range incoming {
		if !n.Valid() {
			continue
		}
		if _, inUnread := position[n.ID]; inUnread {
			continue
		}
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		latest = append(latest, n)
	}

	return State{Unread: unread, Latest: latest}
}

// Partitioner applies Merge across successive upstream deliveries for one scope.
type Partitioner struct {
	scope domain.Scope
	state State
}

// NewPartitioner creates an empty partitioner bound to scope.
func NewPartitioner(scope domain.Scope) *Partitioner {
	return &Partitioner{scope: scope}
}

// Scope returns the scope the current partition belongs to.
func (p *Partitioner) Scope() domain.Scope {
	return p.scope
}

// Reset clears both buckets and rebinds the partitioner to scope.
func (p *Partitioner) Reset(scope domain.Scope) {
	p.scope = scope
	p.state = State{}
}

// Apply folds incoming into the partition. A different scope is a hard
// reset before the fold, never a merge.
func (p *Partitioner) Apply(scope domain.Scope, incoming []domain.Notification) State {
	if scope != p.scope {
		p.Reset(scope)
	}
	p.state = Merge(p.state, incoming)
	return p.State()
}

// State returns a copy of the current partition.
func (p *Partitioner) State() State {
	return p.state.Clone()
}

// Target identifies the item the visibility trigger is attached to.
type Target struct {
	Bucket Bucket
	Index  int
	ID     string
}

// OK reports whether the target points at an item.
func (t Target) OK() bool {
	return t.Bucket != BucketNone
}

// OnlyUnreadVisible reports whether the unread bucket is the last one on screen.
func OnlyUnreadVisible(s State) bool {
	return len(s.Latest) == 0 && len(s.Unread) > 0
}

// TriggerTarget returns the last rendered item: the tail of Latest, or the
// tail of Unread when Latest is empty.
func TriggerTarget(s State) Target {
	if OnlyUnreadVisible(s) {
		last := len(s.Unread) - 1
		return Target{Bucket: BucketUnread, Index: last, ID: s.Unread[last].ID}
	}
	if len(s.Latest) > 0 {
		last := len(s.Latest) - 1
		return Target{Bucket: BucketLatest, Index: last, ID: s.Latest[last].ID}
	}
	return Target{}
}

// Sections describes which section headers a view should render.
type Sections struct {
	Unread bool
	Latest bool
}

// VisibleSections returns the headers to render. Headers are hidden for
// empty buckets and while a page is loading.
func VisibleSections(s State, loading bool) Sections {
	if loading {
		return Sections{}
	}
	return Sections{
		Unread: len(s.Unread) > 0,
		Latest: len(s.Latest) > 0,
	}
}

func cloneNotifications(in []domain.Notification) []domain.Notification {
	if len(in) == 0 {
		return []domain.Notification{}
	}
	out := make([]domain.Notification, len(in))
	copy(out, in)
	return out
}
