package domain

import (
	"context"
	"errors"
)

var (
	// ErrNotificationNotFound is returned when a notification is not found.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrSubscriptionNotFound is returned when an account has no subscription for a domain.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrInvalidCursor is returned when a page cursor cannot be decoded.
	ErrInvalidCursor = errors.New("invalid page cursor")

	// ErrMissingID is returned when a notification has no identifier.
	ErrMissingID = errors.New("notification id cannot be empty")

	// ErrInvalidNotification is returned when a notification fails validation.
	ErrInvalidNotification = errors.New("invalid notification")

	// ErrDuplicateNotification is returned when a notification id is already taken.
	ErrDuplicateNotification = errors.New("notification already exists")

	// ErrUnauthorized is returned when a caller has no valid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when a caller exceeded its request budget.
	ErrRateLimited = errors.New("rate limited")
)

// DefaultPageSize is used when a page request does not specify a limit.
const DefaultPageSize = 20

// MaxPageSize caps the number of records a single page may carry.
const MaxPageSize = 100

// PageRequest asks a source for one page of a feed.
// An empty Cursor requests the first page.
type PageRequest struct {
	Scope  Scope
	Cursor string
	Limit  int
}

// NormalizedLimit clamps Limit into [1, MaxPageSize], defaulting to DefaultPageSize.
func (r PageRequest) NormalizedLimit() int {
	switch {
	case r.Limit <= 0:
		return DefaultPageSize
	case r.Limit > MaxPageSize:
		return MaxPageSize
	default:
		return r.Limit
	}
}

// Page is one slice of a feed as delivered by a source.
type Page struct {
	Notifications []Notification `json:"notifications"`
	// NextCursor is empty when the source has no further pages.
	NextCursor string `json:"next_cursor,omitempty"`
}

// HasMore reports whether another page can be requested after this one.
func (p Page) HasMore() bool {
	return p.NextCursor != ""
}

// PageSource is the paginated notification source a feed reads from.
type PageSource interface {
	FetchPage(ctx context.Context, req PageRequest) (Page, error)
}

// ReadMarker flips notifications to read on the source side.
type ReadMarker interface {
	MarkRead(ctx context.Context, scope Scope, id string) error
	MarkAllRead(ctx context.Context, scope Scope) (int64, error)
}

// SubscriptionLookup resolves application metadata for an account.
type SubscriptionLookup interface {
	GetSubscription(ctx context.Context, account, appDomain string) (*Subscription, error)
	ListSubscriptions(ctx context.Context, account string) ([]Subscription, error)
}

// FeedBackend bundles everything an interactive feed needs from a source.
type FeedBackend interface {
	PageSource
	ReadMarker
	SubscriptionLookup
}
