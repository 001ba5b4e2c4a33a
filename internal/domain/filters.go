package domain

import (
	"fmt"
	"strings"
	"time"
)

// Filter holds display criteria for notifications. Zero fields match
// everything.
type Filter struct {
	Type  string
	Query string
	// Since keeps notifications sent at or after it.
	Since time.Time
}

// FilterOptions holds filter parameters as given on the command line.
type FilterOptions struct {
	Type      string
	Search    string
	NewerThan int // days
}

// ToFilter converts FilterOptions to a Filter relative to now.
func (fo FilterOptions) ToFilter(now time.Time) (Filter, error) {
	if fo.NewerThan < 0 {
		return Filter{}, fmt.Errorf("invalid newer-than: %d days", fo.NewerThan)
	}
	f := Filter{
		Type:  strings.TrimSpace(fo.Type),
		Query: strings.ToLower(strings.TrimSpace(fo.Search)),
	}
	if fo.NewerThan > 0 {
		f.Since = now.UTC().AddDate(0, 0, -fo.NewerThan)
	}
	return f, nil
}

// IsEmpty returns true if the filter has no criteria set.
func (f Filter) IsEmpty() bool {
	return f.Type == "" && f.Query == "" && f.Since.IsZero()
}

// FilterNotifications returns the notifications matching filter, keeping
// their order.
func FilterNotifications(notifs []Notification, filter Filter) []Notification {
	if filter.IsEmpty() {
		return notifs
	}

	result := make([]Notification, 0, len(notifs))
	for _, n := range notifs {
		if n.MatchesFilter(filter) {
			result = append(result, n)
		}
	}
	return result
}

// MatchesFilter reports whether n satisfies every criterion of filter.
// Query matches title or body, case-insensitively.
func (n Notification) MatchesFilter(filter Filter) bool {
	if filter.Type != "" && n.Type != filter.Type {
		return false
	}
	if !filter.Since.IsZero() && n.SentAt.Before(filter.Since) {
		return false
	}
	if filter.Query != "" &&
		!strings.Contains(strings.ToLower(n.Title), filter.Query) &&
		!strings.Contains(strings.ToLower(n.Body), filter.Query) {
		return false
	}
	return true
}
