package format

import (
	"fmt"
	"io"
	"time"

	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/feed"
)

const simpleSummaryWidth = 72

// SimpleFormatter prints each bucket under a heading, one line per notification.
type SimpleFormatter struct {
	now func() time.Time
}

// NewSimpleFormatter creates a new SimpleFormatter.
func NewSimpleFormatter() *SimpleFormatter {
	return &SimpleFormatter{now: time.Now}
}

// FormatFeed writes the Unread then the Latest section. Empty buckets get no heading.
func (f *SimpleFormatter) FormatFeed(state feed.State, w io.Writer) error {
	if state.IsEmpty() {
		_, err := fmt.Fprintln(w, "No notifications")
		return err
	}
	now := f.now()
	sections := []struct {
		title string
		items []domain.Notification
	}{
		{"Unread", state.Unread},
		{"Latest", state.Latest},
	}
	first := true
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		if !first {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		first = false
		if _, err := fmt.Fprintf(w, "%s (%d)\n", section.title, len(section.items)); err != nil {
			return err
		}
		for _, n := range section.items {
			if _, err := fmt.Fprintf(w, "%s %s  %s  %s\n",
				readMarker(n), n.ID, age(n.SentAt, now), truncateString(summary(n), simpleSummaryWidth)); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatSubscriptions writes one "domain  name" line per subscription.
func (f *SimpleFormatter) FormatSubscriptions(subs []domain.Subscription, w io.Writer) error {
	if len(subs) == 0 {
		_, err := fmt.Fprintln(w, "No subscriptions")
		return err
	}
	for _, sub := range subs {
		if _, err := fmt.Fprintf(w, "%s  %s\n", sub.AppDomain, sub.DisplayName()); err != nil {
			return err
		}
	}
	return nil
}
