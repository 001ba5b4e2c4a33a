package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/feed"
)

// TableColumn represents a column in a table.
type TableColumn struct {
	// Name is the column name displayed in the header.
	Name string

	// Width is the column width in characters.
	Width int

	// Extractor extracts the value from a row.
	Extractor func(row tableRow) string
}

type tableRow struct {
	bucket feed.Bucket
	n      domain.Notification
	now    time.Time
}

// TableFormatter prints notifications in a fixed-width table.
type TableFormatter struct {
	columns     []TableColumn
	headerColor string
	now         func() time.Time
}

// NewTableFormatter creates a TableFormatter with the default columns.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		headerColor: colors.Blue,
		now:         time.Now,
		columns: []TableColumn{
			{Name: "BUCKET", Width: 6, Extractor: func(r tableRow) string { return r.bucket.String() }},
			{Name: "ID", Width: 12, Extractor: func(r tableRow) string { return r.n.ID }},
			{Name: "R", Width: 1, Extractor: func(r tableRow) string { return readMarker(r.n) }},
			{Name: "SENT", Width: 16, Extractor: func(r tableRow) string { return age(r.n.SentAt, r.now) }},
			{Name: "TYPE", Width: 10, Extractor: func(r tableRow) string { return r.n.Type }},
			{Name: "MESSAGE", Width: 48, Extractor: func(r tableRow) string { return summary(r.n) }},
		},
	}
}

// WithColumns adds custom columns to the formatter.
func (f *TableFormatter) WithColumns(columns ...TableColumn) *TableFormatter {
	f.columns = append(f.columns, columns...)
	return f
}

// FormatFeed writes both buckets as one table, unread rows first.
func (f *TableFormatter) FormatFeed(state feed.State, w io.Writer) error {
	if state.IsEmpty() {
		_, err := fmt.Fprintln(w, "No notifications")
		return err
	}
	if err := f.writeHeader(w); err != nil {
		return err
	}
	now := f.now()
	for _, n := range state.Unread {
		if err := f.writeRow(w, tableRow{bucket: feed.BucketUnread, n: n, now: now}); err != nil {
			return err
		}
	}
	for _, n := range state.Latest {
		if err := f.writeRow(w, tableRow{bucket: feed.BucketLatest, n: n, now: now}); err != nil {
			return err
		}
	}
	return nil
}

func (f *TableFormatter) writeHeader(w io.Writer) error {
	cells := make([]string, len(f.columns))
	total := 0
	for i, col := range f.columns {
		cells[i] = pad(col.Name, col.Width)
		total += col.Width
	}
	total += 2 * (len(f.columns) - 1)
	header := strings.TrimRight(strings.Join(cells, "  "), " ")
	if _, err := fmt.Fprintf(w, "%s%s%s\n", f.headerColor, header, colors.Reset); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, strings.Repeat("-", total))
	return err
}

func (f *TableFormatter) writeRow(w io.Writer, row tableRow) error {
	cells := make([]string, len(f.columns))
	for i, col := range f.columns {
		cells[i] = pad(col.Extractor(row), col.Width)
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	return err
}

// FormatSubscriptions writes subscriptions as a DOMAIN/NAME/TYPES table.
func (f *TableFormatter) FormatSubscriptions(subs []domain.Subscription, w io.Writer) error {
	if len(subs) == 0 {
		_, err := fmt.Fprintln(w, "No subscriptions")
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%s  %s  %s%s\n", f.headerColor, pad("DOMAIN", 28), pad("NAME", 20), "TYPES", colors.Reset); err != nil {
		return err
	}
	for _, sub := range subs {
		line := fmt.Sprintf("%s  %s  %d", pad(sub.AppDomain, 28), pad(sub.DisplayName(), 20), len(sub.Scope))
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
