// Package format provides output formatting functionality for CLI commands.
// A feed is always rendered as its two buckets, unread first.
package format

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/feed"
)

// Formatter defines the interface for output formatters.
type Formatter interface {
	// FormatFeed writes the partitioned feed.
	FormatFeed(state feed.State, writer io.Writer) error

	// FormatSubscriptions writes a list of subscriptions.
	FormatSubscriptions(subs []domain.Subscription, writer io.Writer) error
}

// FormatterType represents the type of formatter to use.
type FormatterType string

const (
	// FormatterTypeSimple prints one line per notification under section headings.
	FormatterTypeSimple FormatterType = "simple"

	// FormatterTypeTable prints a fixed-width table with a bucket column.
	FormatterTypeTable FormatterType = "table"

	// FormatterTypeJSON prints {"unread": [...], "latest": [...]}.
	FormatterTypeJSON FormatterType = "json"

	// FormatterTypeYAML prints the same document as JSON in YAML.
	FormatterTypeYAML FormatterType = "yaml"
)

// Types lists every supported formatter type.
var Types = []FormatterType{FormatterTypeSimple, FormatterTypeTable, FormatterTypeJSON, FormatterTypeYAML}

// ParseType validates a formatter name.
func ParseType(name string) (FormatterType, error) {
	t := FormatterType(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of simple, table, json, yaml)", name)
}

// NewFormatter creates a new formatter of the specified type.
func NewFormatter(formatterType FormatterType) Formatter {
	switch formatterType {
	case FormatterTypeTable:
		return NewTableFormatter()
	case FormatterTypeJSON:
		return NewJSONFormatter()
	case FormatterTypeYAML:
		return NewYAMLFormatter()
	default:
		return NewSimpleFormatter()
	}
}

// document is the structured form shared by the JSON and YAML formatters.
type document struct {
	Unread []domain.Notification `json:"unread" yaml:"unread"`
	Latest []domain.Notification `json:"latest" yaml:"latest"`
}

func newDocument(state feed.State) document {
	doc := document{Unread: state.Unread, Latest: state.Latest}
	if doc.Unread == nil {
		doc.Unread = []domain.Notification{}
	}
	if doc.Latest == nil {
		doc.Latest = []domain.Notification{}
	}
	return doc
}

type subscriptionDocument struct {
	Subscriptions []domain.Subscription `json:"subscriptions" yaml:"subscriptions"`
}

func newSubscriptionDocument(subs []domain.Subscription) subscriptionDocument {
	if subs == nil {
		subs = []domain.Subscription{}
	}
	return subscriptionDocument{Subscriptions: subs}
}

// age renders t relative to now, e.g. "3 minutes ago".
func age(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// readMarker is the one-column read state shown next to each row.
func readMarker(n domain.Notification) string {
	if n.IsRead {
		return " "
	}
	return "*"
}

// summary joins title and body into one line.
func summary(n domain.Notification) string {
	title := strings.TrimSpace(n.Title)
	body := strings.Join(strings.Fields(n.Body), " ")
	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + ": " + body
	}
}

// truncateString shortens s to width runes, adding "..." if truncated.
func truncateString(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width < 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// pad left-aligns s in a column of width runes, truncating when needed.
func pad(s string, width int) string {
	s = truncateString(s, width)
	return s + strings.Repeat(" ", width-utf8.RuneCountInString(s))
}
