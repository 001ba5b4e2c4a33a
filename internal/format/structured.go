package format

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/feed"
)

// JSONFormatter prints the feed as an indented JSON document.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// FormatFeed implements Formatter.
func (f *JSONFormatter) FormatFeed(state feed.State, w io.Writer) error {
	return writeJSON(w, newDocument(state))
}

// FormatSubscriptions implements Formatter.
func (f *JSONFormatter) FormatSubscriptions(subs []domain.Subscription, w io.Writer) error {
	return writeJSON(w, newSubscriptionDocument(subs))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAMLFormatter prints the feed as a YAML document.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAMLFormatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// FormatFeed implements Formatter.
func (f *YAMLFormatter) FormatFeed(state feed.State, w io.Writer) error {
	return writeYAML(w, newDocument(state))
}

// FormatSubscriptions implements Formatter.
func (f *YAMLFormatter) FormatSubscriptions(subs []domain.Subscription, w io.Writer) error {
	return writeYAML(w, newSubscriptionDocument(subs))
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
