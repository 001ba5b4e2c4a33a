// Package domain provides the domain layer for notifications.
// It contains the feed records, scopes, subscription metadata and the
// boundary interfaces that notification sources implement.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Notification represents a single notification record delivered by a source.
// Everything except IsRead is immutable once created.
type Notification struct {
	ID        string    `json:"id" yaml:"id"`
	Account   string    `json:"account,omitempty" yaml:"account,omitempty"`
	AppDomain string    `json:"app_domain,omitempty" yaml:"app_domain,omitempty"`
	Type      string    `json:"type,omitempty" yaml:"type,omitempty"`
	Title     string    `json:"title" yaml:"title"`
	Body      string    `json:"body" yaml:"body"`
	URL       string    `json:"url,omitempty" yaml:"url,omitempty"`
	SentAt    time.Time `json:"sent_at" yaml:"sent_at"`
	IsRead    bool      `json:"is_read" yaml:"is_read"`
}

// Valid reports whether the record carries a usable identifier.
// Records failing this check are never placed in a feed bucket.
func (n Notification) Valid() bool {
	return strings.TrimSpace(n.ID) != ""
}

// MarkRead returns a copy of the notification flagged as read.
// Read status only moves forward; there is no way back to unread.
func (n Notification) MarkRead() Notification {
	n.IsRead = true
	return n
}

// Scope returns the feed scope the notification belongs to.
func (n Notification) Scope() Scope {
	return Scope{Account: n.Account, AppDomain: n.AppDomain}
}

// Validate validates the notification and returns an error if invalid.
func (n Notification) Validate() error {
	if !n.Valid() {
		return ErrMissingID
	}
	if strings.TrimSpace(n.AppDomain) == "" {
		return fmt.Errorf("notification %s: %w: app domain cannot be empty", n.ID, ErrInvalidNotification)
	}
	if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Body) == "" {
		return fmt.Errorf("notification %s: %w: title and body cannot both be empty", n.ID, ErrInvalidNotification)
	}
	if n.SentAt.IsZero() {
		return fmt.Errorf("notification %s: %w: sent_at cannot be empty", n.ID, ErrInvalidNotification)
	}
	return nil
}

// Scope identifies a feed: one account looking at one application's stream.
// Switching scope invalidates all accumulated feed state.
type Scope struct {
	Account   string
	AppDomain string
}

// IsZero reports whether the scope is unset.
func (s Scope) IsZero() bool {
	return s.Account == "" && s.AppDomain == ""
}

// String returns the account@domain representation of the scope.
func (s Scope) String() string {
	if s.Account == "" {
		return s.AppDomain
	}
	return s.Account + "@" + s.AppDomain
}

// Validate validates that the scope names an application.
func (s Scope) Validate() error {
	if strings.TrimSpace(s.AppDomain) == "" {
		return fmt.Errorf("invalid scope %q: app domain cannot be empty", s.String())
	}
	return nil
}
