package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validNotification() Notification {
	return Notification{
		ID:        "n-1",
		Account:   "0xabc",
		AppDomain: "gm.example.com",
		Type:      "promo",
		Title:     "gm",
		Body:      "good morning",
		SentAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNotification_Valid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"plain id", "42", true},
		{"uuid id", "6f1c8f2e-9d7b-4f55-9b0b-0e7a9a1c3d11", true},
		{"empty id", "", false},
		{"whitespace id", "   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Notification{ID: tt.id}
			assert.Equal(t, tt.want, n.Valid())
		})
	}
}

func TestNotification_MarkReadIsMonotonic(t *testing.T) {
	n := validNotification()
	read := n.MarkRead()

	assert.False(t, n.IsRead, "MarkRead must not mutate the receiver")
	assert.True(t, read.IsRead)
	assert.True(t, read.MarkRead().IsRead)
}

func TestNotification_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Notification)
		wantErr bool
	}{
		{"valid", func(*Notification) {}, false},
		{"missing id", func(n *Notification) { n.ID = "" }, true},
		{"missing domain", func(n *Notification) { n.AppDomain = " " }, true},
		{"title only", func(n *Notification) { n.Body = "" }, false},
		{"body only", func(n *Notification) { n.Title = "" }, false},
		{"no title or body", func(n *Notification) { n.Title, n.Body = "", "" }, true},
		{"zero sent_at", func(n *Notification) { n.SentAt = time.Time{} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := validNotification()
			tt.mutate(&n)
			err := n.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNotification_ValidateMissingIDIsSentinel(t *testing.T) {
	n := validNotification()
	n.ID = ""
	require.ErrorIs(t, n.Validate(), ErrMissingID)
}

func TestNotification_ValidateInvalidIsSentinel(t *testing.T) {
	n := validNotification()
	n.AppDomain = " "
	require.ErrorIs(t, n.Validate(), ErrInvalidNotification)
}

func TestScope(t *testing.T) {
	s := Scope{Account: "0xabc", AppDomain: "gm.example.com"}
	assert.Equal(t, "0xabc@gm.example.com", s.String())
	assert.False(t, s.IsZero())
	assert.NoError(t, s.Validate())

	assert.Equal(t, "gm.example.com", Scope{AppDomain: "gm.example.com"}.String())
	assert.True(t, Scope{}.IsZero())
	assert.Error(t, Scope{Account: "0xabc"}.Validate())

	assert.Equal(t, s, validNotification().Scope())
	assert.NotEqual(t, s, Scope{Account: "0xabc", AppDomain: "other.example.com"})
}

func TestPageRequest_NormalizedLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultPageSize},
		{-3, DefaultPageSize},
		{7, 7},
		{MaxPageSize, MaxPageSize},
		{MaxPageSize + 1, MaxPageSize},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PageRequest{Limit: tt.limit}.NormalizedLimit(), "limit %d", tt.limit)
	}
}

func TestPage_HasMore(t *testing.T) {
	assert.False(t, Page{}.HasMore())
	assert.True(t, Page{NextCursor: "abc"}.HasMore())
}
