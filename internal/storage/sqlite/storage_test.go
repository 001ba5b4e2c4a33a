package sqlite

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

var (
	gmScope    = domain.Scope{Account: "0xabc", AppDomain: "gm.example.com"}
	otherScope = domain.Scope{Account: "0xabc", AppDomain: "other.example.com"}
	baseTime   = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "notifications.db")
	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}

func add(t *testing.T, s *SQLiteStorage, scope domain.Scope, id string, sentAt time.Time, read bool) domain.Notification {
	t.Helper()
	n, err := s.AddNotification(context.Background(), domain.Notification{
		ID:        id,
		Account:   scope.Account,
		AppDomain: scope.AppDomain,
		Type:      "promo",
		Title:     "title " + id,
		Body:      "body " + id,
		SentAt:    sentAt,
		IsRead:    read,
	})
	require.NoError(t, err)
	return n
}

func pageIDs(p domain.Page) []string {
	out := make([]string, 0, len(p.Notifications))
	for _, n := range p.Notifications {
		out = append(out, n.ID)
	}
	return out
}

func TestNewSQLiteStorageRejectsEmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	require.Error(t, err)
}

func TestAddAndGetNotification(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	added := add(t, s, gmScope, "n-1", baseTime, false)
	got, err := s.GetNotification(ctx, gmScope, "n-1")
	require.NoError(t, err)
	assert.Equal(t, added, got)
	assert.Equal(t, baseTime, got.SentAt)

	_, err = s.GetNotification(ctx, otherScope, "n-1")
	require.ErrorIs(t, err, domain.ErrNotificationNotFound)
}

func TestAddNotificationDefaults(t *testing.T) {
	s := newTestStorage(t)
	s.now = func() time.Time { return baseTime }

	n, err := s.AddNotification(context.Background(), domain.Notification{AppDomain: gmScope.AppDomain, Title: "hi"})
	require.NoError(t, err)
	assert.Len(t, n.ID, 36, "generated id should be a uuid")
	assert.Equal(t, baseTime, n.SentAt)
}

func TestAddNotificationErrors(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	add(t, s, gmScope, "dup", baseTime, false)

	_, err := s.AddNotification(ctx, domain.Notification{ID: "dup", Account: gmScope.Account, AppDomain: gmScope.AppDomain, Title: "again"})
	require.ErrorIs(t, err, ErrNotificationExists)

	_, err = s.AddNotification(ctx, domain.Notification{AppDomain: gmScope.AppDomain})
	require.Error(t, err, "title and body both empty")

	_, err = s.AddNotification(ctx, domain.Notification{Title: "no domain"})
	require.Error(t, err)
}

func TestAddNotificationIDsAreScopedToFeed(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	otherAccount := domain.Scope{Account: "0xdef", AppDomain: gmScope.AppDomain}

	add(t, s, gmScope, "shared", baseTime, false)
	add(t, s, otherScope, "shared", baseTime, true)
	add(t, s, otherAccount, "shared", baseTime, false)

	for _, scope := range []domain.Scope{gmScope, otherScope, otherAccount} {
		page, err := s.FetchPage(ctx, domain.PageRequest{Scope: scope})
		require.NoError(t, err)
		assert.Equal(t, []string{"shared"}, pageIDs(page), scope.String())
	}

	require.NoError(t, s.MarkRead(ctx, gmScope, "shared"))
	n, err := s.GetNotification(ctx, otherAccount, "shared")
	require.NoError(t, err)
	assert.False(t, n.IsRead, "marking one feed must not touch another")
}

func TestFetchPageKeyset(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	// n4 and n3 share a timestamp; ties break on id descending.
	add(t, s, gmScope, "n1", baseTime.Add(1*time.Minute), false)
	add(t, s, gmScope, "n2", baseTime.Add(2*time.Minute), true)
	add(t, s, gmScope, "n3", baseTime.Add(3*time.Minute), false)
	add(t, s, gmScope, "n4", baseTime.Add(3*time.Minute), false)
	add(t, s, gmScope, "n5", baseTime.Add(5*time.Minute), true)
	add(t, s, otherScope, "x1", baseTime.Add(9*time.Minute), false)

	first, err := s.FetchPage(ctx, domain.PageRequest{Scope: gmScope, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"n5", "n4"}, pageIDs(first))
	require.True(t, first.HasMore())

	// a record added while paging lands ahead of the cursor and does not shift pages
	add(t, s, gmScope, "n6", baseTime.Add(6*time.Minute), false)

	second, err := s.FetchPage(ctx, domain.PageRequest{Scope: gmScope, Cursor: first.NextCursor, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"n3", "n2"}, pageIDs(second))
	require.True(t, second.HasMore())

	third, err := s.FetchPage(ctx, domain.PageRequest{Scope: gmScope, Cursor: second.NextCursor, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1"}, pageIDs(third))
	assert.False(t, third.HasMore())

	assert.True(t, second.Notifications[1].IsRead)
	assert.False(t, second.Notifications[0].IsRead)
}

func TestFetchPageExactMultipleHasNoTrailingCursor(t *testing.T) {
	s := newTestStorage(t)
	add(t, s, gmScope, "a", baseTime, false)
	add(t, s, gmScope, "b", baseTime.Add(time.Second), false)

	page, err := s.FetchPage(context.Background(), domain.PageRequest{Scope: gmScope, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 2)
	assert.False(t, page.HasMore())
}

func TestFetchPageEmptyScope(t *testing.T) {
	s := newTestStorage(t)
	page, err := s.FetchPage(context.Background(), domain.PageRequest{Scope: gmScope})
	require.NoError(t, err)
	assert.NotNil(t, page.Notifications)
	assert.Empty(t, page.Notifications)
	assert.False(t, page.HasMore())
}

func TestFetchPageInvalidCursor(t *testing.T) {
	s := newTestStorage(t)
	tests := []string{"!!!", encodeRaw("no-separator"), encodeRaw("abc:n1"), encodeRaw("123:")}
	for _, cursor := range tests {
		t.Run(cursor, func(t *testing.T) {
			_, err := s.FetchPage(context.Background(), domain.PageRequest{Scope: gmScope, Cursor: cursor})
			require.ErrorIs(t, err, domain.ErrInvalidCursor)
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	key := pageKey{sentAt: baseTime.UnixNano(), id: "id:with:colons"}
	got, err := decodeCursor(encodeCursor(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestMarkRead(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	add(t, s, gmScope, "n1", baseTime, false)

	s.now = func() time.Time { return baseTime.Add(time.Hour) }
	require.NoError(t, s.MarkRead(ctx, gmScope, "n1"))
	s.now = func() time.Time { return baseTime.Add(2 * time.Hour) }
	require.NoError(t, s.MarkRead(ctx, gmScope, "n1"), "marking twice is a no-op")

	var readAt string
	require.NoError(t, s.db.QueryRow(`SELECT read_at FROM notifications WHERE id = 'n1'`).Scan(&readAt))
	assert.Equal(t, "2026-03-01T13:00:00Z", readAt, "read_at keeps the first read time")

	got, err := s.GetNotification(ctx, gmScope, "n1")
	require.NoError(t, err)
	assert.True(t, got.IsRead)

	require.ErrorIs(t, s.MarkRead(ctx, gmScope, "missing"), domain.ErrNotificationNotFound)
	require.ErrorIs(t, s.MarkRead(ctx, otherScope, "n1"), domain.ErrNotificationNotFound)
	require.ErrorIs(t, s.MarkRead(ctx, gmScope, ""), domain.ErrMissingID)
}

func TestMarkAllReadAndCountUnread(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	add(t, s, gmScope, "n1", baseTime, false)
	add(t, s, gmScope, "n2", baseTime, true)
	add(t, s, gmScope, "n3", baseTime, false)
	add(t, s, otherScope, "x1", baseTime, false)

	count, err := s.CountUnread(ctx, gmScope)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	changed, err := s.MarkAllRead(ctx, gmScope)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	count, err = s.CountUnread(ctx, gmScope)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = s.CountUnread(ctx, otherScope)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCleanupRead(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	add(t, s, gmScope, "old", baseTime, false)
	add(t, s, gmScope, "recent", baseTime, false)
	add(t, s, gmScope, "unread", baseTime, false)

	s.now = func() time.Time { return baseTime }
	require.NoError(t, s.MarkRead(ctx, gmScope, "old"))
	s.now = func() time.Time { return baseTime.AddDate(0, 0, 9) }
	require.NoError(t, s.MarkRead(ctx, gmScope, "recent"))
	s.now = func() time.Time { return baseTime.AddDate(0, 0, 10) }

	n, err := s.CleanupRead(ctx, 5, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = s.GetNotification(ctx, gmScope, "old")
	require.NoError(t, err, "dry run must not delete")

	n, err = s.CleanupRead(ctx, 5, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = s.GetNotification(ctx, gmScope, "old")
	require.ErrorIs(t, err, domain.ErrNotificationNotFound)

	n, err = s.CleanupRead(ctx, 0, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = s.GetNotification(ctx, gmScope, "unread")
	require.NoError(t, err, "unread notifications are kept")

	_, err = s.CleanupRead(ctx, -1, false)
	require.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestSubscriptions(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetSubscription(ctx, "0xabc", "gm.example.com")
	require.ErrorIs(t, err, domain.ErrSubscriptionNotFound)

	sub := domain.Subscription{
		AppDomain: "gm.example.com",
		Name:      "GM",
		Icons:     []string{"https://gm.example.com/icon.png"},
		Scope: map[string]domain.ScopeEntry{
			"promo": {Name: "Promotions", ImageURLs: domain.ImageURLs{MD: "https://gm.example.com/promo.png"}},
		},
	}
	require.NoError(t, s.UpsertSubscription(ctx, "0xabc", sub))
	require.NoError(t, s.UpsertSubscription(ctx, "0xabc", domain.Subscription{AppDomain: "alpha.example.com"}))
	require.NoError(t, s.UpsertSubscription(ctx, "0xdef", domain.Subscription{AppDomain: "gm.example.com"}))

	got, err := s.GetSubscription(ctx, "0xabc", "gm.example.com")
	require.NoError(t, err)
	assert.Equal(t, sub, *got)
	assert.Equal(t, "https://gm.example.com/promo.png", got.ImageFor("promo"))

	sub.Name = "GM renamed"
	require.NoError(t, s.UpsertSubscription(ctx, "0xabc", sub))
	got, err = s.GetSubscription(ctx, "0xabc", "gm.example.com")
	require.NoError(t, err)
	assert.Equal(t, "GM renamed", got.Name)

	subs, err := s.ListSubscriptions(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "alpha.example.com", subs[0].AppDomain)
	assert.Equal(t, "gm.example.com", subs[1].AppDomain)

	subs, err = s.ListSubscriptions(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, subs)

	require.Error(t, s.UpsertSubscription(ctx, "0xabc", domain.Subscription{}))
}

func encodeRaw(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}
