package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/appfeed/internal/api"
	"github.com/cristianoliveira/appfeed/internal/client"
	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/logging"
	"github.com/cristianoliveira/appfeed/internal/storage/sqlite"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newStore(t *testing.T) *sqlite.SQLiteStorage {
	t.Helper()
	store, err := sqlite.NewSQLiteStorage(filepath.Join(t.TempDir(), "notifications.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newServer(t *testing.T, store Store, opts Options) *Server {
	t.Helper()
	if opts.Secret == "" {
		opts.Secret = testSecret
	}
	srv, err := New(store, opts)
	require.NoError(t, err)
	return srv
}

func token(t *testing.T, account string) string {
	t.Helper()
	tok, err := IssueToken(testSecret, account, time.Hour)
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, srv *Server, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(newStore(t), Options{})
	require.Error(t, err)
}

func TestHealthIsPublic(t *testing.T) {
	srv := newServer(t, newStore(t), Options{})
	w := do(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var h api.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, h.Version)
}

func TestAuthentication(t *testing.T) {
	srv := newServer(t, newStore(t), Options{})
	foreign, err := IssueToken("other-secret", "0xabc", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(testSecret, "0xabc", -time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + foreign},
		{"expired", "Bearer " + expired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)

			require.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, api.CodeUnauthorized, decodeError(t, w).Code)
		})
	}
}

func TestIssueToken(t *testing.T) {
	_, err := IssueToken("", "0xabc", time.Hour)
	require.Error(t, err)
	_, err = IssueToken(testSecret, " ", time.Hour)
	require.Error(t, err)

	tok := token(t, "0xabc")
	account, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", account)

	_, err = ParseToken("other", tok)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

// TestEndToEnd drives the API through the HTTP client against a real store.
func TestEndToEnd(t *testing.T) {
	srv := newServer(t, newStore(t), Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	c := client.New(ts.URL, token(t, "0xabc"))
	scope := domain.Scope{Account: "0xabc", AppDomain: "gm.example.com"}

	require.NoError(t, c.UpsertSubscription(ctx, "", domain.Subscription{
		AppDomain: scope.AppDomain,
		Name:      "GM",
		Scope: map[string]domain.ScopeEntry{
			"alert": {Name: "Alerts", ImageURLs: domain.ImageURLs{MD: "https://img/alert.png"}},
		},
	}))
	sub, err := c.GetSubscription(ctx, "", scope.AppDomain)
	require.NoError(t, err)
	assert.Equal(t, "https://img/alert.png", sub.ImageFor("alert"))

	subs, err := c.ListSubscriptions(ctx, "")
	require.NoError(t, err)
	require.Len(t, subs, 1)

	_, err = c.GetSubscription(ctx, "", "unknown.example.com")
	require.ErrorIs(t, err, domain.ErrSubscriptionNotFound)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"n1", "n2", "n3"} {
		created, err := c.AddNotification(ctx, domain.Notification{
			ID:        id,
			AppDomain: scope.AppDomain,
			Type:      "alert",
			Title:     "gm " + id,
			SentAt:    base.Add(time.Duration(i) * time.Minute),
			IsRead:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, "0xabc", created.Account)
		assert.False(t, created.IsRead)
	}

	_, err = c.AddNotification(ctx, domain.Notification{ID: "n1", AppDomain: scope.AppDomain, Title: "again", SentAt: base})
	require.ErrorIs(t, err, domain.ErrDuplicateNotification)
	_, err = c.AddNotification(ctx, domain.Notification{AppDomain: scope.AppDomain})
	require.ErrorIs(t, err, domain.ErrInvalidNotification)

	first, err := c.FetchPage(ctx, domain.PageRequest{Scope: scope, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Notifications, 2)
	assert.Equal(t, "n3", first.Notifications[0].ID)
	require.True(t, first.HasMore())

	second, err := c.FetchPage(ctx, domain.PageRequest{Scope: scope, Cursor: first.NextCursor, Limit: 2})
	require.NoError(t, err)
	require.Len(t, second.Notifications, 1)
	assert.Equal(t, "n1", second.Notifications[0].ID)
	assert.False(t, second.HasMore())

	_, err = c.FetchPage(ctx, domain.PageRequest{Scope: scope, Cursor: "%%%"})
	require.ErrorIs(t, err, domain.ErrInvalidCursor)

	require.NoError(t, c.MarkRead(ctx, scope, "n2"))
	require.ErrorIs(t, c.MarkRead(ctx, scope, "missing"), domain.ErrNotificationNotFound)

	updated, err := c.MarkAllRead(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	// another account sees nothing of 0xabc's feed
	other := client.New(ts.URL, token(t, "0xdef"))
	page, err := other.FetchPage(ctx, domain.PageRequest{Scope: scope})
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)
}

func TestBadRequests(t *testing.T) {
	srv := newServer(t, newStore(t), Options{})
	tok := token(t, "0xabc")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"limit not a number", http.MethodGet, "/api/v1/subscriptions/gm.example.com/notifications?limit=abc", nil},
		{"limit zero", http.MethodGet, "/api/v1/subscriptions/gm.example.com/notifications?limit=0", nil},
		{"domain mismatch", http.MethodPut, "/api/v1/subscriptions/gm.example.com", domain.Subscription{AppDomain: "other.example.com"}},
		{"bad json", http.MethodPost, "/api/v1/subscriptions/gm.example.com/notifications", "not an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, tt.method, tt.path, tok, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, api.CodeBadRequest, decodeError(t, w).Code)
		})
	}
}

func TestRateLimitPerAccount(t *testing.T) {
	srv := newServer(t, newStore(t), Options{RatePerSecond: 0.001, Burst: 2})
	alice, bob := token(t, "alice"), token(t, "bob")

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/subscriptions", alice, nil).Code)
	}
	w := do(t, srv, http.MethodGet, "/api/v1/subscriptions", alice, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, api.CodeRateLimited, decodeError(t, w).Code)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/api/v1/subscriptions", bob, nil).Code)
}

func TestLimiterSetSweepsIdleAccounts(t *testing.T) {
	clock := time.Now()
	set := newLimiterSet(1, 2)
	set.now = func() time.Time { return clock }
	set.lastSweep = clock

	busy := set.get("0xabc")
	require.True(t, busy.Allow())
	set.get("0xdef")
	assert.Equal(t, 2, set.size())

	// before the idle window nothing is dropped
	clock = clock.Add(limiterIdle / 2)
	set.get("0xabc")
	assert.Equal(t, 2, set.size())

	// 0xdef has been idle a full window; 0xabc was seen half a window ago
	clock = clock.Add(limiterIdle/2 + time.Second)
	set.get("0x123")
	assert.Equal(t, 2, set.size())
	assert.Same(t, busy, set.get("0xabc"))

	// a drained bucket is kept until it has refilled
	zero := newLimiterSet(0, 1)
	zero.now = func() time.Time { return clock }
	zero.lastSweep = clock
	require.True(t, zero.get("0xabc").Allow())
	clock = clock.Add(2 * limiterIdle)
	zero.get("0xdef")
	assert.Equal(t, 2, zero.size())
}

func TestRequestID(t *testing.T) {
	srv := newServer(t, newStore(t), Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))

	w = do(t, srv, http.MethodGet, "/api/v1/subscriptions", "", nil)
	generated := w.Header().Get(requestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, decodeError(t, w).RequestID)
}

type panickingStore struct {
	Store
}

func (panickingStore) ListSubscriptions(context.Context, string) ([]domain.Subscription, error) {
	panic("boom")
}

func TestRecoveryAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.Init(logging.Config{Enabled: true, Level: "debug", Console: &buf})
	require.NoError(t, err)

	srv := newServer(t, panickingStore{}, Options{Logger: logger})
	w := do(t, srv, http.MethodGet, "/api/v1/subscriptions", token(t, "0xabc"), nil)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, api.CodeInternal, resp.Code)
	assert.Equal(t, "internal server error", resp.Error)

	out := buf.String()
	assert.Contains(t, out, "panic while serving request")
	assert.Contains(t, out, "panic=boom")
	assert.Contains(t, out, "status=500")
	assert.Contains(t, out, "account=0xabc")
}
