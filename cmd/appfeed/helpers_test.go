package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"

	"github.com/cristianoliveira/appfeed/internal/colors"
	"github.com/cristianoliveira/appfeed/internal/config"
	"github.com/cristianoliveira/appfeed/internal/domain"
)

// fakeClient records calls and serves notifications from memory, paging by
// offset.
type fakeClient struct {
	records  []domain.Notification
	subs     []domain.Subscription
	fetchErr error

	requests     []domain.PageRequest
	added        []domain.Notification
	marked       []string
	markedAll    []domain.Scope
	upserted     []domain.Subscription
	upsertedFor  string
	cleanupDays  int
	cleanupDry   bool
	cleanupCount int64
	closed       int
}

func (f *fakeClient) FetchPage(_ context.Context, req domain.PageRequest) (domain.Page, error) {
	f.requests = append(f.requests, req)
	if f.fetchErr != nil {
		return domain.Page{}, f.fetchErr
	}
	start := 0
	if req.Cursor != "" {
		start, _ = strconv.Atoi(req.Cursor)
	}
	end := min(start+req.NormalizedLimit(), len(f.records))
	page := domain.Page{Notifications: append([]domain.Notification(nil), f.records[start:end]...)}
	if end < len(f.records) {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}

func (f *fakeClient) MarkRead(_ context.Context, _ domain.Scope, id string) error {
	for _, n := range f.records {
		if n.ID == id {
			f.marked = append(f.marked, id)
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (f *fakeClient) MarkAllRead(_ context.Context, scope domain.Scope) (int64, error) {
	f.markedAll = append(f.markedAll, scope)
	return int64(len(f.records)), nil
}

func (f *fakeClient) GetSubscription(_ context.Context, _, appDomain string) (*domain.Subscription, error) {
	for _, sub := range f.subs {
		if sub.AppDomain == appDomain {
			sub := sub
			return &sub, nil
		}
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (f *fakeClient) ListSubscriptions(context.Context, string) ([]domain.Subscription, error) {
	return f.subs, nil
}

func (f *fakeClient) AddNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	if strings.TrimSpace(n.ID) == "" {
		n.ID = "generated-1"
	}
	if err := n.Validate(); err != nil {
		return domain.Notification{}, err
	}
	f.added = append(f.added, n)
	return n, nil
}

func (f *fakeClient) UpsertSubscription(_ context.Context, account string, sub domain.Subscription) error {
	f.upsertedFor = account
	f.upserted = append(f.upserted, sub)
	return nil
}

func (f *fakeClient) CleanupRead(_ context.Context, days int, dryRun bool) (int64, error) {
	f.cleanupDays = days
	f.cleanupDry = dryRun
	return f.cleanupCount, nil
}

func (f *fakeClient) Close() error {
	f.closed++
	return nil
}

// lockedBuffer is a bytes.Buffer safe for writers on other goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type result struct {
	stdout  string
	console string
	err     error
}

// execute runs c with args. stdout is what the command wrote to its own
// writer; console is everything printed through the colors package.
func execute(t *testing.T, c *cobra.Command, args ...string) result {
	t.Helper()
	return executeContext(t, context.Background(), c, args...)
}

func executeContext(t *testing.T, ctx context.Context, c *cobra.Command, args ...string) result {
	t.Helper()
	var out bytes.Buffer
	console := &lockedBuffer{}
	restore := colors.SetOutput(console, console)
	defer restore()

	c.SetOut(&out)
	c.SetErr(console)
	c.SetArgs(args)
	err := c.ExecuteContext(ctx)
	return result{stdout: out.String(), console: console.String(), err: err}
}

// withAccount makes commands act for account for the rest of the test.
func withAccount(t *testing.T, account string) {
	t.Helper()
	prev := currentAccount
	currentAccount = func() (string, error) { return account, nil }
	t.Cleanup(func() { currentAccount = prev })
}

// withConfig sets a configuration value for the rest of the test.
func withConfig(t *testing.T, key, value string) {
	t.Helper()
	prev := config.Get(key, "")
	config.Set(key, value)
	t.Cleanup(func() { config.Set(key, prev) })
}
