package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/storage"
)

func TestRunExitCode(t *testing.T) {
	assert.Equal(t, 0, run(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, 1, run(context.Background(), func(context.Context) error { return errors.New("boom") }))
}

// remoteOnly hides CleanupRead, like the HTTP client.
type remoteOnly struct {
	storage.Storage
}

func TestLazyStoreOpensOnce(t *testing.T) {
	client := &fakeClient{records: sampleRecords()}
	opens := 0
	lazy := newLazyStore(func() (storage.Storage, error) {
		opens++
		return client, nil
	})
	require.NoError(t, lazy.Close())
	assert.Zero(t, opens)

	ctx := context.Background()
	scope := domain.Scope{Account: "0xabc", AppDomain: "gm.example.com"}
	page, err := lazy.FetchPage(ctx, domain.PageRequest{Scope: scope})
	require.NoError(t, err)
	assert.Len(t, page.Notifications, 3)
	require.NoError(t, lazy.MarkRead(ctx, scope, "n1"))
	_, err = lazy.MarkAllRead(ctx, scope)
	require.NoError(t, err)
	_, err = lazy.CleanupRead(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 1, opens)

	require.NoError(t, lazy.Close())
	assert.Equal(t, 1, client.closed)
}

func TestLazyStoreErrors(t *testing.T) {
	ctx := context.Background()
	lazy := newLazyStore(func() (storage.Storage, error) { return nil, errors.New("db locked") })
	_, err := lazy.ListSubscriptions(ctx, "0xabc")
	assert.EqualError(t, err, "db locked")
	_, err = lazy.AddNotification(ctx, domain.Notification{})
	assert.EqualError(t, err, "db locked")

	remote := newLazyStore(func() (storage.Storage, error) { return remoteOnly{&fakeClient{}}, nil })
	_, err = remote.CleanupRead(ctx, 30, false)
	assert.ErrorContains(t, err, "sqlite backend")
}

func TestCurrentAccount(t *testing.T) {
	withConfig(t, "server_url", "")
	withConfig(t, "account", "")
	_, err := currentAccount()
	assert.ErrorContains(t, err, "account is not configured")

	withConfig(t, "account", "0xabc")
	account, err := currentAccount()
	require.NoError(t, err)
	assert.Equal(t, "0xabc", account)

	// the server derives the account from the token
	withConfig(t, "account", "")
	withConfig(t, "server_url", "https://feeds.example.com")
	account, err = currentAccount()
	require.NoError(t, err)
	assert.Empty(t, account)
}
