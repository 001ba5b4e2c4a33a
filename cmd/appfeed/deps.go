package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/cristianoliveira/appfeed/internal/config"
	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/retention"
	"github.com/cristianoliveira/appfeed/internal/storage"
)

// store is shared by every command. It opens on first use, after the root
// command has loaded the configuration.
var store = newLazyStore(storage.NewFromConfig)

// currentAccount resolves the account commands act for.
var currentAccount = func() (string, error) {
	account := config.Get("account", "")
	if account == "" && storage.BackendFromConfig() == storage.BackendSQLite {
		return "", fmt.Errorf("account is not configured: set account in config.toml or pass --account")
	}
	return account, nil
}

type lazyStore struct {
	mu    sync.Mutex
	open  func() (storage.Storage, error)
	store storage.Storage
}

func newLazyStore(open func() (storage.Storage, error)) *lazyStore {
	return &lazyStore{open: open}
}

func (l *lazyStore) get() (storage.Storage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		s, err := l.open()
		if err != nil {
			return nil, err
		}
		l.store = s
	}
	return l.store, nil
}

func (l *lazyStore) FetchPage(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	s, err := l.get()
	if err != nil {
		return domain.Page{}, err
	}
	return s.FetchPage(ctx, req)
}

func (l *lazyStore) MarkRead(ctx context.Context, scope domain.Scope, id string) error {
	s, err := l.get()
	if err != nil {
		return err
	}
	return s.MarkRead(ctx, scope, id)
}

func (l *lazyStore) MarkAllRead(ctx context.Context, scope domain.Scope) (int64, error) {
	s, err := l.get()
	if err != nil {
		return 0, err
	}
	return s.MarkAllRead(ctx, scope)
}

func (l *lazyStore) GetSubscription(ctx context.Context, account, appDomain string) (*domain.Subscription, error) {
	s, err := l.get()
	if err != nil {
		return nil, err
	}
	return s.GetSubscription(ctx, account, appDomain)
}

func (l *lazyStore) ListSubscriptions(ctx context.Context, account string) ([]domain.Subscription, error) {
	s, err := l.get()
	if err != nil {
		return nil, err
	}
	return s.ListSubscriptions(ctx, account)
}

func (l *lazyStore) AddNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	s, err := l.get()
	if err != nil {
		return domain.Notification{}, err
	}
	return s.AddNotification(ctx, n)
}

func (l *lazyStore) UpsertSubscription(ctx context.Context, account string, sub domain.Subscription) error {
	s, err := l.get()
	if err != nil {
		return err
	}
	return s.UpsertSubscription(ctx, account, sub)
}

// CleanupRead is only available on the local database.
func (l *lazyStore) CleanupRead(ctx context.Context, olderThanDays int, dryRun bool) (int64, error) {
	s, err := l.get()
	if err != nil {
		return 0, err
	}
	cleaner, ok := s.(retention.Cleaner)
	if !ok {
		return 0, fmt.Errorf("cleanup needs the local sqlite backend; run it where the server runs")
	}
	return cleaner.CleanupRead(ctx, olderThanDays, dryRun)
}

// Close releases the store if it was ever opened.
func (l *lazyStore) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}

func scopeFor(account, appDomain string) domain.Scope {
	return domain.Scope{Account: account, AppDomain: appDomain}
}
