// Package storage selects the notification store appfeed commands work against.
package storage

import (
	"context"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

// Storage is a notification source that can also be written to.
type Storage interface {
	domain.FeedBackend
	AddNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
	UpsertSubscription(ctx context.Context, account string, sub domain.Subscription) error
	Close() error
}
