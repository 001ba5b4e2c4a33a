package sqlite

import (
	"errors"
	"fmt"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

var (
	// ErrNotificationExists indicates a notification with the same ID is already stored.
	ErrNotificationExists = fmt.Errorf("sqlite storage: %w", domain.ErrDuplicateNotification)
	// ErrInvalidThreshold indicates a negative retention threshold.
	ErrInvalidThreshold = errors.New("days threshold must be >= 0")
)
