package sqlite

import (
	"context"
	"fmt"
)

// CleanupRead removes notifications read more than olderThanDays days ago
// and returns how many were (or, with dryRun, would be) removed. Zero days
// removes every read notification. Unread notifications are never removed.
func (s *SQLiteStorage) CleanupRead(ctx context.Context, olderThanDays int, dryRun bool) (int64, error) {
	if olderThanDays < 0 {
		return 0, fmt.Errorf("sqlite storage: %w", ErrInvalidThreshold)
	}
	cutoff := s.now().UTC().AddDate(0, 0, -olderThanDays).Format(timestampLayout)
	if olderThanDays == 0 {
		// read_at is never later than now, so the upper bound covers them all
		cutoff = "9999-12-31T23:59:59Z"
	}

	const where = `WHERE is_read = 1 AND read_at != '' AND read_at < ?`
	if dryRun {
		var count int64
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications `+where, cutoff).Scan(&count); err != nil {
			return 0, fmt.Errorf("sqlite storage: count notifications for cleanup: %w", err)
		}
		return count, nil
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM notifications `+where, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sqlite storage: cleanup read notifications: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite storage: read rows affected: %w", err)
	}
	return deleted, nil
}
