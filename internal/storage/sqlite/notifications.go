package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

const notificationColumns = `id, account, app_domain, type, title, body, url, sent_at, is_read`

// AddNotification stores n and returns it with its ID and SentAt filled in.
// An empty ID gets a random UUID; a zero SentAt becomes now.
func (s *SQLiteStorage) AddNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if strings.TrimSpace(n.ID) == "" {
		n.ID = uuid.NewString()
	}
	if n.SentAt.IsZero() {
		n.SentAt = s.now()
	}
	n.SentAt = n.SentAt.UTC()
	if err := n.Validate(); err != nil {
		return domain.Notification{}, fmt.Errorf("sqlite storage: add notification: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO notifications (id, account, app_domain, type, title, body, url, sent_at, is_read, read_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(account, app_domain, id) DO NOTHING`,
		n.ID, n.Account, n.AppDomain, n.Type, n.Title, n.Body, n.URL,
		n.SentAt.UnixNano(), boolToInt(n.IsRead), readAtFor(n.IsRead, s.utcNow()), s.utcNow())
	if err != nil {
		return domain.Notification{}, fmt.Errorf("sqlite storage: add notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Notification{}, fmt.Errorf("sqlite storage: read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.Notification{}, fmt.Errorf("add notification %s: %w", n.ID, ErrNotificationExists)
	}
	return n, nil
}

// GetNotification returns the notification with id inside scope.
func (s *SQLiteStorage) GetNotification(ctx context.Context, scope domain.Scope, id string) (domain.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ? AND account = ? AND app_domain = ?`,
		id, scope.Account, scope.AppDomain)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notification{}, fmt.Errorf("sqlite storage: get notification: %w: id %s", domain.ErrNotificationNotFound, id)
	}
	if err != nil {
		return domain.Notification{}, fmt.Errorf("sqlite storage: get notification: %w", err)
	}
	return n, nil
}

// FetchPage returns one page of the feed for req.Scope, newest first.
// Pages are keyed on (sent_at, id) so records added while paging never
// shift later pages.
func (s *SQLiteStorage) FetchPage(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	limit := req.NormalizedLimit()
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE account = ? AND app_domain = ?`
	args := []any{req.Scope.Account, req.Scope.AppDomain}
	if req.Cursor != "" {
		key, err := decodeCursor(req.Cursor)
		if err != nil {
			return domain.Page{}, err
		}
		query += ` AND (sent_at < ? OR (sent_at = ? AND id < ?))`
		args = append(args, key.sentAt, key.sentAt, key.id)
	}
	query += ` ORDER BY sent_at DESC, id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.Page{}, fmt.Errorf("sqlite storage: fetch page: %w", err)
	}
	defer rows.Close()

	page := domain.Page{Notifications: make([]domain.Notification, 0, limit)}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return domain.Page{}, fmt.Errorf("sqlite storage: scan notification: %w", err)
		}
		page.Notifications = append(page.Notifications, n)
	}
	if err := rows.Err(); err != nil {
		return domain.Page{}, fmt.Errorf("sqlite storage: fetch page: %w", err)
	}

	if len(page.Notifications) > limit {
		page.Notifications = page.Notifications[:limit]
		last := page.Notifications[limit-1]
		page.NextCursor = encodeCursor(pageKey{sentAt: last.SentAt.UnixNano(), id: last.ID})
	}
	return page, nil
}

// MarkRead flags the notification as read. Marking an already read
// notification is a no-op; read_at keeps the first read time.
func (s *SQLiteStorage) MarkRead(ctx context.Context, scope domain.Scope, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("sqlite storage: mark read: %w", domain.ErrMissingID)
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE notifications
SET is_read = 1, read_at = CASE WHEN read_at = '' THEN ? ELSE read_at END
WHERE id = ? AND account = ? AND app_domain = ?`,
		s.utcNow(), id, scope.Account, scope.AppDomain)
	if err != nil {
		return fmt.Errorf("sqlite storage: mark read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite storage: read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("sqlite storage: mark read: %w: id %s", domain.ErrNotificationNotFound, id)
	}
	return nil
}

// MarkAllRead flags every unread notification in scope and returns how many changed.
func (s *SQLiteStorage) MarkAllRead(ctx context.Context, scope domain.Scope) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE notifications SET is_read = 1, read_at = ?
WHERE account = ? AND app_domain = ? AND is_read = 0`,
		s.utcNow(), scope.Account, scope.AppDomain)
	if err != nil {
		return 0, fmt.Errorf("sqlite storage: mark all read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite storage: read rows affected: %w", err)
	}
	return affected, nil
}

// CountUnread returns the number of unread notifications in scope.
func (s *SQLiteStorage) CountUnread(ctx context.Context, scope domain.Scope) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE account = ? AND app_domain = ? AND is_read = 0`,
		scope.Account, scope.AppDomain).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite storage: count unread: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (domain.Notification, error) {
	var (
		n      domain.Notification
		sentAt int64
		isRead int
	)
	if err := row.Scan(&n.ID, &n.Account, &n.AppDomain, &n.Type, &n.Title, &n.Body, &n.URL, &sentAt, &isRead); err != nil {
		return domain.Notification{}, err
	}
	n.SentAt = time.Unix(0, sentAt).UTC()
	n.IsRead = isRead != 0
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func readAtFor(isRead bool, now string) string {
	if isRead {
		return now
	}
	return ""
}
