package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

// UpsertSubscription creates or replaces the subscription of account to sub.AppDomain.
func (s *SQLiteStorage) UpsertSubscription(ctx context.Context, account string, sub domain.Subscription) error {
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("sqlite storage: upsert subscription: %w", err)
	}
	icons, err := json.Marshal(nonNilIcons(sub.Icons))
	if err != nil {
		return fmt.Errorf("sqlite storage: encode icons: %w", err)
	}
	scope, err := json.Marshal(nonNilScope(sub.Scope))
	if err != nil {
		return fmt.Errorf("sqlite storage: encode scope: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO subscriptions (account, app_domain, name, description, icons, scope, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(account, app_domain) DO UPDATE SET
	name = excluded.name,
	description = excluded.description,
	icons = excluded.icons,
	scope = excluded.scope,
	updated_at = excluded.updated_at`,
		account, sub.AppDomain, sub.Name, sub.Description, string(icons), string(scope), s.utcNow())
	if err != nil {
		return fmt.Errorf("sqlite storage: upsert subscription: %w", err)
	}
	return nil
}

// GetSubscription returns the subscription of account to appDomain.
func (s *SQLiteStorage) GetSubscription(ctx context.Context, account, appDomain string) (*domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT app_domain, name, description, icons, scope FROM subscriptions WHERE account = ? AND app_domain = ?`,
		account, appDomain)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite storage: get subscription: %w: %s", domain.ErrSubscriptionNotFound, appDomain)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: get subscription: %w", err)
	}
	return &sub, nil
}

// ListSubscriptions returns every subscription of account ordered by domain.
func (s *SQLiteStorage) ListSubscriptions(ctx context.Context, account string) ([]domain.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT app_domain, name, description, icons, scope FROM subscriptions WHERE account = ? ORDER BY app_domain`,
		account)
	if err != nil {
		return nil, fmt.Errorf("sqlite storage: list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []domain.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite storage: scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite storage: list subscriptions: %w", err)
	}
	return subs, nil
}

func scanSubscription(row rowScanner) (domain.Subscription, error) {
	var (
		sub          domain.Subscription
		icons, scope string
	)
	if err := row.Scan(&sub.AppDomain, &sub.Name, &sub.Description, &icons, &scope); err != nil {
		return domain.Subscription{}, err
	}
	if err := json.Unmarshal([]byte(icons), &sub.Icons); err != nil {
		return domain.Subscription{}, fmt.Errorf("decode icons: %w", err)
	}
	if err := json.Unmarshal([]byte(scope), &sub.Scope); err != nil {
		return domain.Subscription{}, fmt.Errorf("decode scope: %w", err)
	}
	return sub, nil
}

func nonNilIcons(icons []string) []string {
	if icons == nil {
		return []string{}
	}
	return icons
}

func nonNilScope(scope map[string]domain.ScopeEntry) map[string]domain.ScopeEntry {
	if scope == nil {
		return map[string]domain.ScopeEntry{}
	}
	return scope
}
