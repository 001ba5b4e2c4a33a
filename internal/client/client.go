// Package client talks to a remote appfeed server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cristianoliveira/appfeed/internal/api"
	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/logging"
	"github.com/cristianoliveira/appfeed/internal/version"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 30 * time.Second

// Client is a notification source backed by the appfeed HTTP API.
// The account is taken from the bearer token; Scope.Account is ignored.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

var _ domain.FeedBackend = (*Client)(nil)

// New creates a client for the server at baseURL authenticating with token.
func New(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

// Error is a non-2xx response. It unwraps to the matching domain sentinel,
// so callers can use errors.Is(err, domain.ErrNotificationNotFound).
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error {
	return api.ErrorFor(e.Status, e.Code)
}

// FetchPage requests one page of the feed for req.Scope.
func (c *Client) FetchPage(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
	q := url.Values{}
	if req.Cursor != "" {
		q.Set("cursor", req.Cursor)
	}
	q.Set("limit", strconv.Itoa(req.NormalizedLimit()))

	var page domain.Page
	if err := c.do(ctx, http.MethodGet, notificationsPath(req.Scope.AppDomain)+"?"+q.Encode(), nil, &page); err != nil {
		return domain.Page{}, fmt.Errorf("fetch page: %w", err)
	}
	if page.Notifications == nil {
		page.Notifications = []domain.Notification{}
	}
	return page, nil
}

// MarkRead marks one notification as read.
func (c *Client) MarkRead(ctx context.Context, scope domain.Scope, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.ErrMissingID
	}
	path := notificationsPath(scope.AppDomain) + "/" + url.PathEscape(id) + "/read"
	if err := c.do(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("mark read %s: %w", id, err)
	}
	return nil
}

// MarkAllRead marks every unread notification of scope as read.
func (c *Client) MarkAllRead(ctx context.Context, scope domain.Scope) (int64, error) {
	var resp api.MarkAllReadResponse
	if err := c.do(ctx, http.MethodPut, notificationsPath(scope.AppDomain)+"/read-all", nil, &resp); err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return resp.Updated, nil
}

// GetSubscription returns the subscription metadata for appDomain.
func (c *Client) GetSubscription(ctx context.Context, _ string, appDomain string) (*domain.Subscription, error) {
	var sub domain.Subscription
	if err := c.do(ctx, http.MethodGet, subscriptionPath(appDomain), nil, &sub); err != nil {
		return nil, fmt.Errorf("get subscription %s: %w", appDomain, err)
	}
	return &sub, nil
}

// ListSubscriptions returns every subscription of the token's account.
func (c *Client) ListSubscriptions(ctx context.Context, _ string) ([]domain.Subscription, error) {
	var resp api.SubscriptionList
	if err := c.do(ctx, http.MethodGet, api.Prefix+"/subscriptions", nil, &resp); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if resp.Subscriptions == nil {
		return []domain.Subscription{}, nil
	}
	return resp.Subscriptions, nil
}

// AddNotification sends n to the subscription named by n.AppDomain.
func (c *Client) AddNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	var created domain.Notification
	if err := c.do(ctx, http.MethodPost, notificationsPath(n.AppDomain), n, &created); err != nil {
		return domain.Notification{}, fmt.Errorf("add notification: %w", err)
	}
	return created, nil
}

// UpsertSubscription creates or replaces the subscription for sub.AppDomain.
func (c *Client) UpsertSubscription(ctx context.Context, _ string, sub domain.Subscription) error {
	if err := c.do(ctx, http.MethodPut, subscriptionPath(sub.AppDomain), sub, nil); err != nil {
		return fmt.Errorf("upsert subscription %s: %w", sub.AppDomain, err)
	}
	return nil
}

// Health reports the server build information.
func (c *Client) Health(ctx context.Context) (api.Health, error) {
	var h api.Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return api.Health{}, fmt.Errorf("health: %w", err)
	}
	return h, nil
}

// Close is a no-op; it lets a Client stand in for a local store.
func (c *Client) Close() error {
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	logging.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body api.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

func subscriptionPath(appDomain string) string {
	return api.Prefix + "/subscriptions/" + url.PathEscape(appDomain)
}

func notificationsPath(appDomain string) string {
	return subscriptionPath(appDomain) + "/notifications"
}
