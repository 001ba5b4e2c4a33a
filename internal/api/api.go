// Package api holds the JSON wire types shared by the HTTP server and client,
// and the mapping between domain errors and HTTP responses.
package api

import (
	"errors"
	"net/http"

	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/version"
)

// Prefix is the path every authenticated route lives under.
const Prefix = "/api/v1"

// Error codes carried in ErrorResponse.Code.
const (
	CodeBadRequest           = "bad_request"
	CodeInvalidCursor        = "invalid_cursor"
	CodeInvalidNotification  = "invalid_notification"
	CodeDuplicate            = "duplicate_notification"
	CodeNotificationNotFound = "notification_not_found"
	CodeSubscriptionNotFound = "subscription_not_found"
	CodeUnauthorized         = "unauthorized"
	CodeRateLimited          = "rate_limited"
	CodeInternal             = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// SubscriptionList is the body of GET /subscriptions.
type SubscriptionList struct {
	Subscriptions []domain.Subscription `json:"subscriptions"`
}

// MarkAllReadResponse is the body of PUT .../notifications/read-all.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// MarkReadResponse is the body of PUT .../notifications/:id/read.
type MarkReadResponse struct {
	ID     string `json:"id"`
	IsRead bool   `json:"is_read"`
}

// Health is the body of GET /health.
type Health struct {
	Status string `json:"status"`
	version.Info
}

var codeErrors = map[string]error{
	CodeInvalidCursor:        domain.ErrInvalidCursor,
	CodeInvalidNotification:  domain.ErrInvalidNotification,
	CodeDuplicate:            domain.ErrDuplicateNotification,
	CodeNotificationNotFound: domain.ErrNotificationNotFound,
	CodeSubscriptionNotFound: domain.ErrSubscriptionNotFound,
	CodeUnauthorized:         domain.ErrUnauthorized,
	CodeRateLimited:          domain.ErrRateLimited,
}

// StatusFor maps err to an HTTP status and error code. Unknown errors are
// internal server errors.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCursor):
		return http.StatusBadRequest, CodeInvalidCursor
	case errors.Is(err, domain.ErrInvalidNotification), errors.Is(err, domain.ErrMissingID):
		return http.StatusBadRequest, CodeInvalidNotification
	case errors.Is(err, domain.ErrDuplicateNotification):
		return http.StatusConflict, CodeDuplicate
	case errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound, CodeNotificationNotFound
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		return http.StatusNotFound, CodeSubscriptionNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, CodeRateLimited
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// ErrorFor returns the domain sentinel behind an error code, falling back to
// the status when the code is unknown. It returns nil when neither maps.
func ErrorFor(status int, code string) error {
	if err, ok := codeErrors[code]; ok {
		return err
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	}
	return nil
}
