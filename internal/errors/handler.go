// Package errors routes user facing messages to the CLI or the TUI and
// turns domain errors into short explanations.
package errors

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/cristianoliveira/appfeed/internal/domain"
)

// ErrorHandler is the interface for error handling.
// Different implementations can handle errors differently based on context.
type ErrorHandler interface {
	Error(msg string)
	Warning(msg string)
	Info(msg string)
	Success(msg string)
}

// ColorOutput prints leveled console messages.
type ColorOutput interface {
	Error(msgs ...string)
	Warning(msgs ...string)
	Info(msgs ...string)
	Success(msgs ...string)
}

// CLIHandler handles errors by printing to stdout/stderr.
type CLIHandler struct {
	mu     sync.Mutex
	colors ColorOutput
}

// NewCLIHandler returns a handler printing through colors.
func NewCLIHandler(colors ColorOutput) *CLIHandler {
	return &CLIHandler{colors: colors}
}

func (h *CLIHandler) Error(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Error(msg)
}

func (h *CLIHandler) Warning(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Warning(msg)
}

func (h *CLIHandler) Info(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Info(msg)
}

func (h *CLIHandler) Success(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Success(msg)
}

// Describe returns a short, user facing explanation of err.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, domain.ErrUnauthorized):
		return "not authorized: check server_token or run `appfeed token`"
	case stderrors.Is(err, domain.ErrRateLimited):
		return "too many requests, try again shortly"
	case stderrors.Is(err, domain.ErrSubscriptionNotFound):
		return "no subscription for this app, run `appfeed subscribe` first"
	case stderrors.Is(err, domain.ErrNotificationNotFound):
		return "notification not found"
	case stderrors.Is(err, domain.ErrInvalidCursor):
		return "the feed changed while paging, reload to start over"
	default:
		return err.Error()
	}
}

// Report sends a failed operation to h as an error message.
func Report(h ErrorHandler, op string, err error) {
	if err == nil {
		return
	}
	h.Error(fmt.Sprintf("%s: %s", op, Describe(err)))
}
