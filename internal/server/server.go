// Package server exposes notification feeds over an authenticated JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cristianoliveira/appfeed/internal/api"
	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/logging"
	"github.com/cristianoliveira/appfeed/internal/version"
)

// Store is the notification store the server reads from and writes to.
type Store interface {
	domain.FeedBackend
	AddNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
	UpsertSubscription(ctx context.Context, account string, sub domain.Subscription) error
}

// Options configures a Server.
type Options struct {
	// Secret signs and verifies bearer tokens. Required.
	Secret string
	// RatePerSecond and Burst size the per-account token bucket.
	// A non-positive RatePerSecond disables rate limiting.
	RatePerSecond float64
	Burst         int
	// Logger receives access and error logs. Defaults to the global logger.
	Logger logging.Logger
}

// Server is the HTTP API in front of a Store.
type Server struct {
	router *gin.Engine
	store  Store
	logger logging.Logger
}

// New builds the router for store.
func New(store Store, opts Options) (*Server, error) {
	if opts.Secret == "" {
		return nil, errors.New("server: jwt secret cannot be empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.GetGlobal()
	}

	router := gin.New()
	router.Use(requestID(), accessLog(logger), recovery(logger))

	s := &Server{router: router, store: store, logger: logger}
	s.setupRoutes(opts)
	return s, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", addr, "version", version.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("api shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) setupRoutes(opts Options) {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, api.Health{Status: "ok", Info: version.Current()})
	})

	v1 := s.router.Group(api.Prefix)
	v1.Use(jwtAuth(opts.Secret))
	if opts.RatePerSecond > 0 {
		v1.Use(rateLimit(newLimiterSet(opts.RatePerSecond, opts.Burst)))
	}
	{
		subs := v1.Group("/subscriptions")
		subs.GET("", s.handleListSubscriptions)
		subs.GET("/:domain", s.handleGetSubscription)
		subs.PUT("/:domain", s.handlePutSubscription)

		notifications := subs.Group("/:domain/notifications")
		notifications.GET("", s.handleListNotifications)
		notifications.POST("", s.handleSendNotification)
		notifications.PUT("/:id/read", s.handleMarkRead)
		notifications.PUT("/read-all", s.handleMarkAllRead)
	}
}

// abort writes the error response for err and stops the handler chain.
func abort(c *gin.Context, err error) {
	status, code := api.StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: c.GetString(requestIDKey),
	})
}

func badRequest(c *gin.Context, format string, args ...any) {
	c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{
		Error:     fmt.Sprintf(format, args...),
		Code:      api.CodeBadRequest,
		RequestID: c.GetString(requestIDKey),
	})
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	if status, _ := api.StatusFor(err); status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "request_id", c.GetString(requestIDKey), "error", err)
	}
	abort(c, err)
}

func scopeOf(c *gin.Context) domain.Scope {
	return domain.Scope{Account: accountOf(c), AppDomain: c.Param("domain")}
}
