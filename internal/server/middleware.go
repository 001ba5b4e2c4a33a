package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/cristianoliveira/appfeed/internal/domain"
	"github.com/cristianoliveira/appfeed/internal/logging"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestID tags every request with the caller's X-Request-ID or a new uuid.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one structured line per request once it has been served.
func accessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"request_id", c.GetString(requestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if account := accountOf(c); account != "" {
			args = append(args, "account", account)
		}
		switch {
		case status >= 500:
			logger.Error("request", args...)
		case status >= 400:
			logger.Warn("request", args...)
		default:
			logger.Info("request", args...)
		}
	}
}

// recovery turns a handler panic into a 500 response.
func recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic while serving request",
					"request_id", c.GetString(requestIDKey),
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"panic", fmt.Sprint(r))
				abort(c, fmt.Errorf("panic: %v", r))
			}
		}()
		c.Next()
	}
}

// limiterIdle is how long an account's bucket may sit unused before it is
// dropped.
const limiterIdle = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet keeps one token bucket per account. Buckets idle for longer
// than idle are dropped once they have refilled.
type limiterSet struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idle      time.Duration
	now       func() time.Time
	lastSweep time.Time
	limiters  map[string]*limiterEntry
}

func newLimiterSet(rps float64, burst int) *limiterSet {
	if burst <= 0 {
		burst = 1
	}
	return &limiterSet{
		limit:     rate.Limit(rps),
		burst:     burst,
		idle:      limiterIdle,
		now:       time.Now,
		lastSweep: time.Now(),
		limiters:  make(map[string]*limiterEntry),
	}
}

func (s *limiterSet) get(account string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		s.sweep(now)
		s.lastSweep = now
	}

	e, ok := s.limiters[account]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.limiters[account] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (s *limiterSet) sweep(now time.Time) {
	for account, e := range s.limiters {
		if now.Sub(e.lastSeen) < s.idle {
			continue
		}
		if e.limiter.TokensAt(now) < float64(s.burst) {
			continue
		}
		delete(s.limiters, account)
	}
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}

// rateLimit answers 429 once an account has spent its token bucket. It must
// run after jwtAuth.
func rateLimit(limiters *limiterSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiters.get(accountOf(c)).Allow() {
			c.Header("Retry-After", "1")
			abort(c, domain.ErrRateLimited)
			return
		}
		c.Next()
	}
}
