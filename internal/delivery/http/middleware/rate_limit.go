package middleware

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"sync"
	"time"

	"farmchain/config"
	deliverycontext "farmchain/internal/delivery/context"
	domainerrors "farmchain/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per client IP for the credential routes.
type RateLimiter struct {
	enabled         bool
	limit           rate.Limit
	burst           int
	cleanupInterval time.Duration
	logger          *slog.Logger
	now             func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

type RateLimiterParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewRateLimiter builds the limiter and ties its sweeper to the fx lifecycle.
func NewRateLimiter(params RateLimiterParams) *RateLimiter {
	rl := newRateLimiter(params.Config.RateLimit, params.Logger, time.Now)

	params.Lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if rl.enabled {
				go rl.cleanupLoop()
			}

			return nil
		},
		OnStop: func(context.Context) error {
			rl.Stop()

			return nil
		},
	})

	return rl
}

func newRateLimiter(cfg *config.RateLimitConfig, logger *slog.Logger, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		enabled:         cfg.Enabled,
		limit:           rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:           cfg.Burst,
		cleanupInterval: cfg.CleanupInterval,
		logger:          logger,
		now:             now,
		clients:         make(map[string]*clientLimiter),
		stopCh:          make(chan struct{}),
	}
}

// Stop ends the sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Limit answers 429 with Retry-After once a client exhausts its bucket.
func (rl *RateLimiter) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !rl.enabled {
			return next(c)
		}

		ip := c.RealIP()
		if !rl.limiterFor(ip).AllowN(rl.now(), 1) {
			c.Response().Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
			deliverycontext.LoggerOrDefault(c.Request().Context(), rl.logger).
				Warn("Rate limit exceeded", slog.String("remote_ip", ip), slog.String("path", c.Path()))

			return domainerrors.ErrTooManyRequests
		}

		return next(c)
	}
}

// ClientCount reports how many client buckets are tracked.
func (rl *RateLimiter) ClientCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return len(rl.clients)
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastAccess = rl.now()

	return cl.limiter
}

func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.limit <= 0 {
		return 60
	}

	return int(math.Ceil(1 / float64(rl.limit)))
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stopCh:
			return
		}
	}
}

// sweep drops buckets idle for longer than the cleanup interval; such a bucket
// has refilled and is indistinguishable from a new one.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.cleanupInterval)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, cl := range rl.clients {
		if cl.lastAccess.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}
