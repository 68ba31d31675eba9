package telegram

import (
	"time"

	coreconfig "github.com/m3rciful/typekeeper/core/config"
	"github.com/m3rciful/typekeeper/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MiddlewareOptions feeds DefaultMiddlewares.
type MiddlewareOptions struct {
	// OnLimited answers a rate limited update; nil drops it silently.
	OnLimited tele.HandlerFunc
	// Locks serializes updates per user; nil disables serialization.
	Locks middleware.UserLocker
}

// DefaultMiddlewares builds the global chain: recover, rate limit, request
// logging, per-user serialization and reply counters.
func DefaultMiddlewares(cfg *coreconfig.Config, opts MiddlewareOptions) []Middleware {
	mws := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}

	if cfg != nil && cfg.RateLimit.IntervalMS > 0 {
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
				Excluded:  cfg.RateLimit.Excluded,
				OnLimited: opts.OnLimited,
			}),
		})
	}

	mws = append(mws, Middleware{Name: "logger", Use: middleware.LoggerMiddleware})
	if opts.Locks != nil {
		mws = append(mws, Middleware{Name: "serialize", Use: middleware.SerializeUpdates(opts.Locks)})
	}
	return append(mws, Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware})
}
