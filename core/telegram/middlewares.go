package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/multicco/sportbot4-sub000/core/config"
	"github.com/multicco/sportbot4-sub000/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares returns the global chain: panic recovery, optional
// per-user throttling, then logging and reply counters.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited func(tele.Context) error) []Middleware {
	chain := []Middleware{{Name: "recover", Use: middleware.RecoverMiddleware}}
	if opts, ok := rateLimitOptions(cfg, onLimited); ok {
		chain = append(chain, Middleware{Name: "rate_limit", Use: middleware.RateLimitMiddleware(opts)})
	}
	return append(chain,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}

// rateLimitOptions translates the rate_limit config block. A zero interval
// disables throttling.
func rateLimitOptions(cfg *coreconfig.Config, onLimited func(tele.Context) error) (middleware.RateLimitOptions, bool) {
	if cfg == nil || cfg.RateLimit.IntervalMS <= 0 {
		return middleware.RateLimitOptions{}, false
	}
	opts := middleware.RateLimitOptions{
		Interval:  time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
		Exclude:   make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates)),
		OnLimited: onLimited,
	}
	for _, kind := range cfg.RateLimit.ExcludeUpdates {
		opts.Exclude[strings.ToLower(strings.TrimSpace(kind))] = struct{}{}
	}
	return opts, true
}
