// Package bootstrap assembles the credit gateway from configuration. The API
// server and the re-check worker share it so both run the same cache,
// limiter and breaker setup.
package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"credit-gateway/internal/config"
	"credit-gateway/internal/infra/notifier"
	"credit-gateway/internal/infra/sentinel"
	"credit-gateway/internal/observability/logging"
	"credit-gateway/internal/observability/metrics"
	"credit-gateway/internal/observability/tracing"
	"credit-gateway/internal/resilience/circuitbreaker"
	"credit-gateway/internal/usecase/credit"
	"credit-gateway/pkg/cache"
	"credit-gateway/pkg/ratelimit"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

const webhookTimeout = 10 * time.Second

// Gateway is a wired credit gateway together with the parts the process
// needs for health reporting and housekeeping.
type Gateway struct {
	Service      *credit.Service
	Cache        *cache.Store
	LimiterStore *ratelimit.InMemoryStore
	Limiter      *ratelimit.SubjectLimiter
	Breaker      *circuitbreaker.CircuitBreaker
	Alerter      *notifier.BreakerAlerter
	// RateLimitMetrics is shared with any other limiter of the process;
	// its collectors are registered once.
	RateLimitMetrics *ratelimit.PrometheusMetrics
}

// NewGateway builds the bureau client, cache, per-DNI limiter and breaker
// from cfg and registers their collectors on reg. Close must be called on
// shutdown to drain pending breaker alerts.
func NewGateway(cfg *config.GatewayConfig, reg prometheus.Registerer, logger *slog.Logger) *Gateway {
	rlMetrics := ratelimit.NewPrometheusMetrics(reg)

	client := sentinel.NewClient(cfg.SentinelClientConfig(),
		sentinel.WithMetrics(sentinel.NewPrometheusMetrics(reg)),
		sentinel.WithTracer(tracing.GetTracer()),
		sentinel.WithLogger(logging.Component(logger, "sentinel")))

	cacheCfg := cfg.CacheStoreConfig()
	cacheCfg.Observer = cache.NewPrometheusObserver(reg, "sentinel")
	cacheCfg.Logger = logging.Component(logger, "cache")
	store := cache.New(cacheCfg)

	limiterCfg := cfg.RateLimiterConfig()
	limiterStore := ratelimit.NewInMemoryStore(ratelimit.InMemoryStoreConfig{
		MaxKeys: limiterCfg.MaxKeys,
		OnEvict: func(count int) { rlMetrics.RecordEviction(limiterCfg.LimiterType, count) },
	})
	limiter := ratelimit.NewSubjectLimiter(limiterStore, limiterCfg,
		ratelimit.WithMetrics(rlMetrics),
		ratelimit.WithLogger(logger))

	alerter := notifier.NewBreakerAlerter(
		notifier.FromWebhooks(cfg.Alerts.SlackWebhookURL, cfg.Alerts.DiscordWebhookURL, webhookTimeout),
		notifier.DefaultAlerterConfig(),
		logging.Component(logger, "alerts"))

	breakerCfg := cfg.BreakerSettings()
	breaker := circuitbreaker.New(breakerCfg,
		circuitbreaker.WithStateObserver(circuitbreaker.StateObserverFunc(metrics.RecordBreakerTransition)),
		circuitbreaker.WithStateObserver(alerter))
	metrics.SetBreakerState(breakerCfg.Name, gobreaker.StateClosed)

	svc := credit.NewService(sentinel.NewCachedClient(client, store), store, limiter, breaker,
		credit.WithLogger(logging.Component(logger, "credit")))

	logger.Info("credit gateway configured",
		slog.String("bureau", cfg.Sentinel.BaseURL),
		slog.Duration("bureau_timeout", cfg.Sentinel.Timeout),
		slog.Duration("cache_ttl", cfg.Cache.TTL),
		slog.Int("dni_limit", limiterCfg.MaxRequests),
		slog.Duration("dni_window", limiterCfg.Window),
		slog.Uint64("breaker_threshold", uint64(breakerCfg.FailureThreshold)))

	return &Gateway{
		Service:      svc,
		Cache:        store,
		LimiterStore: limiterStore,
		Limiter:      limiter,
		Breaker:      breaker,
		Alerter:      alerter,

		RateLimitMetrics: rlMetrics,
	}
}

// Close drains pending breaker alerts until ctx ends.
func (g *Gateway) Close(ctx context.Context) error {
	return g.Alerter.Close(ctx)
}
