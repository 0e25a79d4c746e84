package credit

import (
	"context"
	"log/slog"
	"sync"

	"credit-gateway/internal/domain/entity"
	"credit-gateway/pkg/cache"
)

// Component statuses reported by HealthCheck.
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// UpstreamHealth is the bureau part of a health report.
type UpstreamHealth struct {
	Status string         `json:"status"`
	Info   entity.APIInfo `json:"info,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// CacheHealth is the cache part of a health report.
type CacheHealth struct {
	Status string      `json:"status"`
	Stats  cache.Stats `json:"stats"`
}

// HealthReport describes whether the gateway can serve assessments.
type HealthReport struct {
	Healthy  bool           `json:"healthy"`
	Upstream UpstreamHealth `json:"sentinelApi"`
	Cache    CacheHealth    `json:"cache"`
	Breaker  string         `json:"circuitBreaker"`
}

// HealthCheck verifies a cache write/read round-trip and that the bureau
// answers /api/info. Both probes run concurrently.
func (s *Service) HealthCheck(ctx context.Context) HealthReport {
	var (
		wg      sync.WaitGroup
		cacheOK bool
		info    entity.APIInfo
		infoErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cacheOK = s.cache.Ping()
	}()
	go func() {
		defer wg.Done()
		info, infoErr = s.bureau.FetchInfo(ctx)
	}()
	wg.Wait()

	report := HealthReport{
		Healthy:  cacheOK && infoErr == nil,
		Upstream: UpstreamHealth{Status: StatusOK, Info: info},
		Cache:    CacheHealth{Status: StatusOK, Stats: s.cache.Stats()},
		Breaker:  s.breaker.State().String(),
	}
	if !cacheOK {
		report.Cache.Status = StatusError
	}
	if infoErr != nil {
		report.Upstream = UpstreamHealth{Status: StatusError, Error: entity.MessageOf(infoErr)}
	}

	if !report.Healthy {
		s.logger.WarnContext(ctx, "credit gateway unhealthy",
			slog.String("cache", report.Cache.Status),
			slog.String("upstream", report.Upstream.Status),
			slog.Any("error", infoErr))
	}
	return report
}
