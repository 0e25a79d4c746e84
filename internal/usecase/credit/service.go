// Package credit implements the credit assessment gateway: the decision
// table and the orchestration of rate limiting, circuit breaking and cached
// bureau lookups around it.
package credit

import (
	"context"
	"log/slog"
	"time"

	"credit-gateway/internal/domain/entity"
	"credit-gateway/internal/observability/metrics"
	"credit-gateway/pkg/cache"
	"credit-gateway/pkg/ratelimit"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

// Messages of failures raised by the gateway itself.
const (
	// MsgBreakerOpen is returned while the circuit breaker rejects calls.
	MsgBreakerOpen = "Servicio de consulta crediticia temporalmente no disponible"
	// MsgRequestAborted is returned when the caller's context ended before
	// the lookup started.
	MsgRequestAborted = "Consulta crediticia cancelada o expirada"
)

// Bureau is the (cached) credit bureau client.
type Bureau interface {
	FetchPerson(ctx context.Context, dni string) (entity.PersonCreditProfile, error)
	FetchDebts(ctx context.Context, dni string) (entity.DebtSummary, error)
	FetchHistory(ctx context.Context, dni string) (entity.CreditHistory, error)
	FetchReport(ctx context.Context, dni string) (entity.CreditReport, error)
	FetchAlerts(ctx context.Context, dni string) (entity.AlertList, error)
	FetchInfo(ctx context.Context) (entity.APIInfo, error)
	Invalidate(dni string) error
	InvalidateAll()
}

// CacheStore exposes the cache health and usage the gateway reports.
type CacheStore interface {
	Stats() cache.Stats
	Ping() bool
}

// RateLimiter gates requests per subject.
type RateLimiter interface {
	Check(ctx context.Context, subject string) *ratelimit.RateLimitDecision
}

// Breaker admits calls and takes their outcome afterwards.
type Breaker interface {
	Admit() (func(success bool), error)
	State() gobreaker.State
}

// RateLimited is the cause of a KindRateLimit error and carries the
// limiter decision for Retry-After and X-RateLimit headers.
type RateLimited struct {
	Decision *ratelimit.RateLimitDecision
}

func (e *RateLimited) Error() string {
	return e.Decision.String()
}

// Service is the credit gateway. Its cache, limiter and breaker are owned by
// the caller, so independent instances never share state.
type Service struct {
	bureau  Bureau
	cache   CacheStore
	limiter RateLimiter
	breaker Breaker
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the time source for evaluation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the gateway.
func NewService(bureau Bureau, store CacheStore, limiter RateLimiter, breaker Breaker, opts ...Option) *Service {
	s := &Service{
		bureau:  bureau,
		cache:   store,
		limiter: limiter,
		breaker: breaker,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetQuickCreditAssessment validates dni, applies the per-subject rate limit
// and the circuit breaker, fetches the profile and the debts concurrently and
// evaluates them. Any failure aborts the whole assessment; the typed error of
// the failing step is returned unchanged.
func (s *Service) GetQuickCreditAssessment(ctx context.Context, dni string) (*entity.CreditAssessment, error) {
	id, err := entity.ParseSubjectID(dni)
	if err != nil {
		return nil, err
	}
	report, err := s.admit(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		profile entity.PersonCreditProfile
		debts   entity.DebtSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.bureau.FetchPerson(gctx, id.String())
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		d, err := s.bureau.FetchDebts(gctx, id.String())
		if err != nil {
			return err
		}
		debts = d
		return nil
	})
	err = g.Wait()
	report(err)
	if err != nil {
		s.logger.WarnContext(ctx, "credit assessment failed",
			slog.String("dni", id.String()),
			slog.String("kind", entity.KindOf(err).String()),
			slog.Any("error", err))
		return nil, err
	}

	assessment := Assess(profile, debts)
	assessment.SubjectID = id
	assessment.EvaluatedAt = s.now()

	metrics.RecordAssessment(string(assessment.Recommendation))
	s.logger.InfoContext(ctx, "credit assessment completed",
		slog.String("dni", id.String()),
		slog.String("recommendation", string(assessment.Recommendation)),
		slog.Float64("suggested_limit", assessment.SuggestedLimit))
	return &assessment, nil
}

// GetPerson returns the bureau profile of dni.
func (s *Service) GetPerson(ctx context.Context, dni string) (entity.PersonCreditProfile, error) {
	return guarded(ctx, s, dni, s.bureau.FetchPerson)
}

// GetDebts returns the debts of dni.
func (s *Service) GetDebts(ctx context.Context, dni string) (entity.DebtSummary, error) {
	return guarded(ctx, s, dni, s.bureau.FetchDebts)
}

// GetHistory returns the credit history of dni.
func (s *Service) GetHistory(ctx context.Context, dni string) (entity.CreditHistory, error) {
	return guarded(ctx, s, dni, s.bureau.FetchHistory)
}

// GetReport returns the consolidated report of dni.
func (s *Service) GetReport(ctx context.Context, dni string) (entity.CreditReport, error) {
	return guarded(ctx, s, dni, s.bureau.FetchReport)
}

// GetAlerts returns the active alerts of dni.
func (s *Service) GetAlerts(ctx context.Context, dni string) (entity.AlertList, error) {
	return guarded(ctx, s, dni, s.bureau.FetchAlerts)
}

// GetAPIInfo returns the bureau metadata. It is not subject-keyed, so only
// the circuit breaker applies.
func (s *Service) GetAPIInfo(ctx context.Context) (entity.APIInfo, error) {
	if err := aborted(ctx); err != nil {
		return nil, err
	}
	report, err := s.admitBreaker()
	if err != nil {
		return nil, err
	}
	info, err := s.bureau.FetchInfo(ctx)
	report(err)
	return info, err
}

// ClearCache drops the cached data of one subject, or everything when dni is empty.
func (s *Service) ClearCache(dni string) error {
	if dni == "" {
		s.bureau.InvalidateAll()
		return nil
	}
	return s.bureau.Invalidate(dni)
}

// CacheStats returns the cache usage counters.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// BreakerState returns the circuit breaker state name.
func (s *Service) BreakerState() string {
	return s.breaker.State().String()
}

func guarded[T any](ctx context.Context, s *Service, dni string,
	fetch func(context.Context, string) (T, error)) (T, error) {
	var zero T

	id, err := entity.ParseSubjectID(dni)
	if err != nil {
		return zero, err
	}
	report, err := s.admit(ctx, id)
	if err != nil {
		return zero, err
	}
	v, err := fetch(ctx, id.String())
	report(err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// admit runs the rate limiter and then the breaker. The returned function
// reports the outcome of the guarded call; only upstream faults count as
// breaker failures. A caller whose context already ended is turned away
// before the limiter, so it is neither counted nor reported as throttled.
func (s *Service) admit(ctx context.Context, id entity.SubjectID) (func(error), error) {
	if err := aborted(ctx); err != nil {
		return nil, err
	}
	if d := s.limiter.Check(ctx, id.String()); !d.Allowed {
		return nil, entity.NewCreditError(entity.KindRateLimit,
			"Límite de consultas excedido para DNI "+id.String()+". Intente más tarde",
			&RateLimited{Decision: d})
	}
	return s.admitBreaker()
}

func (s *Service) admitBreaker() (func(error), error) {
	done, err := s.breaker.Admit()
	if err != nil {
		s.logger.Warn("credit bureau call rejected by circuit breaker",
			slog.String("state", s.breaker.State().String()),
			slog.Any("error", err))
		return nil, entity.NewCreditError(entity.KindServiceUnavailable, MsgBreakerOpen, err)
	}
	return func(err error) { done(!entity.IsUpstreamFault(err)) }, nil
}

func aborted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return entity.NewCreditError(entity.KindTimeout, MsgRequestAborted, err)
	}
	return nil
}
