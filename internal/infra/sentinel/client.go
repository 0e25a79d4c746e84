// Package sentinel is the client for the Sentinel credit bureau HTTP API.
// Every call validates the DNI before touching the network, retries
// transient failures with exponential backoff and maps failures to typed
// entity.CreditError values.
package sentinel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"credit-gateway/internal/domain/entity"
	"credit-gateway/internal/observability/tracing"
	"credit-gateway/internal/resilience/retry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// resource is one bureau endpoint together with its cache identity.
type resource struct {
	name     string
	path     string
	cacheKey string
	ttl      time.Duration
}

func personResource(id entity.SubjectID) resource {
	return resource{"person", "/api/persona/" + id.String(), "person_" + id.String(), PersonTTL}
}

func debtsResource(id entity.SubjectID) resource {
	return resource{"debts", "/api/persona/" + id.String() + "/deudas", "debts_" + id.String(), DebtsTTL}
}

func historyResource(id entity.SubjectID) resource {
	return resource{"history", "/api/persona/" + id.String() + "/historial", "history_" + id.String(), HistoryTTL}
}

func reportResource(id entity.SubjectID) resource {
	return resource{"report", "/api/persona/" + id.String() + "/reporte", "report_" + id.String(), ReportTTL}
}

func alertsResource(id entity.SubjectID) resource {
	return resource{"alerts", "/api/persona/" + id.String() + "/alertas", "alerts_" + id.String(), AlertsTTL}
}

var infoResource = resource{"info", "/api/info", "api_info", InfoTTL}

// SubjectKeys returns the cache keys holding data for one subject.
func SubjectKeys(id entity.SubjectID) []string {
	return []string{
		personResource(id).cacheKey,
		historyResource(id).cacheKey,
		debtsResource(id).cacheKey,
		reportResource(id).cacheKey,
		alertsResource(id).cacheKey,
	}
}

// decodeFunc turns a bureau body into a value, stamping it with the time the
// body was fetched.
type decodeFunc[T any] func(raw []byte, id entity.SubjectID, fetchedAt time.Time) (T, error)

func fetchSubject[T any](ctx context.Context, c *Client, dni string,
	build func(entity.SubjectID) resource, decode decodeFunc[T]) (T, error) {
	var zero T

	id, err := entity.ParseSubjectID(dni)
	if err != nil {
		return zero, err
	}
	raw, err := c.load(ctx, build(id))
	if err != nil {
		return zero, err
	}
	return decode(raw, id, c.now())
}

// Client calls the bureau directly, without caching.
type Client struct {
	cfg     Config
	http    *http.Client
	metrics Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock sets the time source used for query timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a bureau client. Zero config fields take their defaults.
func NewClient(cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = def.MaxBodySize
	}
	if cfg.Retry.MaxAttempts < 1 {
		cfg.Retry.MaxAttempts = 1
	}

	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		metrics: noopMetrics{},
		tracer:  tracing.GetTracer(),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPerson returns the person profile for dni.
func (c *Client) FetchPerson(ctx context.Context, dni string) (entity.PersonCreditProfile, error) {
	return fetchSubject(ctx, c, dni, personResource, decodePerson)
}

// FetchDebts returns the current debts for dni with their total.
func (c *Client) FetchDebts(ctx context.Context, dni string) (entity.DebtSummary, error) {
	return fetchSubject(ctx, c, dni, debtsResource, decodeDebts)
}

// FetchHistory returns the historical records for dni.
func (c *Client) FetchHistory(ctx context.Context, dni string) (entity.CreditHistory, error) {
	return fetchSubject(ctx, c, dni, historyResource, decodeHistory)
}

// FetchReport returns the consolidated report for dni.
func (c *Client) FetchReport(ctx context.Context, dni string) (entity.CreditReport, error) {
	return fetchSubject(ctx, c, dni, reportResource, decodeReport)
}

// FetchAlerts returns the active alerts for dni.
func (c *Client) FetchAlerts(ctx context.Context, dni string) (entity.AlertList, error) {
	return fetchSubject(ctx, c, dni, alertsResource, decodeAlerts)
}

// FetchInfo returns the bureau's service metadata.
func (c *Client) FetchInfo(ctx context.Context) (entity.APIInfo, error) {
	raw, err := c.load(ctx, infoResource)
	if err != nil {
		return nil, err
	}
	return decodeInfo(raw)
}

// load performs a GET with retries and returns the raw JSON body.
func (c *Client) load(ctx context.Context, res resource) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "sentinel."+res.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("sentinel.endpoint", res.name),
			attribute.String("http.method", http.MethodGet),
		))
	defer span.End()

	attempts := 0
	cfg := c.cfg.Retry
	onRetry := cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error) {
		c.metrics.RecordRetry(res.name)
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	var body []byte
	err := retry.WithBackoff(ctx, cfg, func() error {
		attempts++
		b, err := c.do(ctx, res, attempts)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	span.SetAttributes(attribute.Int("sentinel.attempts", attempts))
	if err != nil {
		ce := finalError(err)
		span.SetAttributes(attribute.String("sentinel.error_kind", ce.Kind.String()))
		span.RecordError(ce)
		span.SetStatus(codes.Error, ce.Message)
		return nil, ce
	}
	return body, nil
}

// do performs a single attempt.
func (c *Client) do(ctx context.Context, res resource, attempt int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+res.path, nil)
	if err != nil {
		return nil, entity.NewCreditError(entity.KindUnknownUpstream,
			"Error al construir la consulta crediticia", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.InfoContext(ctx, "sentinel request",
		slog.String("method", req.Method),
		slog.String("path", res.path),
		slog.Int("attempt", attempt))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		ce := transportError(err)
		c.metrics.RecordRequest(res.name, ce.Kind.String(), time.Since(start))
		c.logger.WarnContext(ctx, "sentinel request failed",
			slog.String("path", res.path),
			slog.Int("attempt", attempt),
			slog.String("kind", ce.Kind.String()),
			slog.Any("error", err))
		return nil, ce
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodySize+1))
	duration := time.Since(start)
	if err != nil {
		ce := transportError(err)
		c.metrics.RecordRequest(res.name, ce.Kind.String(), duration)
		return nil, ce
	}
	if int64(len(body)) > c.cfg.MaxBodySize {
		ce := entity.NewCreditError(entity.KindUnknownUpstream,
			"Respuesta del servicio crediticio demasiado grande",
			fmt.Errorf("body exceeds %d bytes", c.cfg.MaxBodySize))
		c.metrics.RecordRequest(res.name, ce.Kind.String(), duration)
		return nil, ce
	}

	c.logger.InfoContext(ctx, "sentinel response",
		slog.String("path", res.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ce := statusError(resp.StatusCode, body)
		c.metrics.RecordRequest(res.name, ce.Kind.String(), duration)
		return nil, ce
	}

	c.metrics.RecordRequest(res.name, outcome(nil), duration)
	return body, nil
}

// finalError unwraps the retry envelope back to the typed failure. A caller
// deadline that expired while waiting between attempts is reported as a timeout.
func finalError(err error) *entity.CreditError {
	var ce *entity.CreditError
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if errors.As(err, &ce) && ce.Kind == entity.KindTimeout {
			return ce
		}
		return entity.NewCreditError(entity.KindTimeout, msgTimeout, err)
	}
	if errors.As(err, &ce) {
		return ce
	}
	return transportError(err)
}
