package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"credit-gateway/internal/bootstrap"
	"credit-gateway/internal/config"
	pgRepo "credit-gateway/internal/infra/adapter/persistence/postgres"
	"credit-gateway/internal/infra/db"
	grpcapi "credit-gateway/internal/interface/grpc"
	"credit-gateway/internal/observability/logging"
	"credit-gateway/internal/observability/metrics"
	"credit-gateway/internal/observability/slo"
	"credit-gateway/internal/observability/tracing"
	"credit-gateway/internal/resilience/circuitbreaker"
	"credit-gateway/internal/usecase/creditcheck"
	"credit-gateway/pkg/ratelimit"

	hhttp "credit-gateway/internal/handler/http"
	hauth "credit-gateway/internal/handler/http/auth"
	hclient "credit-gateway/internal/handler/http/client"
	"credit-gateway/internal/handler/http/middleware"
	"credit-gateway/internal/handler/http/requestid"
	hsentinel "credit-gateway/internal/handler/http/sentinel"

	_ "credit-gateway/docs" // swagger docs
)

// @title           Sentinel Credit Gateway API
// @version         1.0
// @description     Gateway de evaluación crediticia sobre la API Sentinel.
// @description     Consulta de perfil, deudas, historial, reporte y alertas por DNI, con caché,
// @description     límite de consultas por DNI y circuit breaker hacia el buró.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Token JWT en la cabecera Authorization con el formato "Bearer {token}".

func main() {
	cfg, err := config.Load(os.Getenv("SENTINEL_CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	version := getVersion()

	database := initDatabase(logger, cfg.DatabaseURL)
	if database != nil {
		defer func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}()
	}

	gw := bootstrap.NewGateway(&cfg, prometheus.DefaultRegisterer, logger)
	components := setupServer(logger, &cfg, gw, database, version)

	runServer(logger, &cfg, gw, components, version)
}

// initLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func initLogger(cfg config.LogConfig) *slog.Logger {
	logger := logging.New(os.Stdout, cfg.Format, logging.ParseLevel(cfg.Level))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the client database when DATABASE_URL is set. Without
// it the gateway still serves every /api/sentinel route.
func initDatabase(logger *slog.Logger, dsn string) *sql.DB {
	if dsn == "" {
		logger.Warn("DATABASE_URL not set, client credit-check endpoints are disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.Open(ctx, dsn)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// ServerComponents holds what runServer needs besides the handler.
type ServerComponents struct {
	Handler     http.Handler
	ClientStore *ratelimit.InMemoryStore
	SLO         *slo.Tracker
	DB          *sql.DB
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
func setupServer(logger *slog.Logger, cfg *config.GatewayConfig, gw *bootstrap.Gateway, database *sql.DB, version string) *ServerComponents {
	proxyConfig, err := middleware.ParseTrustedProxies(cfg.Security.TrustedProxies.Enabled, cfg.Security.TrustedProxies.CIDRs)
	if err != nil {
		logger.Error("failed to load trusted proxy configuration", slog.Any("error", err))
		os.Exit(1)
	}
	ipExtractor := middleware.NewIPExtractor(proxyConfig)
	if proxyConfig.Enabled {
		logger.Info("client ip: trusted proxy mode enabled",
			slog.Int("trusted_proxies_count", len(proxyConfig.AllowedCIDRs)))
	} else {
		logger.Info("client ip: using RemoteAddr, proxy headers ignored")
	}

	clientCfg := cfg.Security.ClientLimiterConfig()
	clientStore := ratelimit.NewInMemoryStore(ratelimit.InMemoryStoreConfig{
		MaxKeys: clientCfg.MaxKeys,
		OnEvict: func(count int) { gw.RateLimitMetrics.RecordEviction(clientCfg.LimiterType, count) },
	})
	clientLimiter := middleware.NewClientRateLimiter(
		ratelimit.NewSubjectLimiter(clientStore, clientCfg,
			ratelimit.WithMetrics(gw.RateLimitMetrics),
			ratelimit.WithLogger(logger)),
		ipExtractor,
		middleware.WithSkipRoles(cfg.Security.ClientLimit.SkipRoles...),
		middleware.WithLimiterLogger(logger))
	logger.Info("client rate limiting initialized",
		slog.Int("limit", clientCfg.MaxRequests),
		slog.Duration("window", clientCfg.Window),
		slog.Any("skip_roles", cfg.Security.ClientLimit.SkipRoles))

	apiMux := http.NewServeMux()
	hsentinel.Register(apiMux, gw.Service, ipExtractor, logging.Component(logger, "sentinel-http"))
	if database != nil {
		dbBreaker := circuitbreaker.NewDBCircuitBreaker(database,
			circuitbreaker.WithStateObserver(circuitbreaker.StateObserverFunc(metrics.RecordBreakerTransition)))
		checks := &creditcheck.Service{
			Repo:     pgRepo.NewClientRepo(dbBreaker),
			Assessor: gw.Service,
			Logger:   logging.Component(logger, "creditcheck"),
		}
		hclient.Register(apiMux, checks, logger)
	}

	api := applyAPIMiddleware(logger, cfg, apiMux, clientLimiter)

	rootMux := http.NewServeMux()
	rootMux.Handle("GET /health", &hhttp.HealthHandler{
		DB:      database,
		Gateway: gw.Service,
		RateLimitStores: map[string]ratelimit.Store{
			gw.Limiter.Config().LimiterType: gw.LimiterStore,
			clientCfg.LimiterType:           clientStore,
		},
		Version: version,
	})
	rootMux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	rootMux.Handle("GET /live", &hhttp.LiveHandler{})
	rootMux.Handle("GET /metrics", hhttp.MetricsHandler())
	rootMux.Handle("/swagger/", httpSwagger.WrapHandler)
	rootMux.Handle("/api/", api)

	tracker := slo.NewTracker(slo.DefaultMaxSamples).WithLogger(logging.Component(logger, "slo"))
	return &ServerComponents{
		Handler:     applyMiddleware(logger, cfg, rootMux, tracker),
		ClientStore: clientStore,
		SLO:         tracker,
		DB:          database,
	}
}

// applyAPIMiddleware wraps the /api/ routes.
// Order: Authentication → Client Rate Limit → Timeout
func applyAPIMiddleware(logger *slog.Logger, cfg *config.GatewayConfig, handler http.Handler, limiter *middleware.ClientRateLimiter) http.Handler {
	chain := hhttp.Timeout(cfg.Server.RequestTimeout)(handler)
	chain = limiter.Middleware(chain)

	if cfg.Auth.Enabled {
		chain = hauth.Authz(hauth.Config{
			Secret:          []byte(cfg.Auth.JWTSecret),
			Issuer:          cfg.Auth.Issuer,
			Audience:        cfg.Auth.Audience,
			AllowedRoles:    cfg.Auth.AllowedRoles,
			PublicEndpoints: cfg.Auth.PublicEndpoints,
		})(chain)
		logger.Info("authentication enabled",
			slog.Any("allowed_roles", cfg.Auth.AllowedRoles),
			slog.Any("public_endpoints", cfg.Auth.PublicEndpoints))
	} else {
		logger.Warn("authentication is DISABLED - not recommended for production")
	}
	return chain
}

// applyMiddleware wraps the handler with middleware chain.
// Order: Request ID → Recovery → Logging → Tracing → Metrics → SLO →
// Security Headers → CORS → Input Validation (with body size limit)
func applyMiddleware(logger *slog.Logger, cfg *config.GatewayConfig, handler http.Handler, tracker *slo.Tracker) http.Handler {
	corsConfig := middleware.DefaultCORSConfig(cfg.Security.CORSAllowedOrigins)
	corsConfig.Logger = logger
	logger.Info("CORS enabled",
		slog.Any("allowed_origins", corsConfig.AllowedOrigins),
		slog.Any("allowed_methods", corsConfig.AllowedMethods),
		slog.Int("max_age", corsConfig.MaxAge))

	chain := hhttp.InputValidation(hhttp.DefaultInputLimits())(handler)
	chain = middleware.CORS(corsConfig)(chain)
	chain = middleware.SecurityHeaders(cfg.Security.HSTS)(chain)
	chain = hhttp.SLOMiddleware(tracker)(chain)
	chain = hhttp.MetricsMiddleware(chain)
	chain = tracing.Middleware(chain)
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)
	return chain
}

// runServer starts the HTTP and gRPC health servers plus the housekeeping
// goroutines, and shuts everything down on SIGINT or SIGTERM.
func runServer(logger *slog.Logger, cfg *config.GatewayConfig, gw *bootstrap.Gateway, components *ServerComponents, version string) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go hhttp.StartRateLimitCleanup(ctx, gw.LimiterStore,
		hhttp.LoadCleanupConfigFromEnv(cfg.RateLimit.Window, gw.Limiter.Config().LimiterType), logger)
	go hhttp.StartRateLimitCleanup(ctx, components.ClientStore,
		hhttp.LoadCleanupConfigFromEnv(cfg.Security.ClientLimit.Window, "client"), logger)
	go components.SLO.Run(ctx, time.Minute)
	go runCacheJanitor(ctx, gw, logger)
	if components.DB != nil {
		go reportDBStats(ctx, components.DB)
	}

	if cfg.Server.GRPCAddr != "" {
		startGRPCHealth(ctx, logger, cfg.Server.GRPCAddr, gw)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", cfg.Server.Addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	if err := gw.Close(shutdownCtx); err != nil {
		logger.Warn("pending breaker alerts dropped", slog.Any("error", err))
	}
	logger.Info("server stopped")
}

func startGRPCHealth(ctx context.Context, logger *slog.Logger, addr string, gw *bootstrap.Gateway) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen for grpc health", slog.String("addr", addr), slog.Any("error", err))
		os.Exit(1)
	}
	hs := grpcapi.NewHealthServer(gw.Service, logging.Component(logger, "grpc-health"))
	go hs.Run(ctx, grpcapi.DefaultRefreshInterval)
	go func() {
		if err := grpcapi.Serve(ctx, lis, hs, logger); err != nil {
			logger.Error("grpc health server failed", slog.Any("error", err))
		}
	}()
}

// runCacheJanitor purges expired bureau responses once a minute; reads
// already skip them, this only returns the memory.
func runCacheJanitor(ctx context.Context, gw *bootstrap.Gateway, logger *slog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := gw.Cache.ClearExpired(); n > 0 {
				logger.Debug("expired cache entries purged", slog.Int("count", n))
			}
		}
	}
}

func reportDBStats(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := database.Stats()
			metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		}
	}
}
