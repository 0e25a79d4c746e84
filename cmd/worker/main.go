package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"

	"credit-gateway/internal/bootstrap"
	"credit-gateway/internal/config"
	"credit-gateway/internal/handler/http/respond"
	pgRepo "credit-gateway/internal/infra/adapter/persistence/postgres"
	"credit-gateway/internal/infra/db"
	workerPkg "credit-gateway/internal/infra/worker"
	"credit-gateway/internal/observability/logging"
	"credit-gateway/internal/observability/metrics"
	"credit-gateway/internal/resilience/circuitbreaker"
	"credit-gateway/internal/usecase/creditcheck"
)

// waitForMigrations blocks until the API server has created the clients table.
func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM clients LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	cfg, err := config.Load(os.Getenv("SENTINEL_CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	slog.SetDefault(logger)

	database := initDatabase(logger, cfg.DatabaseURL)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("max_age", workerConfig.MaxAge),
		slog.Int("batch", workerConfig.Batch),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	gw := bootstrap.NewGateway(&cfg, prometheus.DefaultRegisterer, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gw.Close(closeCtx); err != nil {
			logger.Warn("pending breaker alerts dropped", slog.Any("error", err))
		}
	}()

	svc := &creditcheck.Service{
		Repo: pgRepo.NewClientRepo(circuitbreaker.NewDBCircuitBreaker(database,
			circuitbreaker.WithStateObserver(circuitbreaker.StateObserverFunc(metrics.RecordBreakerTransition)))),
		Assessor: gw.Service,
		Logger:   logging.Component(logger, "recheck"),
	}

	startMetricsServer(ctx, logger, gw.Service)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	healthServer.AddCheck("database", database.PingContext)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	runCronWorker(ctx, logger, svc, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger, dsn string) *sql.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database, err := db.Open(ctx, dsn)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	waitForMigrations(logger, database)
	return database
}

// runCronWorker schedules the re-check job and blocks until ctx is done, then
// waits for a running job to finish.
func runCronWorker(ctx context.Context, logger *slog.Logger, svc *creditcheck.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runRecheckJob(ctx, logger, svc, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("worker stopping, waiting for running job")
	<-c.Stop().Done()
	logger.Info("worker stopped")
}

// runRecheckJob re-assesses clients whose stored evaluation is older than
// cfg.MaxAge, at most cfg.Batch per run.
func runRecheckJob(ctx context.Context, logger *slog.Logger, svc *creditcheck.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("credit re-check started")

	jobCtx, cancel := context.WithTimeout(ctx, cfg.JobTimeout)
	defer cancel()

	res, err := svc.RecheckStale(jobCtx, cfg.MaxAge, cfg.Batch)
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordClientsProcessed(res)
	if err != nil {
		logger.Error("credit re-check failed", slog.String("error", respond.SanitizeError(err)))
		metrics.RecordJobRun("failure")
		return
	}

	metrics.RecordJobRun("success")
	metrics.RecordLastSuccess()
	logger.Info("credit re-check completed",
		slog.Int("checked", res.Checked),
		slog.Int("failed", res.Failed),
		slog.Int("skipped", res.Skipped),
		slog.Duration("duration", time.Since(startTime)))
}
