// Package logging provides structured logging utilities with context propagation.
//
// Loggers are JSON by default (LOG_FORMAT=text for local use) with the level
// taken from LOG_LEVEL. Request-scoped loggers carry the request id set by
// the requestid middleware.
//
// Example usage:
//
//	logger := logging.New(os.Stdout, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
//	slog.SetDefault(logger)
//
//	func handle(ctx context.Context) {
//	    logging.WithRequestID(ctx, slog.Default()).Info("processing request")
//	}
package logging
