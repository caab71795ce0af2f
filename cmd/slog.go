package main

import (
	"log/slog"
	"os"

	"github.com/loganlanou/chsn-merch/internal/logging"
	"github.com/loganlanou/chsn-merch/service"
)

// setupLogging uses colored console logs in development or at debug level and
// JSON records everywhere else, at the configured LOG_LEVEL.
func setupLogging(config *service.Config) {
	opts := logging.ForEnvironment(config.Environment, config.LogLevel)
	logging.Setup(os.Stdout, opts)
	slog.Debug("logging configured", "level", config.LogLevel.String(), "console", opts.Console)
}
