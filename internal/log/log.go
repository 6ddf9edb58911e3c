// Package log configures the process-wide structured logger. Output goes
// to a rotated file in the data directory so that routine background
// failures never interrupt the timing workflow.
package log

import (
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSizeMB  = 5
	maxBackups = 3
	maxAgeDays = 28
)

// Init installs a JSON slog handler writing through a rotating file
// logger and returns the configured logger.
func Init(pathToLogFile string) *slog.Logger {
	w := &lumberjack.Logger{
		Filename:   pathToLogFile,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	slog.SetDefault(logger)

	return logger
}
