package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/xrpscan/ledgerlens/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log stays a no-op logger until New is called, so library packages can
// log unconditionally (e.g. from tests).
var Log zerolog.Logger = zerolog.Nop()
var loggerOnce sync.Once

func New() {
	loggerOnce.Do(func() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		level, err := zerolog.ParseLevel(config.EnvLogLevel())
		if err == nil && config.EnvLogLevel() != "" {
			zerolog.SetGlobalLevel(level)
		}

		// stdout is reserved for command output, console logs go to stderr
		var consoleWriter io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		if config.EnvLogType() == "json" {
			consoleWriter = os.Stderr
		}

		writers := []io.Writer{consoleWriter}

		if config.EnvLogFileEnabled() {
			logFilePath := config.EnvLogFilePath()
			logDir := filepath.Dir(logFilePath)
			if err := os.MkdirAll(logDir, 0755); err != nil {
				tempLogger := zerolog.New(consoleWriter).With().Timestamp().Logger()
				tempLogger.Error().
					Err(err).Str("log_dir", logDir).Msg("Failed to create log directory, logging to console only")
			} else {
				writers = append(writers, &lumberjack.Logger{
					Filename:   logFilePath,
					MaxSize:    config.EnvLogFileMaxSize(), // MB
					MaxBackups: config.EnvLogFileMaxBackups(),
					MaxAge:     config.EnvLogFileMaxAge(), // days
					Compress:   true,
				})

				tempLogger := zerolog.New(consoleWriter).With().Timestamp().Logger()
				tempLogger.Info().
					Str("log_file", logFilePath).
					Int("max_size_mb", config.EnvLogFileMaxSize()).
					Int("max_backups", config.EnvLogFileMaxBackups()).
					Int("max_age_days", config.EnvLogFileMaxAge()).
					Msg("File logging enabled")
			}
		}

		Log = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	})
}
