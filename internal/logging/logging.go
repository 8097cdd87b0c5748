// Package logging wires the process-wide zerolog logger. Output goes to
// stderr in console format and, when enabled, to a rotating log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"organizer-api/internal/config"
)

var (
	logger   zerolog.Logger
	initOnce sync.Once
)

// Init configures the global logger from cfg. Only the first call has effect.
func Init(cfg config.LogConfig) {
	initOnce.Do(func() { setup(cfg) })
}

func setup(cfg config.LogConfig) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		if cfg.Level != "" {
			fmt.Fprintf(os.Stderr, "invalid log level %q, defaulting to info\n", cfg.Level)
		}
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	writers := []io.Writer{
		zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = os.Stderr
			w.TimeFormat = time.Kitchen
		}),
	}

	if cfg.EnableFile {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if lvl <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	logger = ctx.Logger()
	log.Logger = logger
}

// Logger returns the global logger, initializing it with defaults on first use.
func Logger() *zerolog.Logger {
	initOnce.Do(func() {
		cfg := config.Default().Log
		if config.AppConfig != nil {
			cfg = config.AppConfig.Log
		}
		setup(cfg)
	})
	return &logger
}
