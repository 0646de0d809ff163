package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/wire"
	"github.com/trebuchet-org/catapult/internal/config"
)

// LevelEnv overrides the log level: debug, info, warn or error
const LevelEnv = "CATAPULT_LOG_LEVEL"

var LoggingSet = wire.NewSet(
	NewLogger,
)

// NewLogger creates the stderr logger for cfg
func NewLogger(cfg *config.RuntimeConfig) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, handlerOptions(cfg)))
}

// handlerOptions resolves the level from the environment; --debug wins and
// adds timestamps and source locations
func handlerOptions(cfg *config.RuntimeConfig) *slog.HandlerOptions {
	debug := cfg != nil && cfg.Debug

	opts := &slog.HandlerOptions{
		Level:     parseLevel(os.Getenv(LevelEnv)),
		AddSource: debug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if !debug {
					return slog.Attr{}
				}
			case slog.SourceKey:
				if source, ok := a.Value.Any().(*slog.Source); ok {
					source.File = shortPath(source.File)
				}
			}
			return a
		},
	}
	if debug {
		opts.Level = slog.LevelDebug
	}
	return opts
}

// parseLevel maps a level name to a slog level, defaulting to info
func parseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// shortPath trims file to its path inside the module, or its base name
func shortPath(file string) string {
	const marker = "/catapult/"
	if idx := strings.LastIndex(file, marker); idx != -1 {
		return file[idx+len(marker):]
	}
	return filepath.Base(file)
}
