// Package logging constructs the *zap.Logger every other package in this
// module accepts, keyed by level/format/output the way the corpus's own
// ad hoc logging config structs are (see gastrolog's logging.Config) —
// just backed by zap instead of slog, matching the field/message style
// already in use across the loader and streamer (zap.Stringer,
// zap.Error, zap.Int, ...).
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger's level, encoding, and destination.
type Config struct {
	// Level is one of "debug", "info", "warn", "error" (case-insensitive).
	// Defaults to "info" if empty.
	Level string
	// Format is "json" or "console". Defaults to "console" if empty.
	Format string
}

// New builds a *zap.Logger from cfg, writing to stderr the way zap's own
// production/development presets both default to.
func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case "", "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level)
	return zap.New(core), nil
}

// NewNop returns a logger that discards everything, for tests and
// callers that don't want any logging surface.
func NewNop() *zap.Logger {
	return zap.NewNop()
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("logging: unknown level %q", s)
	}
}
