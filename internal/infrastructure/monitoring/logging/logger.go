// Package logging is the structured logger of hbond-profiler.  Components
// take a Logger; zap stays behind this package.
package logging

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Logger is implemented by the zap logger, the no-op logger and the test
// recorder.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// Fatal exits the process after logging.  Only cmd/ calls it.
	Fatal(msg string, fields ...Field)

	With(fields ...Field) Logger
	// Named appends name to the logger name, dot separated.
	Named(name string) Logger
	Sync() error
}

// LogConfig is the "log" configuration section.
type LogConfig struct {
	Level            string   `mapstructure:"level" yaml:"level" json:"level"`
	Format           string   `mapstructure:"format" yaml:"format" json:"format"` // json or console
	OutputPaths      []string `mapstructure:"output_paths" yaml:"output_paths" json:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths" yaml:"error_output_paths" json:"error_output_paths"`
}

// ParseLevel maps a level name to zap.  Unknown names are info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn, "warning":
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func orDefault(paths []string, def string) []string {
	if len(paths) == 0 {
		return []string{def}
	}
	return paths
}

func encoderFor(format string) (string, zapcore.EncoderConfig) {
	name, enc := "json", zap.NewProductionEncoderConfig()
	if strings.EqualFold(format, "console") {
		name, enc = "console", zap.NewDevelopmentEncoderConfig()
	}
	enc.TimeKey = "ts"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return name, enc
}

// NewLogger builds a zap logger from cfg, writing to stdout and stderr
// unless paths are given.
func NewLogger(cfg LogConfig) (Logger, error) {
	encoding, encCfg := encoderFor(cfg.Format)
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	z, err := zap.Config{
		Level:            level,
		Development:      encoding == "console",
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      orDefault(cfg.OutputPaths, "stdout"),
		ErrorOutputPaths: orDefault(cfg.ErrorOutputPaths, "stderr"),
	}.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return &zapLogger{z: z, level: &level}, nil
}

// NewLoggerFromCore wraps core.  Its level cannot be changed with SetLevel.
func NewLoggerFromCore(core zapcore.Core) Logger {
	return &zapLogger{z: zap.New(core, zap.AddCallerSkip(1))}
}

type zapLogger struct {
	z     *zap.Logger
	level *zap.AtomicLevel // shared with children; nil when fixed
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, zapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, zapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, zapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, zapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, zapFields(fields)...) }
func (l *zapLogger) Sync() error                       { return l.z.Sync() }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(zapFields(fields)...), level: l.level}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name), level: l.level}
}

// SetLevel moves the minimum level of l and all loggers derived from it.  It
// reports false when l has no adjustable level.
func SetLevel(l Logger, level string) bool {
	zl, ok := l.(*zapLogger)
	if !ok || zl.level == nil {
		return false
	}
	zl.level.SetLevel(ParseLevel(level))
	return true
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field)  {}
func (nopLogger) Warn(string, ...Field)  {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) Fatal(string, ...Field) {}
func (n nopLogger) With(...Field) Logger { return n }
func (n nopLogger) Named(string) Logger  { return n }
func (nopLogger) Sync() error            { return nil }

// NewNopLogger discards everything.
func NewNopLogger() Logger { return nopLogger{} }

type holder struct{ Logger }

var process atomic.Value

func init() { process.Store(holder{nopLogger{}}) }

// SetDefault installs the process logger used by cmd/ wiring.  Nil is
// ignored.
func SetDefault(l Logger) {
	if l != nil {
		process.Store(holder{l})
	}
}

// Default returns the process logger.
func Default() Logger { return process.Load().(holder).Logger }

//Personal.AI order the ending
