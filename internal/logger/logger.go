// Package logger wraps a process-wide zap logger.
//
// The daemon logs from the main loop, the alarm schedule goroutines and the
// HTTP server, so every package goes through the helpers here instead of
// carrying a logger around.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	global *zap.SugaredLogger
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
)

func init() {
	SetLogger(New(level))
}

// New creates a console logger writing to stdout at the given level.
// A nil level uses the shared atomic level, so SetLevel affects it.
func New(lvl zapcore.LevelEnabler, options ...zap.Option) *zap.SugaredLogger {
	if lvl == nil {
		lvl = level
	}

	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "time",
		MessageKey:       "message",
		LevelKey:         "level",
		CallerKey:        "caller",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	})

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), lvl)
	return zap.New(core, options...).Sugar()
}

// ParseLevel converts a level name to a zap level.
// The second return value is false for unknown names.
func ParseLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info", "":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// Logger returns the global logger.
func Logger() *zap.SugaredLogger {
	return global
}

// SetLogger replaces the global logger. Not safe to call concurrently with logging.
func SetLogger(l *zap.SugaredLogger) {
	global = l
}

// SetLevel changes the level of loggers built with a nil level.
func SetLevel(lvl zapcore.Level) {
	level.SetLevel(lvl)
}

// Level returns the shared level.
func Level() zapcore.Level {
	return level.Level()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = global.Sync()
}

func Debugf(format string, args ...any) { global.Debugf(format, args...) }

func Infof(format string, args ...any) { global.Infof(format, args...) }

func Warnf(format string, args ...any) { global.Warnf(format, args...) }

func Errorf(format string, args ...any) { global.Errorf(format, args...) }

// InfoKV logs a message with structured key-value pairs.
func InfoKV(msg string, kvs ...any) { global.Infow(msg, kvs...) }

// WarnKV logs a warning with structured key-value pairs.
func WarnKV(msg string, kvs ...any) { global.Warnw(msg, kvs...) }
