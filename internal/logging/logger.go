// Package logging provides structured logging for the valuation service.
// It wraps zerolog behind a small field-oriented API.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity of a log message
type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelFatal LogLevel = "fatal"
)

// LogFormat represents the output format for logs
type LogFormat string

const (
	FormatJSON LogFormat = "json"
	FormatText LogFormat = "text"
)

// Logger provides structured logging capabilities
type Logger struct {
	level  LogLevel
	format LogFormat
	zl     zerolog.Logger
}

// NewLogger creates a new logger writing to stdout
func NewLogger(level LogLevel, format LogFormat) *Logger {
	return newLogger(level, format, os.Stdout)
}

func newLogger(level LogLevel, format LogFormat, output io.Writer) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if format == FormatText {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
		}
	}

	zl := zerolog.New(output).
		Level(toZerologLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{level: level, format: format, zl: zl}
}

func toZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		level:  l.level,
		format: l.format,
		zl:     l.zl.With().Interface(key, value).Logger(),
	}
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return &Logger{
		level:  l.level,
		format: l.format,
		zl:     l.zl.With().Fields(fields).Logger(),
	}
}

// WithError adds an error to the logger context
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return &Logger{
		level:  l.level,
		format: l.format,
		zl:     l.zl.With().Err(err).Logger(),
	}
}

// Debug logs a debug message
func (l *Logger) Debug(message string) { l.zl.Debug().Msg(message) }

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) { l.zl.Debug().Msgf(format, args...) }

// Info logs an info message
func (l *Logger) Info(message string) { l.zl.Info().Msg(message) }

// Warn logs a warning message
func (l *Logger) Warn(message string) { l.zl.Warn().Msg(message) }

// Error logs an error message
func (l *Logger) Error(message string) { l.zl.Error().Msg(message) }

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(message string) {
	l.zl.WithLevel(zerolog.FatalLevel).Msg(message)
	os.Exit(1)
}

// SetOutput redirects the logger. Context fields are reset.
func (l *Logger) SetOutput(w io.Writer) {
	*l = *newLogger(l.level, l.format, w)
}

var globalLogger = NewLogger(LevelInfo, FormatJSON)

// InitGlobalLogger initializes the global logger
func InitGlobalLogger(level LogLevel, format LogFormat) {
	globalLogger = NewLogger(level, format)
}

// GetGlobalLogger returns the global logger instance
func GetGlobalLogger() *Logger {
	return globalLogger
}

type contextKey struct{}

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext retrieves the logger from context, or the global logger
func FromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
			return logger
		}
	}
	return globalLogger
}

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// ParseLogFormat parses a string into a LogFormat
func ParseLogFormat(format string) LogFormat {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text", "console":
		return FormatText
	default:
		return FormatJSON
	}
}
