package log

import (
	"log/slog"

	"github.com/hbtools/deckybuild/internal/errors"
)

// Logger provides structured logging with slog
type Logger struct {
	slog   *slog.Logger
	config Config
}

// New creates a new Logger with the given configuration
func New(config Config) *Logger {
	opts := &slog.HandlerOptions{
		Level:     config.Level.ToSlogLevel(),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(config.Output.Writer(), opts)
	default:
		handler = slog.NewTextHandler(config.Output.Writer(), opts)
	}

	return &Logger{
		slog:   slog.New(handler),
		config: config,
	}
}

// Default creates a logger with default configuration
func Default() *Logger {
	return New(DefaultConfig())
}

// Development creates a logger with development configuration
func Development() *Logger {
	return New(DevelopmentConfig())
}

// With returns a new Logger with the given attributes added to all log entries
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(args...),
		config: l.config,
	}
}

// WithError adds error details to the logger.
// If the error is a BuildError, it adds error_code and suggestions.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}

	if buildErr, ok := err.(*errors.BuildError); ok {
		args := []any{
			"error", buildErr.Message,
			"error_code", string(buildErr.Code),
		}

		if len(buildErr.Suggestions) > 0 {
			args = append(args, "suggestions", buildErr.Suggestions)
		}

		if buildErr.Cause != nil {
			args = append(args, "cause", buildErr.Cause.Error())
		}

		return l.With(args...)
	}

	return l.With("error", err.Error())
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// LogError logs a BuildError with full details
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}

	if buildErr, ok := err.(*errors.BuildError); ok {
		args := []any{
			"error_code", string(buildErr.Code),
			"error_message", buildErr.Message,
		}

		if len(buildErr.Suggestions) > 0 {
			args = append(args, "suggestions", buildErr.Suggestions)
		}

		if buildErr.Cause != nil {
			args = append(args, "cause", buildErr.Cause.Error())
		}

		l.Error("stage failed", args...)
	} else {
		l.Error("stage failed", "error", err.Error())
	}
}

// Config returns the logger configuration
func (l *Logger) Config() Config {
	return l.config
}
