// Package logging provides the structured application logger used across the service.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ApplicationLogger defines the interface for structured application logging.
type ApplicationLogger interface {
	Debug(ctx context.Context, message string, fields Fields)
	Info(ctx context.Context, message string, fields Fields)
	Warn(ctx context.Context, message string, fields Fields)
	Error(ctx context.Context, message string, fields Fields)
	ErrorWithError(ctx context.Context, err error, message string, fields Fields)
	WithComponent(component string) ApplicationLogger
}

// Fields represents structured logging fields.
type Fields map[string]interface{}

// Config represents logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // json, text
	Output string // stdout, stderr
	// Writer overrides Output when set. Tests point it at a buffer.
	Writer io.Writer
}

// Log entry keys.
const (
	keyTimestamp     = "timestamp"
	keyLevel         = "level"
	keyMessage       = "message"
	keyCorrelationID = "correlation_id"
	keyComponent     = "component"
	keyError         = "error"
	keyMetadata      = "metadata"
	keyContext       = "context"
)

type applicationLoggerImpl struct {
	logger    *slog.Logger
	component string
}

// NewApplicationLogger creates a new application logger.
func NewApplicationLogger(config Config) (ApplicationLogger, error) {
	level, err := parseLevel(config.Level)
	if err != nil {
		return nil, err
	}

	out := config.Writer
	if out == nil {
		switch config.Output {
		case "", "stdout":
			out = os.Stdout
		case "stderr":
			out = os.Stderr
		default:
			return nil, fmt.Errorf("invalid log output: %s", config.Output)
		}
	}

	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: renameBuiltins}

	var handler slog.Handler
	switch config.Format {
	case "", "json":
		handler = slog.NewJSONHandler(out, opts)
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", config.Format)
	}

	return &applicationLoggerImpl{logger: slog.New(handler), component: "default"}, nil
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
}

func renameBuiltins(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = keyTimestamp
		a.Value = slog.StringValue(a.Value.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	case slog.LevelKey:
		a.Key = keyLevel
	case slog.MessageKey:
		a.Key = keyMessage
	}
	return a
}

// Debug logs debug messages.
func (l *applicationLoggerImpl) Debug(ctx context.Context, message string, fields Fields) {
	l.log(ctx, slog.LevelDebug, message, nil, fields)
}

// Info logs info messages.
func (l *applicationLoggerImpl) Info(ctx context.Context, message string, fields Fields) {
	l.log(ctx, slog.LevelInfo, message, nil, fields)
}

// Warn logs warning messages.
func (l *applicationLoggerImpl) Warn(ctx context.Context, message string, fields Fields) {
	l.log(ctx, slog.LevelWarn, message, nil, fields)
}

// Error logs error messages.
func (l *applicationLoggerImpl) Error(ctx context.Context, message string, fields Fields) {
	l.log(ctx, slog.LevelError, message, nil, fields)
}

// ErrorWithError logs error messages with an error object.
func (l *applicationLoggerImpl) ErrorWithError(ctx context.Context, err error, message string, fields Fields) {
	l.log(ctx, slog.LevelError, message, err, fields)
}

// WithComponent creates a new logger instance with a specific component.
func (l *applicationLoggerImpl) WithComponent(component string) ApplicationLogger {
	return &applicationLoggerImpl{logger: l.logger, component: component}
}

func (l *applicationLoggerImpl) log(ctx context.Context, level slog.Level, message string, err error, fields Fields) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, 6)
	attrs = append(attrs,
		slog.String(keyCorrelationID, getOrGenerateCorrelationID(ctx)),
		slog.String(keyComponent, l.component),
	)
	if err != nil {
		attrs = append(attrs, slog.String(keyError, err.Error()))
	}
	if len(fields) > 0 {
		attrs = append(attrs, slog.Any(keyMetadata, map[string]interface{}(fields)))
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, slog.Group(keyContext, slog.String("request_id", requestID)))
	}

	l.logger.LogAttrs(ctx, level, message, attrs...)
}

type noopLogger struct{}

// NewNoopLogger returns a logger that discards every entry.
func NewNoopLogger() ApplicationLogger { return noopLogger{} }

func (noopLogger) Debug(context.Context, string, Fields)                 {}
func (noopLogger) Info(context.Context, string, Fields)                  {}
func (noopLogger) Warn(context.Context, string, Fields)                  {}
func (noopLogger) Error(context.Context, string, Fields)                 {}
func (noopLogger) ErrorWithError(context.Context, error, string, Fields) {}
func (n noopLogger) WithComponent(string) ApplicationLogger              { return n }
