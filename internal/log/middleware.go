package log

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"bakery/internal/core"
)

type contextKey string

// LoggerContextKey is the context key for the request-scoped logger.
const LoggerContextKey contextKey = "logger"

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from ctx, falling back to the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// GinMiddleware puts a request-scoped logger into the request context and
// logs each completed request. requestID may be nil.
func GinMiddleware(logger *Logger, requestID func(*gin.Context) string) gin.HandlerFunc {
	sl := NewStructuredLogger(logger.WithComponent(ComponentHTTP))
	return func(c *gin.Context) {
		start := time.Now()

		reqLogger := logger
		id := ""
		if requestID != nil {
			id = requestID(c)
		}
		if id != "" {
			reqLogger = logger.With(FieldRequestID, id)
		}
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), reqLogger))

		c.Next()

		sl.LogHTTPEnd(c.Request.Context(), c, time.Since(start), id)
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs a completed request at a level chosen by status code.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, c *gin.Context, elapsed time.Duration, requestID string) {
	status := c.Writer.Status()
	level := slog.LevelInfo
	if status >= 400 && status < 500 {
		level = slog.LevelWarn
	} else if status >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(c.Request.Method, c.Request.URL.Path, c.Request.URL.RawQuery, c.Request.UserAgent()).
		WithHTTPResponse(status, elapsed.Milliseconds()).
		WithClientIP(c.ClientIP()).
		WithRequestID(requestID)
	if len(c.Errors) > 0 {
		fields[FieldError] = c.Errors.String()
	}

	sl.logger.LogContext(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogTransaction records a successful mutation.
func (sl *StructuredLogger) LogTransaction(ctx context.Context, op string, t core.Transaction) {
	fields := NewFields().
		WithTransaction(t).
		WithOperation(op)
	sl.logger.WithComponent(ComponentTransaction).InfoContext(ctx, "Transaction "+op+"d", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.
		WithError(err).
		WithOperation(operation)
	sl.logger.WithComponent(component).ErrorContext(ctx, msg, all.ToSlice()...)
}
