package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// NewStructuredLogger logs one slog record per request. It expects RequestID
// to run first so every record carries the request id.
func NewStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return middleware.RequestLogger(&StructuredLogger{Logger: logger})
}

type StructuredLogger struct {
	Logger *slog.Logger
}

func (l *StructuredLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	logger := l.Logger.With(
		slog.String("req_id", GetRequestID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)
	return &StructuredLoggerEntry{Logger: logger}
}

type StructuredLoggerEntry struct {
	Logger *slog.Logger
}

func (l *StructuredLoggerEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	l.Logger.Info("request complete",
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Duration("elapsed", elapsed),
	)
}

func (l *StructuredLoggerEntry) Panic(v interface{}, stack []byte) {
	l.Logger.Error("request panic",
		slog.String("panic", fmt.Sprintf("%+v", v)),
		slog.String("stack", string(stack)),
	)
}

// LoggerFrom returns the request-scoped logger set up by NewStructuredLogger,
// or fallback when the middleware is not installed.
func LoggerFrom(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if entry, ok := middleware.GetLogEntry(r).(*StructuredLoggerEntry); ok {
		return entry.Logger
	}
	return fallback
}
