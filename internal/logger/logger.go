// Package logger writes one JSON record per event with the service name, an action tag
// and free-form attributes.
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drivelane/drivelane/internal/types"
)

var (
	hostname, _ = os.Hostname()
	serviceName = "drivelane"
	base        = newLogger(os.Stdout, slog.LevelInfo)
)

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func SetServiceName(name string) {
	serviceName = name
}

// SetOutput redirects logs; debug enables DEBUG records.
func SetOutput(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	base = newLogger(w, level)
}

func with(action string) *slog.Logger {
	return base.With("service", serviceName, "hostname", hostname, "action", action)
}

func Debug(action, message string, attrs ...any) {
	with(action).Debug(message, attrs...)
}

func Info(action, message string, attrs ...any) {
	with(action).Info(message, attrs...)
}

func Warn(action, message string, err error, attrs ...any) {
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	with(action).Warn(message, attrs...)
}

func Error(action, message string, err error, attrs ...any) {
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	with(action).Error(message, attrs...)
}

// Middleware tags each request with an id and logs it once finished.
func Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader(types.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set(types.ContextRequestIDKey, requestID)
		ctx.Header(types.RequestIDHeader, requestID)

		start := time.Now()
		ctx.Next()

		attrs := []any{
			"request_id", requestID,
			"method", ctx.Request.Method,
			"path", ctx.FullPath(),
			"status", ctx.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if len(ctx.Errors) > 0 {
			attrs = append(attrs, "errors", ctx.Errors.String())
		}

		if ctx.Writer.Status() >= 500 {
			with("http_request").Error("request failed", attrs...)
			return
		}
		with("http_request").Info("request handled", attrs...)
	}
}

// RequestID returns the id assigned by Middleware, if any.
func RequestID(ctx *gin.Context) string {
	return ctx.GetString(types.ContextRequestIDKey)
}
