// Package logger is a thin key/value logging facade over log/slog. Context
// variants attach the chi request id when one is present.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

var base = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Init installs a JSON logger at the given level ("debug", "info", "warn",
// "error"); unknown levels mean info.
func Init(level string) {
	InitWriter(os.Stdout, level)
}

func InitWriter(w io.Writer, level string) {
	base = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
	slog.SetDefault(base)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func Info(msg string, args ...any)  { base.Info(msg, args...) }
func Warn(msg string, args ...any)  { base.Warn(msg, args...) }
func Error(msg string, args ...any) { base.Error(msg, args...) }
func Debug(msg string, args ...any) { base.Debug(msg, args...) }

func InfoCtx(ctx context.Context, msg string, args ...any) {
	base.InfoContext(ctx, msg, withRequestID(ctx, args)...)
}

func WarnCtx(ctx context.Context, msg string, args ...any) {
	base.WarnContext(ctx, msg, withRequestID(ctx, args)...)
}

func ErrorCtx(ctx context.Context, msg string, args ...any) {
	base.ErrorContext(ctx, msg, withRequestID(ctx, args)...)
}

func withRequestID(ctx context.Context, args []any) []any {
	if id := middleware.GetReqID(ctx); id != "" {
		return append([]any{"request_id", id}, args...)
	}
	return args
}
