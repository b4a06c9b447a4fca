// Package logger настраивает структурированное логирование (log/slog).
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New возвращает логгер: text/debug для development, JSON/info для остальных окружений.
// Созданный логгер также становится slog.Default.
func New(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler).With(slog.String("service", "villa-bot"))
	slog.SetDefault(log)
	return log
}

// Discard логгер для тестов
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
