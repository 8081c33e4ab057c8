package logger

import (
	"log/slog"
	"os"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/configs"
)

// NewLogger builds the process logger: text at Debug for dev, JSON at
// Info otherwise.
func NewLogger(cfg *configs.Config) *slog.Logger {
	switch cfg.Env {
	case "dev":
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	default:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
}
