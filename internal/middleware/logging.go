package middleware

import (
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process-wide structured logger, JSON on stdout. Handlers
// use it directly for events that fall outside the per-request log line,
// like contact-mail delivery failures.
var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// StructuredLogger emits one line per request. The user id and request id
// attributes appear only once an upstream middleware has resolved them.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		attrs := []any{
			slog.Int("status", c.Response().StatusCode()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get("User-Agent")),
		}

		if uid := c.Locals("userID"); uid != nil {
			attrs = append(attrs, slog.Any("user_id", uid))
		}
		if rid := c.Locals("requestid"); rid != nil {
			attrs = append(attrs, slog.Any("request_id", rid))
		}

		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			Logger.Error("request failed", attrs...)
		} else {
			Logger.Info("request processed", attrs...)
		}

		return err
	}
}
