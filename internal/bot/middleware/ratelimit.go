package middleware

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	MaxRequestsPerMinute = 30
)

// Counter counts requests per user in a fixed window.
type Counter interface {
	IncrementUserRateLimit(ctx context.Context, userID int64) (int64, error)
}

// RateLimit rejects commands from users above MaxRequestsPerMinute. Counter
// failures let the request through.
func RateLimit(counter Counter, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			count, err := counter.IncrementUserRateLimit(ctx, user.ID)
			if err != nil {
				logger.Error("failed to check rate limit",
					zap.Int64("user_id", user.ID),
					zap.Error(err),
				)
				return next(c)
			}

			if count > MaxRequestsPerMinute {
				logger.Warn("rate limit exceeded",
					zap.Int64("user_id", user.ID),
					zap.Int64("count", count),
				)

				// Only the first rejected request in a window gets a reply.
				if count > MaxRequestsPerMinute+1 {
					return nil
				}
				return c.Reply(fmt.Sprintf(
					"⚠️ Too many requests. Please wait a minute.\n"+
						"Limit: %d requests per minute.",
					MaxRequestsPerMinute,
				))
			}

			return next(c)
		}
	}
}
