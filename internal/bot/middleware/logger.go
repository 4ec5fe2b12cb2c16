package middleware

import (
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logger middleware for logging all incoming msgs
func Logger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()

			// get user info
			user := c.Sender()
			var userID int64
			var username string

			if user != nil {
				userID = user.ID
				username = user.Username
			}

			// get msg info
			var chatID int64
			if chat := c.Chat(); chat != nil {
				chatID = chat.ID
			}
			messageText := c.Text()

			err := next(c)

			duration := time.Since(start)

			fields := []zap.Field{
				zap.Int64("user_id", userID),
				zap.String("username", username),
				zap.Int64("chat_id", chatID),
				zap.String("text", messageText),
				zap.Duration("duration", duration),
			}

			if err != nil {
				fields = append(fields, zap.Error(err))
				logger.Error("handler error", fields...)
			} else {
				logger.Info("request handled", fields...)
			}

			return err
		}
	}
}