package handlers

import (
	"context"

	"job-alert-bot/internal/bot/utils"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const msgStartFirst = "Run /start first."

// /status shows the stored settings.
func HandleStatus(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		chatID := c.Chat().ID

		dbCtx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()

		prefs, err := ctx.Store.GetPreferences(dbCtx, chatID)
		if err != nil {
			ctx.Logger.Error("get preferences failed", zap.Int64("user_id", chatID), zap.Error(err))
			return c.Send("😔 Something went wrong. Please try again later.")
		}
		if prefs == nil {
			return c.Send(msgStartFirst)
		}

		delivered, err := ctx.Store.CountDelivered(dbCtx, chatID)
		if err != nil {
			ctx.Logger.Warn("count delivered failed", zap.Int64("user_id", chatID), zap.Error(err))
		}

		return c.Send(
			utils.FormatStatusMessage(prefs, delivered, ctx.location()),
			tele.ModeHTML,
			tele.NoPreview,
		)
	}
}
