package handlers

import (
	"context"

	"job-alert-bot/internal/bot/utils"
	"job-alert-bot/internal/models"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /now runs a forced cycle for the caller. The engine sends the summary.
func HandleNow(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		chatID := c.Chat().ID

		dbCtx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		prefs, err := ctx.Store.GetPreferences(dbCtx, chatID)
		cancel()
		if err != nil {
			ctx.Logger.Error("get preferences failed", zap.Int64("user_id", chatID), zap.Error(err))
			return c.Send(utils.FormatErrorMessage(err))
		}
		if prefs == nil {
			return c.Send(msgStartFirst)
		}

		if err := c.Send("🔎 Fetching jobs...", tele.NoPreview); err != nil {
			return err
		}

		runCtx, cancel := context.WithTimeout(context.Background(), nowTimeout)
		defer cancel()

		sub := models.Subscriber{ID: chatID, Preferences: *prefs}
		res, err := ctx.Engine.RunCycle(runCtx, sub, true)
		if err != nil {
			ctx.Logger.Error("forced cycle failed", zap.Int64("user_id", chatID), zap.Error(err))
			return c.Send(utils.FormatErrorMessage(err))
		}

		ctx.Logger.Debug("forced cycle done",
			zap.Int64("user_id", chatID),
			zap.Int("delivered", res.Delivered),
		)
		return nil
	}
}
