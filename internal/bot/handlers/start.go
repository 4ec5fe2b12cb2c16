package handlers

import (
	"context"

	"job-alert-bot/internal/bot/utils"
	"job-alert-bot/internal/models"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /start command
func HandleStart(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		chatID := c.Chat().ID

		var username string
		if sender := c.Sender(); sender != nil {
			username = sender.Username
		}

		ctx.Logger.Info("user started bot",
			zap.Int64("user_id", chatID),
			zap.String("username", username),
		)

		dbCtx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()

		prefs, err := ctx.Store.GetPreferences(dbCtx, chatID)
		if err != nil {
			ctx.Logger.Error("get preferences failed", zap.Int64("user_id", chatID), zap.Error(err))
			return c.Send("😔 Something went wrong. Please try again later.")
		}

		if prefs == nil {
			defaults := models.DefaultPreferences()
			defaults.Sources = ctx.Sources.NormalizeSources(defaults.Sources)

			if err := ctx.Store.UpsertPreferences(dbCtx, chatID, defaults); err != nil {
				ctx.Logger.Error("failed to create subscriber", zap.Int64("user_id", chatID), zap.Error(err))
				return c.Send("😔 Registration failed. Please try again later.")
			}
			ctx.Logger.Info("new subscriber created", zap.Int64("user_id", chatID))
		}

		msg := utils.FormatHelpMessage() + "\n" + utils.FormatSourcesMessage(ctx.Sources.AvailableTags())

		return c.Send(
			msg,
			utils.CommandsKeyboard(),
			tele.ModeHTML,
			tele.NoPreview,
		)
	}
}
