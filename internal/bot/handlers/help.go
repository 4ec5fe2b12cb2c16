package handlers

import (
	"job-alert-bot/internal/bot/utils"

	tele "gopkg.in/telebot.v3"
)

// /help
func HandleHelp(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send(
			utils.FormatHelpMessage(),
			utils.CommandsKeyboard(),
			tele.ModeHTML,
			tele.NoPreview,
		)
	}
}

func HandlePing(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send("✅ Bot is alive!")
	}
}

func HandleSources(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send(
			utils.FormatSourcesMessage(ctx.Sources.AvailableTags()),
			tele.ModeHTML,
			tele.NoPreview,
		)
	}
}
