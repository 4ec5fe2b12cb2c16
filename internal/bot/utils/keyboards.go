package utils

import tele "gopkg.in/telebot.v3"

// CommandsKeyboard is a reply keyboard with the everyday commands.
func CommandsKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	btnNow := menu.Text("/now")
	btnStatus := menu.Text("/status")
	btnSources := menu.Text("/sources")
	btnHelp := menu.Text("/help")

	menu.Reply(
		menu.Row(btnNow, btnStatus),
		menu.Row(btnSources, btnHelp),
	)

	return menu
}
