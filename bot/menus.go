package bot

import (
	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

// Per-role command lists for Telegram's menu button (the "/" icon in the chat input).
// Participants get the default scope; the admin chat gets its own list on startup.

var commandsParticipant = []tgbotapi.BotCommand{
	{Command: "start", Description: "Join the contest"},
	{Command: "stats", Description: "Your referrals and position"},
	{Command: "top", Description: "Leaderboard"},
	{Command: "help", Description: "Show available commands"},
}

var commandsAdmin = append(append([]tgbotapi.BotCommand{}, commandsParticipant...),
	tgbotapi.BotCommand{Command: "status", Description: "Contest state and member count"},
)

// setDefaultCommands sets the bot menu for everyone.
func (t *TgBot) setDefaultCommands() {
	_, err := t.api.SetMyCommands(commandsParticipant, &tgbotapi.SetMyCommandsOpts{
		Scope: tgbotapi.BotCommandScopeDefault{},
	})
	if err != nil {
		t.log.Warn("setting default commands", "error", err)
	}
}

// setAdminCommands adds admin-only commands to the admin's chat menu.
func (t *TgBot) setAdminCommands() {
	if t.config.AdminID == 0 {
		return
	}
	_, err := t.api.SetMyCommands(commandsAdmin, &tgbotapi.SetMyCommandsOpts{
		Scope: tgbotapi.BotCommandScopeChat{ChatId: t.config.AdminID},
	})
	if err != nil {
		t.log.Warn("setting admin commands", "chat_id", t.config.AdminID, "error", err)
	}
}
