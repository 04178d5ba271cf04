package telegram

import "gopkg.in/telebot.v3"

// Client sends messages through the Telegram bot. Alerts and command
// replies go through it so the app layer does not depend on telebot's Bot.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
