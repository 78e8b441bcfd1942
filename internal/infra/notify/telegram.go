package notify

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// TelegramRenderer mirrors toasts to a linked Telegram chat, for students who
// want to hear about replies while the dashboard tab is closed. Hide is a
// no-op: sent messages are not recalled.
type TelegramRenderer struct {
	bot    *telebot.Bot
	chatID int64
	log    *logrus.Entry
}

func NewTelegramRenderer(bot *telebot.Bot, chatID int64, log *logrus.Entry) *TelegramRenderer {
	return &TelegramRenderer{bot: bot, chatID: chatID, log: log}
}

func (r *TelegramRenderer) Show(t ActiveToast) {
	text := t.Message
	if t.TargetURL != "" {
		text = fmt.Sprintf("%s\n%s", t.Message, t.TargetURL)
	}

	recipient := &telebot.User{ID: r.chatID}
	if _, err := r.bot.Send(recipient, text, &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		r.log.WithError(err).Warn("Could not mirror notification to Telegram.")
	}
}

func (r *TelegramRenderer) Hide(ActiveToast) {}
