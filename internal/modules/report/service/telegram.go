package service

import (
	"context"

	"paper_bot/internal/models"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

// botSender - то, что нужно от *tgbot.BotAPI.
type botSender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Telegram шлёт текст события в один чат.
type Telegram struct {
	bot    botSender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot")
	}
	return &Telegram{bot: b, chatID: chatID}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(_ context.Context, e models.Event) error {
	_, err := t.bot.Send(tgbot.NewMessage(t.chatID, e.Text()))
	return errors.Wrap(err, "telegram send")
}
