package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramSender is the subset of the bot API the alerter uses.
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAlerter pushes back-office alerts to the managers' chat.
type TelegramAlerter struct {
	bot    telegramSender
	chatID int64
}

func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramAlerter{bot: bot, chatID: chatID}, nil
}

// NewTelegramAlerterWithSender is used by tests to inject a fake sender.
func NewTelegramAlerterWithSender(sender telegramSender, chatID int64) *TelegramAlerter {
	return &TelegramAlerter{bot: sender, chatID: chatID}
}

func (a *TelegramAlerter) Alert(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(a.chatID, text)
	_, err := a.bot.Send(msg)
	return err
}
