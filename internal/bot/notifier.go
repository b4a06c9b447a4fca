package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/villa_bot/internal/config"
	"github.com/ivanoskov/villa_bot/internal/service"
)

// NewChatNotifier возвращает отправителя уведомлений; без адресата: nil
func NewChatNotifier(api botAPI, target *config.ChatTarget) service.Notifier {
	if target == nil {
		return nil
	}
	return &ChatNotifier{api: api, target: *target}
}

// ChatNotifier отправляет уведомления о заявках в группу или канал
type ChatNotifier struct {
	api    botAPI
	target config.ChatTarget
}

func (n *ChatNotifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if n.target.Username != "" {
		msg = tgbotapi.NewMessageToChannel(n.target.Username, text)
	} else {
		msg = tgbotapi.NewMessage(n.target.ID, text)
	}
	msg.DisableWebPagePreview = true

	_, err := n.api.Send(msg)
	return err
}
