package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/freecron-bot/internal/domain"
)

// Notifier sends direct messages. A member's private chat ID equals their
// user ID; the send fails if they never started the bot.
type Notifier struct {
	api BotAPI
}

func NewNotifier(api BotAPI) *Notifier { return &Notifier{api: api} }

func (n *Notifier) Send(_ context.Context, to domain.UserID, text string) error {
	_, err := n.api.Send(tgbotapi.NewMessage(int64(to), text))
	return err
}

// ChatBroadcaster posts HTML announcements to one chat.
type ChatBroadcaster struct {
	api    BotAPI
	chatID int64
}

func NewChatBroadcaster(api BotAPI, chatID int64) *ChatBroadcaster {
	return &ChatBroadcaster{api: api, chatID: chatID}
}

func (b *ChatBroadcaster) Announce(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}
