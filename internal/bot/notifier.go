package bot

import (
	"context"

	"github.com/m3rciful/typekeeper/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Notifier sends reminder texts to private chats. The chat id of a
// private chat equals the user id.
type Notifier struct {
	bot helpers.Messenger
}

// NewNotifier wraps the running bot.
func NewNotifier(bot helpers.Messenger) *Notifier {
	return &Notifier{bot: bot}
}

// Notify hands the message to the outbound dispatcher.
func (n *Notifier) Notify(ctx context.Context, userID int64, text string) error {
	return helpers.SendTo(ctx, n.bot, &tele.User{ID: userID}, text, tele.ModeMarkdown)
}
