package helpers

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/m3rciful/typekeeper/core/logger"
	"github.com/m3rciful/typekeeper/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
// With no dispatcher the helpers call Telegram inline.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// Messenger is the part of *tele.Bot used for messages outside an update.
type Messenger interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
}

func enqueue(ctx context.Context, action string, target int64, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	err := disp.Enqueue(ctx, action, target, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.Int64("target", target),
			logger.Err(err),
		)
		return run()
	}
	return err
}

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return 0
}

func options(mode tele.ParseMode, markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: mode, ReplyMarkup: markup}
}

// SendText sends plain text to the chat of the current update.
func SendText(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := options(tele.ModeDefault, markup)
	return enqueue(BuildContext(c), "send.text", chatID(c), func() error {
		return c.Send(text, opts)
	})
}

// SendMD sends legacy Markdown to the chat of the current update.
func SendMD(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	opts := options(tele.ModeMarkdown, markup)
	return enqueue(BuildContext(c), "send.md", chatID(c), func() error {
		return c.Send(text, opts)
	})
}

// EditMD replaces the message the pressed button belongs to.
// parseMode may be tele.ModeDefault for plain text.
func EditMD(c tele.Context, text string, parseMode tele.ParseMode, markup *tele.ReplyMarkup) error {
	opts := options(parseMode, markup)
	return enqueue(BuildContext(c), "edit", chatID(c), func() error {
		err := c.Edit(text, opts)
		if errors.Is(err, tele.ErrSameMessageContent) {
			return nil
		}
		return err
	})
}

// SendTo delivers a message that is not a reply to an update, such as a reminder.
func SendTo(ctx context.Context, bot Messenger, to tele.Recipient, text string, parseMode tele.ParseMode) error {
	opts := options(parseMode, nil)
	target, _ := strconv.ParseInt(to.Recipient(), 10, 64)
	return enqueue(ctx, "send.notify", target, func() error {
		_, err := bot.Send(to, text, opts)
		return err
	})
}
