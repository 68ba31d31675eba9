// Package bot binds the conversation engine to Telegram: commands, menu
// aliases, inline callbacks and fallbacks.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/typekeeper/core/buildinfo"
	"github.com/m3rciful/typekeeper/core/logger"
	tg "github.com/m3rciful/typekeeper/core/telegram"
	"github.com/m3rciful/typekeeper/core/telegram/callbacks"
	"github.com/m3rciful/typekeeper/core/telegram/commands"
	tghelpers "github.com/m3rciful/typekeeper/core/telegram/helpers"
	"github.com/m3rciful/typekeeper/internal/conversation"

	tele "gopkg.in/telebot.v4"
)

const (
	textStats       = "📊 Пользователей в базе: %d\nВерсия: %s"
	textStatsFailed = "❌ Не удалось получить статистику."
	textAdminOnly   = "⛔ Команда доступна только администратору."
	textDocument    = "📎 Файлы не поддерживаются. Используйте кнопки меню."
	textStale       = "⌛ Кнопка устарела"
	textSlowDown    = "⏳ Слишком часто, подождите секунду"
)

// UserCounter reports how many records are stored.
type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

// Bot adapts conversation.Engine to telebot handlers.
type Bot struct {
	engine *conversation.Engine
	users  UserCounter
}

// New builds the adapter.
func New(engine *conversation.Engine, users UserCounter) *Bot {
	return &Bot{engine: engine, users: users}
}

type userAction func(ctx context.Context, userID int64) []conversation.Reply

// Register adds every command and callback to reg.
func (b *Bot) Register(reg *tg.Registry) error {
	edit := func(fn func(context.Context, int64, string) []conversation.Reply) userAction {
		return func(ctx context.Context, userID int64) []conversation.Reply { return fn(ctx, userID, "") }
	}
	cmds := []struct {
		name, desc string
		run        userAction
		aliases    []string
	}{
		{"/start", "Перезапустить бота", b.engine.Start, nil},
		{"/help", "Помощь", b.engine.Help, []string{conversation.LabelHelp}},
		{"/add_schedule", "Добавить пару", b.engine.BeginAddSchedule, []string{conversation.LabelAddSchedule}},
		{"/add_deadline", "Добавить дедлайн", b.engine.BeginAddDeadline, []string{conversation.LabelAddDeadline}},
		{"/schedule", "Мое расписание", b.engine.ShowSchedule, []string{conversation.LabelSchedule}},
		{"/deadlines", "Мои дедлайны", b.engine.ShowDeadlines, []string{conversation.LabelDeadlines}},
		{"/edit_schedule", "Изменить пару", edit(b.engine.BeginEditSchedule), nil},
		{"/edit_deadline", "Изменить дедлайн", edit(b.engine.BeginEditDeadline), nil},
		{"/cancel", "Отменить текущее действие", b.engine.Cancel, []string{conversation.LabelCancel}},
		{"/reset", "Сбросить все данные", b.engine.Reset, []string{conversation.LabelReset}},
	}
	for _, cmd := range cmds {
		err := reg.RegisterCommand(cmd.name, commands.Command{
			Handler:     b.command(cmd.run),
			Description: cmd.desc,
			Aliases:     cmd.aliases,
		})
		if err != nil {
			return err
		}
	}
	err := reg.RegisterCommand("/stats", commands.Command{
		Handler:     b.stats,
		Description: "Статистика",
		AdminOnly:   true,
	})
	if err != nil {
		return err
	}

	for _, action := range conversation.Actions {
		if err := reg.RegisterCallback(action, b.callback(action)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) command(run userAction) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}
		ctx := tghelpers.BuildContext(c)
		return render(c, run(ctx, c.Sender().ID))
	}
}

func (b *Bot) callback(action string) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return nil
		}
		ctx := tghelpers.BuildContext(c)
		ev := conversation.SelectionEvent(c.Sender().ID, action, callbacks.CallbackPayload(c))
		return render(c, b.engine.Handle(ctx, ev))
	}
}

func (b *Bot) stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	n, err := b.users.Count(ctx)
	if err != nil {
		logger.Error(ctx, "tg", "stats", slog.String("status", "fail"), logger.Err(err))
		return tghelpers.SendText(c, textStatsFailed, nil)
	}
	return tghelpers.SendText(c, fmt.Sprintf(textStats, n, buildinfo.String()), nil)
}

// InProgress reports whether the sender is inside a conversation flow.
func (b *Bot) InProgress(ctx context.Context, userID int64) bool {
	return b.engine.InProgress(ctx, userID)
}

// HandleText feeds a text message into the active flow.
func (b *Bot) HandleText(c tele.Context) error {
	if c.Sender() == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	return render(c, b.engine.Handle(ctx, conversation.TextEvent(c.Sender().ID, c.Text())))
}

// UnknownText answers text outside any flow; the engine replies with a hint.
func (b *Bot) UnknownText() tele.HandlerFunc {
	return b.HandleText
}

// UnknownDocument answers files, which the bot never accepts.
func (b *Bot) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, textDocument, nil)
	}
}

// UnknownCallback answers buttons whose action is no longer registered.
func (b *Bot) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: textStale})
	}
}

// AdminReject answers non-admins calling an admin command.
func (b *Bot) AdminReject(c tele.Context) error {
	return tghelpers.SendText(c, textAdminOnly, nil)
}

// OnLimited answers a throttled button press so the client stops spinning.
// Throttled messages are dropped silently.
func (b *Bot) OnLimited(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&tele.CallbackResponse{Text: textSlowDown})
}
