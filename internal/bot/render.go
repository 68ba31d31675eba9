package bot

import (
	"github.com/m3rciful/typekeeper/core/telegram/helpers"
	"github.com/m3rciful/typekeeper/core/telegram/keyboard"
	"github.com/m3rciful/typekeeper/internal/conversation"

	tele "gopkg.in/telebot.v4"
)

// render delivers replies in order and stops at the first failure.
// An edit outside a callback becomes a new message.
func render(c tele.Context, replies []conversation.Reply) error {
	for _, r := range replies {
		if err := deliver(c, r); err != nil {
			return err
		}
	}
	return nil
}

func deliver(c tele.Context, r conversation.Reply) error {
	markup := markupFor(r)
	if r.Action == conversation.ReplyEdit && c.Callback() != nil && c.Callback().Message != nil {
		return helpers.EditMD(c, r.Text, parseMode(r), markup)
	}
	if r.Markdown {
		return helpers.SendMD(c, r.Text, markup)
	}
	return helpers.SendText(c, r.Text, markup)
}

func parseMode(r conversation.Reply) tele.ParseMode {
	if r.Markdown {
		return tele.ModeMarkdown
	}
	return tele.ModeDefault
}

func markupFor(r conversation.Reply) *tele.ReplyMarkup {
	if len(r.Buttons) > 0 {
		rows := make([][]keyboard.InlineBtn, 0, len(r.Buttons))
		for _, row := range r.Buttons {
			btns := make([]keyboard.InlineBtn, 0, len(row))
			for _, b := range row {
				btns = append(btns, keyboard.InlineBtn{Text: b.Text, Unique: b.Action, Data: b.Payload})
			}
			rows = append(rows, btns)
		}
		return keyboard.InlineButtonsRows(rows...)
	}
	switch r.Keyboard {
	case conversation.KeyboardMain:
		return keyboard.ReplyButtons(conversation.MainMenu...)
	case conversation.KeyboardCancel:
		return keyboard.ReplyButtons(conversation.CancelMenu...)
	}
	return nil
}
