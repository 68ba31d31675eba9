package keyboard

import "testing"

func TestReplyButtonsLayout(t *testing.T) {
	m := ReplyButtons([]string{"a", "b"}, []string{"c"})
	if !m.ResizeKeyboard {
		t.Fatalf("expected resized keyboard")
	}
	if len(m.ReplyKeyboard) != 2 || len(m.ReplyKeyboard[0]) != 2 || m.ReplyKeyboard[1][0].Text != "c" {
		t.Fatalf("unexpected layout: %+v", m.ReplyKeyboard)
	}
}

func TestInlineButtonsRows(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "Edit", Unique: "sched_edit", Data: "01H"}, {Text: "Delete", Unique: "sched_del", Data: "01H"}},
		nil,
		[]InlineBtn{{Text: "Cancel", Unique: "cancel"}},
	)
	if m == nil || len(m.InlineKeyboard) != 2 {
		t.Fatalf("unexpected keyboard: %+v", m)
	}
	if got := m.InlineKeyboard[0][1]; got.Unique != "sched_del" || got.Text != "Delete" {
		t.Fatalf("unexpected button: %+v", got)
	}
	if InlineButtonsRows() != nil {
		t.Fatalf("empty rows should give nil markup")
	}
}
