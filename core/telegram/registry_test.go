package telegram

import (
	"errors"
	"testing"

	"github.com/m3rciful/typekeeper/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	must := func(name string, cmd commands.Command) {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	must("/schedule", commands.Command{Handler: noop, Description: "Расписание", Aliases: []string{"📅 Расписание"}})
	must("/cancel", commands.Command{Handler: noop, Description: "Отмена", Aliases: []string{"❌ Отмена"}})
	must("/stats", commands.Command{Handler: noop, Description: "Статистика", AdminOnly: true})
	must("/debug", commands.Command{Handler: noop, Description: "Отладка", Hidden: true})
	return reg
}

func TestRegisterCommandRejectsInvalid(t *testing.T) {
	reg := testRegistry(t)
	cases := map[string]commands.Command{
		"schedule":  {Handler: noop, Description: "x"},
		"/nohandle": {Description: "x"},
		"/nodesc":   {Handler: noop},
		"/schedule": {Handler: noop, Description: "dup"},
	}
	for name, cmd := range cases {
		if err := reg.RegisterCommand(name, cmd); err == nil {
			t.Errorf("RegisterCommand(%q) accepted", name)
		}
	}
}

func TestLookupCommand(t *testing.T) {
	reg := testRegistry(t)
	cases := []struct {
		text string
		want string
		ok   bool
	}{
		{"/schedule", "/schedule", true},
		{"/schedule@typekeeper_bot", "/schedule", true},
		{"  /cancel now ", "/cancel", true},
		{"📅 Расписание", "/schedule", true},
		{"❌ Отмена", "/cancel", true},
		{"/unknown", "", false},
		{"Расписание", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, _, ok := reg.LookupCommand(tc.text)
		if got != tc.want || ok != tc.ok {
			t.Errorf("LookupCommand(%q) = %q,%v want %q,%v", tc.text, got, ok, tc.want, tc.ok)
		}
	}
}

func TestListCommandsVisibleOnly(t *testing.T) {
	reg := testRegistry(t)
	visible := reg.ListCommands(true)
	if len(visible) != 2 || visible[0].Text != "cancel" || visible[1].Text != "schedule" {
		t.Fatalf("visible = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 4 {
		t.Fatalf("all = %+v", all)
	}
}

func TestRegisterCallback(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("edit_s", noop); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.RegisterCallback("edit_s", noop); err == nil {
		t.Fatalf("duplicate accepted")
	}
	if err := reg.RegisterCallback("", noop); err == nil {
		t.Fatalf("empty key accepted")
	}
	if _, ok := reg.GetCallback("edit_s"); !ok {
		t.Fatalf("callback not found")
	}
	if keys := reg.ListCallbacks(); len(keys) != 1 || keys[0] != "edit_s" {
		t.Fatalf("keys = %v", keys)
	}
}

type commandRecorder struct {
	got []tele.Command
	err error
}

func (r *commandRecorder) SetCommands(opts ...any) error {
	for _, o := range opts {
		if list, ok := o.([]tele.Command); ok {
			r.got = list
		}
	}
	return r.err
}

func TestSetupCommandsPublishesVisible(t *testing.T) {
	rec := &commandRecorder{}
	SetupCommands(rec, testRegistry(t))
	if len(rec.got) != 2 {
		t.Fatalf("published %+v", rec.got)
	}
	SetupCommands(&commandRecorder{err: errors.New("boom")}, testRegistry(t))
}
