package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name        string
		cb          *tele.Callback
		wantKey     string
		wantPayload string
	}{
		{"nil", nil, "", ""},
		{"generic route", &tele.Callback{Data: "\fsched_del|01HX"}, "sched_del", "01HX"},
		{"no payload", &tele.Callback{Data: "\fcancel"}, "cancel", ""},
		{"payload with separator", &tele.Callback{Data: "\ffield|a|b"}, "field", "a|b"},
		{"already routed", &tele.Callback{Unique: "day", Data: "среда"}, "day", "среда"},
		{"plain data", &tele.Callback{Data: "legacy"}, "legacy", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tc.cb)
			if key != tc.wantKey || payload != tc.wantPayload {
				t.Fatalf("got (%q, %q), want (%q, %q)", key, payload, tc.wantKey, tc.wantPayload)
			}
		})
	}
}
