package router

import (
	"errors"
	"fmt"
	"testing"
)

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string { return "entry not found" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestHandlerName(t *testing.T) {
	cases := map[string]string{
		"/Add_Schedule": "add_schedule",
		"callback.edit": "callback.edit",
		"  ":            "unknown",
		"unknown text":  "unknown_text",
	}
	for in, want := range cases {
		if got := handlerName(in); got != want {
			t.Errorf("handlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestErrorCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{codedErr{}, "ENTRY_NOT_FOUND"},
		{fmt.Errorf("wrap: %w", &plainErr{}), "PLAINERR"},
		{errors.New("x"), "ERRORSTRING"},
	}
	for _, tc := range cases {
		if got := errorCode(tc.err); got != tc.want {
			t.Errorf("errorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
