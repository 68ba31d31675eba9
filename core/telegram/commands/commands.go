package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command plus the menu labels that trigger it.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are rejected for everyone but the configured admin.
	AdminOnly bool
	// Hidden commands are routed but not published in the Telegram menu.
	Hidden bool
	// Aliases are exact texts (usually reply keyboard labels) that act as the command.
	Aliases []string
}

// HasAlias reports whether text, trimmed, equals one of the aliases.
func (c Command) HasAlias(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, alias := range c.Aliases {
		if alias == text || "/"+alias == text {
			return true
		}
	}
	return false
}
