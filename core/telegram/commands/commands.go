package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command describes a slash command as registered with the bot.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are reachable by configured admins only and never
	// appear in the Telegram menu.
	AdminOnly bool
	Hidden    bool
	// Aliases are alternative names, with or without the leading slash.
	Aliases []string
}

// Visible reports whether the command belongs in the public command menu.
func (c Command) Visible() bool {
	return !c.Hidden && !c.AdminOnly
}

// Answers reports whether name (with leading slash) is one of the aliases.
func (c Command) Answers(name string) bool {
	bare := strings.TrimPrefix(name, "/")
	for _, alias := range c.Aliases {
		if strings.TrimPrefix(alias, "/") == bare {
			return true
		}
	}
	return false
}
