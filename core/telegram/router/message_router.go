package router

import (
	"strings"

	tg "github.com/multicco/sportbot4-sub000/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// TextOptions controls fallback behaviour for text/document updates.
type TextOptions struct {
	UnknownText     tele.HandlerFunc
	UnknownDocument tele.HandlerFunc
}

// TextRoutes builds handlers for text and document routing. Text that names a
// public command or alias goes to that command, everything else to the
// registry's text fallback.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	onText := func(c tele.Context) error {
		if reg == nil {
			return unknown(c, "unknown_text", opts.UnknownText)
		}
		if word := commandWord(c.Text()); word != "" {
			if key, cmd, ok := reg.LookupCommand(word); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return summarize(normalizeHandlerName(key)).run(c, func() error { return cmd.Handler(c) })
			}
		}
		if fb := reg.TextFallback(); fb != nil {
			return summarize("text").run(c, func() error { return fb(c) })
		}
		return unknown(c, "unknown_text", opts.UnknownText)
	}
	onDocument := func(c tele.Context) error {
		return unknown(c, "unexpected_document", opts.UnknownDocument)
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(onText)},
		{Endpoint: tele.OnDocument, Handler: wrap(onDocument)},
	}
}

// commandWord extracts "/name" from "/name@bot args"; empty when text is not
// a command.
func commandWord(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	word, _, _ := strings.Cut(text, " ")
	word, _, _ = strings.Cut(word, "@")
	return word
}

func unknown(c tele.Context, name string, h tele.HandlerFunc) error {
	sum := summarize(name)
	if h != nil {
		return sum.run(c, func() error { return h(c) })
	}
	sum.skip = true
	sum.log(c, nil)
	return nil
}
