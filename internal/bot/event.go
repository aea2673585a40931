package bot

import (
	"strings"

	"github.com/multicco/sportbot4-sub000/core/telegram/callbacks"
	"github.com/multicco/sportbot4-sub000/internal/flow"

	tele "gopkg.in/telebot.v4"
)

// eventFrom converts an update into a flow event. ok is false for updates
// without a sender.
func eventFrom(c tele.Context) (flow.Event, bool) {
	u := c.Sender()
	if u == nil {
		return flow.Event{}, false
	}
	ev := flow.Event{
		SubjectID: u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
	}
	if cb := c.Callback(); cb != nil {
		ev.Kind = flow.KindAction
		ev.Tag, ev.Payload = callbacks.ParseCallbackData(cb)
		return ev, true
	}

	text := strings.TrimSpace(c.Text())
	if name, args, ok := splitCommand(text); ok {
		ev.Kind = flow.KindCommand
		ev.Command = name
		ev.Text = args
		return ev, true
	}
	ev.Kind = flow.KindText
	ev.Text = text
	return ev, true
}

// splitCommand parses "/name@bot args" into its name and argument string.
func splitCommand(text string) (string, string, bool) {
	if !strings.HasPrefix(text, "/") || len(text) < 2 {
		return "", "", false
	}
	word, args, _ := strings.Cut(text, " ")
	word, _, _ = strings.Cut(word, "@")
	return strings.ToLower(word[1:]), strings.TrimSpace(args), true
}
