package bot

import (
	"context"
	"log/slog"

	"github.com/multicco/sportbot4-sub000/core/logger"
	tghelpers "github.com/multicco/sportbot4-sub000/core/telegram/helpers"
	"github.com/multicco/sportbot4-sub000/core/telegram/keyboard"
	"github.com/multicco/sportbot4-sub000/internal/flow"

	tele "gopkg.in/telebot.v4"
)

// chatResponder answers in the chat the update came from.
type chatResponder struct {
	c tele.Context
}

func (r chatResponder) Send(ctx context.Context, rep flow.Reply) error {
	if doc := rep.Document; doc != nil {
		if err := tghelpers.SendDocument(r.c, doc.FileName, doc.Caption, doc.Data); err != nil {
			return err
		}
		if rep.Text == "" {
			return nil
		}
	}
	markup := markupFor(ctx, rep.Buttons)
	if rep.Mode == flow.ModeMarkdown {
		return tghelpers.SendMD(r.c, rep.Text, markup)
	}
	return tghelpers.SendText(r.c, rep.Text, &tele.SendOptions{ReplyMarkup: markup})
}

// sendOptions renders the parse mode and keyboard of rep for a direct bot send.
func sendOptions(ctx context.Context, rep flow.Reply) *tele.SendOptions {
	opts := &tele.SendOptions{ReplyMarkup: markupFor(ctx, rep.Buttons)}
	if rep.Mode == flow.ModeMarkdown {
		opts.ParseMode = tele.ModeMarkdown
	}
	return opts
}

// markupFor builds an inline keyboard. Buttons whose callback data would
// exceed Telegram's limit are dropped with a warning; nil means no keyboard.
func markupFor(ctx context.Context, rows [][]flow.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		var r []keyboard.InlineBtn
		for _, b := range row {
			btn := keyboard.InlineBtn{Text: b.Text, Unique: b.Tag, Data: b.Payload}
			if !keyboard.Fits(btn) {
				logger.Warn(ctx, "tg", "button.dropped",
					slog.String("tag", b.Tag),
					slog.Int("bytes", len(keyboard.CallbackData(btn))),
				)
				continue
			}
			r = append(r, btn)
		}
		out = append(out, r)
	}
	return keyboard.InlineButtonsRows(out...)
}
