package helpers

import (
	"bytes"
	"log/slog"

	"github.com/multicco/sportbot4-sub000/core/logger"

	tele "gopkg.in/telebot.v4"
)

// In-chat replies are sent synchronously so that several replies to one
// update keep their order. Background notifications go through
// sender.Dispatcher instead.

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	what := []any{text}
	if len(opts) > 0 && opts[0] != nil {
		what = append(what, opts[0])
	}
	return deliver(c, "sendMessage", what...)
}

// SendMD sends Markdown text with an optional inline keyboard.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return SendText(c, text, opts)
}

// SendDocument uploads data as a file named fileName.
func SendDocument(c tele.Context, fileName, caption string, data []byte) error {
	doc := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: fileName,
		Caption:  caption,
	}
	return deliver(c, "sendDocument", doc)
}

func deliver(c tele.Context, endpoint string, what ...any) error {
	err := c.Send(what[0], what[1:]...)
	if err != nil {
		logger.Warn(BuildContext(c), "tg.sender", "reply.fail",
			slog.String("endpoint", endpoint),
			slog.String("err", logger.SanitizeLimit(logger.RedactToken(err.Error()), 256)),
		)
	}
	return err
}
