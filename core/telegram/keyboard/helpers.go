package keyboard

import tele "gopkg.in/telebot.v4"

// CallbackDataLimit is Telegram's cap on callback_data in bytes.
const CallbackDataLimit = 64

// InlineBtn describes a convenience wrapper for inline button properties.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// CallbackData renders the callback_data Telebot sends for b once the markup
// is processed: \f<unique>|<data>, without the payload part when Data is empty.
func CallbackData(b InlineBtn) string {
	if b.Unique == "" {
		return b.Data
	}
	data := "\f" + b.Unique
	if b.Data != "" {
		data += "|" + b.Data
	}
	return data
}

// Fits reports whether b's callback data stays within CallbackDataLimit.
func Fits(b InlineBtn) bool {
	return len(CallbackData(b)) <= CallbackDataLimit
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
// Empty rows are dropped.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}
