package middleware

import tele "gopkg.in/telebot.v4"

const replyStatsKey = "reply_stats"

// replyStats counts what a handler sent back for the handler summary log.
type replyStats struct {
	messages int
	keyboard bool
}

// countingContext records successful outgoing messages on the update.
type countingContext struct {
	tele.Context
	stats *replyStats
}

func (c countingContext) track(err error, opts []interface{}) error {
	if err != nil {
		return err
	}
	c.stats.messages++
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			c.stats.keyboard = c.stats.keyboard || (v != nil && v.ReplyMarkup != nil)
		case *tele.ReplyMarkup:
			c.stats.keyboard = c.stats.keyboard || v != nil
		}
	}
	return nil
}

func (c countingContext) Send(what interface{}, opts ...interface{}) error {
	return c.track(c.Context.Send(what, opts...), opts)
}

func (c countingContext) Reply(what interface{}, opts ...interface{}) error {
	return c.track(c.Context.Reply(what, opts...), opts)
}

func (c countingContext) Edit(what interface{}, opts ...interface{}) error {
	return c.track(c.Context.Edit(what, opts...), opts)
}

func (c countingContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return c.track(c.Context.EditOrSend(what, opts...), opts)
}

// MessageMetricsMiddleware counts messages sent while handling an update.
// Read the result with GetCounters.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &replyStats{}
		c.Set(replyStatsKey, stats)
		return next(countingContext{Context: c, stats: stats})
	}
}

// GetCounters returns the number of messages sent and whether any carried a
// keyboard. Zero values when the middleware is not installed.
func GetCounters(c tele.Context) (int, bool) {
	if s, ok := c.Get(replyStatsKey).(*replyStats); ok {
		return s.messages, s.keyboard
	}
	return 0, false
}
