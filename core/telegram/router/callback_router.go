package router

import (
	"log/slog"

	tg "github.com/multicco/sportbot4-sub000/core/telegram"
	"github.com/multicco/sportbot4-sub000/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute returns a handler that routes callbacks through the registry.
// The callback is acknowledged before the handler runs so the client stops
// its spinner even when the handler is slow.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}

		key, _ := callbacks.ParseCallbackData(c.Callback())
		sum := summarize("callback."+normalizeHandlerName(key), slog.String("cb_key", key))

		cbHandler, ok := reg.GetCallback(key)
		if !ok || cbHandler == nil {
			fallback := reg.CallbackNotFound()
			if fallback == nil {
				fallback = opts.NotFound
			}
			sum.skip = true
			sum.extras = append(sum.extras, slog.String("reason", "not_found"))
			return sum.run(c, func() error {
				if fallback != nil {
					return fallback(c)
				}
				return c.Respond()
			})
		}

		_ = c.Respond()
		return sum.run(c, func() error { return cbHandler(c) })
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  wrap(handler),
	}
}
