package bot

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/multicco/sportbot4-sub000/core/telegram/sender"
	"github.com/multicco/sportbot4-sub000/internal/flow"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned by Notify before the bot has started.
var ErrNotBound = errors.New("bot: notifier not bound")

// Poster is the part of *tele.Bot used for out-of-band messages.
type Poster interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type binding struct {
	poster Poster
	queue  *sender.Dispatcher
}

// Notifier delivers messages to subjects other than the current sender. It
// is created before the bot exists and bound once the runtime starts.
type Notifier struct {
	b atomic.Pointer[binding]
}

var _ flow.Notifier = (*Notifier)(nil)

// NewNotifier returns an unbound notifier.
func NewNotifier() *Notifier { return &Notifier{} }

// Bind attaches the bot and the outbound queue. A nil queue sends synchronously.
func (n *Notifier) Bind(p Poster, queue *sender.Dispatcher) {
	n.b.Store(&binding{poster: p, queue: queue})
}

// Notify sends r to subjectID's private chat. With a queue the send is
// asynchronous and delivery failures are logged by the queue.
func (n *Notifier) Notify(ctx context.Context, subjectID int64, r flow.Reply) error {
	b := n.b.Load()
	if b == nil || b.poster == nil {
		return ErrNotBound
	}
	opts := sendOptions(ctx, r)
	run := func() error {
		_, err := b.poster.Send(tele.ChatID(subjectID), r.Text, opts)
		return err
	}
	if b.queue == nil {
		return run()
	}
	return b.queue.Enqueue(ctx, "send.notify", "sendMessage", run)
}
