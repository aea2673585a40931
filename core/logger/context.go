package logger

import (
	"context"
)

// meta is the per-update metadata carried through context and merged into
// every record written with that context.
type meta struct {
	rid      string
	updateID int
	userID   int64
	chatID   int64
	handler  string
	flow     string
	step     string
}

type metaKey struct{}

func metaFrom(ctx context.Context) meta {
	if ctx == nil {
		return meta{}
	}
	m, _ := ctx.Value(metaKey{}).(meta)
	return m
}

func withMeta(ctx context.Context, edit func(*meta)) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	m := metaFrom(ctx)
	edit(&m)
	return context.WithValue(ctx, metaKey{}, m)
}

// WithRID attaches the update correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withMeta(ctx, func(m *meta) { m.rid = rid })
}

// RIDFrom returns the correlation id, if any.
func RIDFrom(ctx context.Context) string { return metaFrom(ctx).rid }

// WithUpdateMeta attaches the Telegram update, user and chat identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withMeta(ctx, func(m *meta) {
		m.updateID = updateID
		m.userID = userID
		m.chatID = chatID
	})
}

// UpdateIDFrom returns the Telegram update id, or 0.
func UpdateIDFrom(ctx context.Context) int { return metaFrom(ctx).updateID }

// UserIDFrom returns the Telegram user id, or 0.
func UserIDFrom(ctx context.Context) int64 { return metaFrom(ctx).userID }

// ChatIDFrom returns the chat id, or 0.
func ChatIDFrom(ctx context.Context) int64 { return metaFrom(ctx).chatID }

// WithHandler names the handler serving the update. Empty names are ignored.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return withMeta(ctx, func(m *meta) { m.handler = handler })
}

// HandlerFrom returns the handler name, if any.
func HandlerFrom(ctx context.Context) string { return metaFrom(ctx).handler }

// WithFlow records the active conversation flow and step. An empty flow
// leaves ctx unchanged.
func WithFlow(ctx context.Context, flow, step string) context.Context {
	if flow == "" {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return withMeta(ctx, func(m *meta) {
		m.flow = flow
		m.step = step
	})
}

// FlowFrom returns the flow and step stored by WithFlow.
func FlowFrom(ctx context.Context) (string, string) {
	m := metaFrom(ctx)
	return m.flow, m.step
}

// fill copies metadata into fields without overriding explicit attributes.
func (m meta) fill(fields map[string]any) {
	set := func(key string, v any, present bool) {
		if !present {
			return
		}
		if _, ok := fields[key]; !ok {
			fields[key] = v
		}
	}
	set("rid", m.rid, m.rid != "")
	set("update_id", m.updateID, m.updateID != 0)
	set("user_id", m.userID, m.userID != 0)
	set("chat_id", m.chatID, m.chatID != 0)
	set("handler", m.handler, m.handler != "")
	set("flow", m.flow, m.flow != "")
	set("step", m.step, m.flow != "" && m.step != "")
}
