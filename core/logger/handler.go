package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

const tsLayout = "2006-01-02T15:04:05.000Z07:00"

type handlerOptions struct {
	level    slog.Leveler
	out      *asyncWriter
	format   logFormat
	keyOrder []string
}

// field is an attribute already flattened and normalized.
type field struct {
	key string
	val any
}

// structuredHandler writes one flat record per line. Group names become
// dotted key prefixes; attrs bound with WithAttrs keep the prefix that was
// active when they were bound.
type structuredHandler struct {
	opts   handlerOptions
	bound  []field
	prefix string
}

func newStructuredHandler(opts handlerOptions) *structuredHandler {
	if opts.level == nil {
		opts.level = slog.LevelInfo
	}
	if opts.keyOrder == nil {
		opts.keyOrder = defaultKeyOrder
	}
	return &structuredHandler{opts: opts}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.opts.out == nil {
		return errors.New("logger: output not initialized")
	}
	isJSON := h.opts.format == formatJSON

	fields := make(map[string]any, 16+len(h.bound))
	ts := r.Time.UTC()
	fields["ts"] = ts.Format(tsLayout)
	fields["level"] = levelName(r.Level)
	if isJSON {
		fields["ts_unix_nano"] = ts.UnixNano()
	}
	for _, f := range h.bound {
		fields[f.key] = f.val
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(h.prefix, a, func(f field) { fields[f.key] = f.val })
		return true
	})
	metaFrom(ctx).fill(fields)

	if rid, ok := fields["rid"].(string); ok {
		if short := CompactRID(rid); short != rid {
			fields["rid"] = short
			if isJSON {
				fields["rid_full"] = rid
			}
		}
	}
	if ev, _ := fields["event"].(string); ev == "" {
		fields["event"] = firstNonEmpty(r.Message, "unknown")
	}
	if comp, _ := fields["component"].(string); comp == "" {
		fields["component"] = "app"
	}
	normalizeEnums(fields)
	for k, v := range fields {
		if s, ok := v.(string); ok && s == "" {
			delete(fields, k)
		}
	}

	var data []byte
	if isJSON {
		var err error
		if data, err = encodeJSON(fields, h.opts.keyOrder); err != nil {
			return err
		}
	} else {
		data = encodeKV(fields, h.opts.keyOrder)
	}
	return h.opts.out.Write(r.Level, data)
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.bound = append([]field(nil), h.bound...)
	for _, a := range attrs {
		appendAttr(h.prefix, a, func(f field) { clone.bound = append(clone.bound, f) })
	}
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

// appendAttr flattens groups and emits normalized fields. Empty keys and nil
// values are skipped.
func appendAttr(prefix string, a slog.Attr, emit func(field)) {
	a.Value = a.Value.Resolve()
	key := joinKey(prefix, a.Key)
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			appendAttr(key, child, emit)
		}
		return
	}
	if a.Key == "" {
		return
	}
	if f, ok := normalize(key, a.Value); ok {
		emit(f)
	}
}

// normalize converts slog values to JSON-friendly ones. Durations become
// integer milliseconds under a key ending in "_ms".
func normalize(key string, v slog.Value) (field, bool) {
	switch v.Kind() {
	case slog.KindString:
		return field{key, strings.TrimSpace(v.String())}, true
	case slog.KindBool:
		return field{key, v.Bool()}, true
	case slog.KindInt64:
		return field{key, v.Int64()}, true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return field{key, int64(u)}, true
		}
		return field{key, v.Uint64()}, true
	case slog.KindFloat64:
		return field{key, v.Float64()}, true
	case slog.KindDuration:
		return durationField(key, v.Duration()), true
	case slog.KindTime:
		return field{key, v.Time().UTC().Format(time.RFC3339Nano)}, true
	}
	switch x := v.Any().(type) {
	case nil:
		return field{}, false
	case error:
		return field{key, x.Error()}, true
	case time.Duration:
		return durationField(key, x), true
	case fmt.Stringer:
		return field{key, x.String()}, true
	default:
		return field{key, fmt.Sprint(x)}, true
	}
}

func durationField(key string, d time.Duration) field {
	if !strings.HasSuffix(key, "_ms") {
		key += "_ms"
	}
	return field{key, RoundMS(d).Milliseconds()}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
