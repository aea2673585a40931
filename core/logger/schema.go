package logger

import (
	"log/slog"
	"strings"
)

// levelName maps slog levels onto the names written to the log.
func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// enums lists the closed vocabularies of selected keys. Values outside a
// vocabulary are kept for status and dropped for the others.
var enums = map[string]struct {
	values   map[string]bool
	keepElse bool
}{
	"status": {
		values:   set("ok", "fail", "skip", "retry", "rate_limited", "cancelled"),
		keepElse: true,
	},
	"outcome": {
		values: set("ok", "fail", "cancelled", "rate_limited"),
	},
	"kind": {
		values: set("message", "callback", "inline_query", "other"),
	},
}

func set(vals ...string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

func normalizeEnums(fields map[string]any) {
	for key, enum := range enums {
		raw, ok := fields[key].(string)
		if !ok {
			continue
		}
		v := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case enum.values[v]:
			fields[key] = v
		case enum.keepElse && v != "":
			fields[key] = v
		default:
			delete(fields, key)
		}
	}
}

// defaultKeyOrder puts envelope keys first, then update correlation, then
// domain identifiers, then errors. Remaining keys follow alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type", "kind",
	"handler", "flow", "step", "rule", "tag", "cb_key", "operation",
	"subject_id", "coach_id", "team_id", "player_id", "student_id", "workout_id", "session_id",
	"outcome", "duration_ms", "count", "abandoned",
	"mode", "listen", "addr", "public_url", "http_code",
	"db", "host", "port",
	"err", "err_code", "cause", "retryable", "attempts", "backoff_ms",
}
