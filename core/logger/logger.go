// Package logger provides structured slog logging with per-update
// correlation metadata.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/multicco/sportbot4-sub000/core/buildinfo"
	coreconfig "github.com/multicco/sportbot4-sub000/core/config"
)

var (
	initOnce sync.Once
	stopOnce sync.Once

	out     *asyncWriter
	closers []io.Closer

	levelVar slog.LevelVar
	debugCut atomic.Pointer[sampler]

	// L is the root logger. It stays nil until InitLogger runs and every
	// helper in this package is a no-op until then.
	L *slog.Logger
)

// InitLogger configures the global logger from cfg. Only the first call has
// any effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		var lc coreconfig.LoggingConfig
		if cfg != nil {
			lc = cfg.Logging
		}
		levelVar.Set(parseLevel(lc.Level))
		debugCut.Store(newSampler(lc.DebugSample))

		var outputs []output
		outputs, closers, err = openOutputs(lc)
		if err != nil {
			return
		}
		out = newAsyncWriter(outputs, 64*1024)
		L = slog.New(newStructuredHandler(handlerOptions{
			level:    &levelVar,
			out:      out,
			format:   selectFormat(lc),
			keyOrder: selectKeyOrder(lc),
		}))
		slog.SetDefault(L)
		logStartup(cfg, lc)
	})
	return err
}

// Shutdown flushes pending lines and closes log files.
func Shutdown() error {
	var errs []error
	stopOnce.Do(func() {
		if out != nil {
			errs = append(errs, out.Close())
		}
		for _, c := range closers {
			errs = append(errs, c.Close())
		}
	})
	return errors.Join(errs...)
}

// openOutputs always writes to stdout. Logging.Dir with BotFile adds a full
// copy on disk, with ErrorsFile a WARN and above copy.
func openOutputs(lc coreconfig.LoggingConfig) ([]output, []io.Closer, error) {
	outputs := []output{{w: os.Stdout, min: slog.LevelDebug}}
	var files []io.Closer

	dir := strings.TrimSpace(lc.Dir)
	if dir == "" {
		return outputs, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("logger: create %s: %w", dir, err)
	}
	for _, spec := range []struct {
		name string
		min  slog.Level
	}{
		{strings.TrimSpace(lc.BotFile), slog.LevelDebug},
		{strings.TrimSpace(lc.ErrorsFile), slog.LevelWarn},
	} {
		if spec.name == "" {
			continue
		}
		f, err := os.OpenFile(filepath.Join(dir, spec.name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			for _, c := range files {
				_ = c.Close()
			}
			return nil, nil, fmt.Errorf("logger: open %s: %w", spec.name, err)
		}
		outputs = append(outputs, output{w: f, min: spec.min})
		files = append(files, f)
	}
	return outputs, files, nil
}

// selectFormat honours an explicit format and otherwise picks kv for
// debug/dev profiles and JSON for everything else.
func selectFormat(lc coreconfig.LoggingConfig) logFormat {
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	switch profileOf(lc) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func selectKeyOrder(lc coreconfig.LoggingConfig) []string {
	raw := strings.TrimSpace(lc.KeysOrder)
	if raw == "" || raw == "default" {
		return defaultKeyOrder
	}
	var order []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			order = append(order, k)
		}
	}
	if len(order) == 0 {
		return defaultKeyOrder
	}
	return order
}

func profileOf(lc coreconfig.LoggingConfig) string {
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		return p
	}
	return "prod"
}

func logStartup(cfg *coreconfig.Config, lc coreconfig.LoggingConfig) {
	attrs := []slog.Attr{
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", profileOf(lc)),
	}
	if cfg != nil {
		attrs = append(attrs,
			slog.String("mode", cfg.Telegram.RunMode),
			slog.Int("admins", len(cfg.Telegram.AdminIDs)),
		)
	}
	Info(context.Background(), "app", "startup", attrs...)
}

// Component returns L scoped to name, or nil before InitLogger.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With(slog.String("component", name))
}

// Event writes one record for component at level. The record message is
// empty; event carries the name.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	l := Component(component)
	if l == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	l.LogAttrs(ctx, level, "", attrs...)
}

// Debug logs a debug event for component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info event for component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warning event for component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error event for component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// sampler passes num of every den calls. A zero sampler passes everything.
type sampler struct {
	num, den int64
	n        atomic.Int64
}

// newSampler parses "1/50" or "50" (meaning 1/50). Empty input keeps the
// default 1/50; "0" or malformed input disables sampling.
func newSampler(spec string) *sampler {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return &sampler{num: 1, den: 50}
	}
	num, den := int64(1), int64(0)
	var err error
	if a, b, ok := strings.Cut(spec, "/"); ok {
		if num, err = strconv.ParseInt(strings.TrimSpace(a), 10, 64); err != nil {
			return &sampler{}
		}
		spec = b
	}
	if den, err = strconv.ParseInt(strings.TrimSpace(spec), 10, 64); err != nil || num <= 0 || den <= 0 {
		return &sampler{}
	}
	return &sampler{num: min(num, den), den: den}
}

func (s *sampler) allow() bool {
	if s == nil || s.den == 0 {
		return true
	}
	return (s.n.Add(1)-1)%s.den < s.num
}

// ShouldSampleDebug reports whether a high-volume debug event should be
// written. TRACE=1 or LOG_TRACE=1 disables sampling. Always false before
// InitLogger.
func ShouldSampleDebug() bool {
	if L == nil {
		return false
	}
	if truthy(os.Getenv("TRACE")) || truthy(os.Getenv("LOG_TRACE")) {
		return true
	}
	return debugCut.Load().allow()
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
