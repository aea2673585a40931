package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yml := "telegram:\n  token: from-file\n  run_mode: Polling\nrate_limit:\n  interval_ms: 300\n  exclude_updates: [\" Callback \", \"\"]\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if len(cfg.RateLimit.ExcludeUpdates) != 1 || cfg.RateLimit.ExcludeUpdates[0] != UpdateCallback {
		t.Fatalf("exclude = %v", cfg.RateLimit.ExcludeUpdates)
	}
}

func TestDecodeMissingFile(t *testing.T) {
	var cfg Config
	err := Decode(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("err = %v", err)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]Config{
		"no token":        {},
		"bad mode":        {Telegram: TelegramConfig{Token: "t", RunMode: "carrier-pigeon"}},
		"webhook no url":  {Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}},
		"webhook no port": {Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}, Webhook: WebhookConfig{URL: "https://x", Listen: ":8443"}},
		"negative poll":   {Telegram: TelegramConfig{Token: "t", LongPollTimeoutSeconds: -1}},
		"admin id":        {Telegram: TelegramConfig{Token: "t", AdminIDs: []int64{0}}},
		"update kind":     {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"poll"}}},
		"interval":        {Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{IntervalMS: -5}},
	}
	for name, cfg := range cases {
		cfg := cfg
		if err := Normalize(&cfg); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestIsAdmin(t *testing.T) {
	tc := TelegramConfig{AdminIDs: []int64{7, 42}}
	if !tc.IsAdmin(42) || tc.IsAdmin(8) {
		t.Fatal("unexpected admin check result")
	}
}
