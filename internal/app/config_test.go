package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/multicco/sportbot4-sub000/internal/flow"
	"github.com/multicco/sportbot4-sub000/internal/jobs"
)

const sampleYAML = `
telegram:
  token: "123:abc"
  admin_ids: [42]
database:
  host: localhost
  user: coach
  name: sportbot
teams:
  default_max_members: 25
jobs:
  abandon_after_hours: 6
ops:
  listen: " :8081 "
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsAndEnv(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" || !cfg.Telegram.IsAdmin(42) {
		t.Fatalf("core section not loaded: %+v", cfg.Telegram)
	}
	if cfg.Telegram.RunMode != "longpoll" {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if cfg.Database.Password != "secret" || cfg.Database.Port != "5432" {
		t.Fatalf("database = %+v", cfg.Database)
	}
	if cfg.Teams.DefaultMaxMembers != 25 {
		t.Fatalf("max members = %d", cfg.Teams.DefaultMaxMembers)
	}
	if cfg.AbandonAfter() != 6*time.Hour {
		t.Fatalf("abandon after = %v", cfg.AbandonAfter())
	}
	if cfg.Jobs.AbandonSchedule != jobs.DefaultSchedule {
		t.Fatalf("schedule = %q", cfg.Jobs.AbandonSchedule)
	}
	if cfg.Ops.Listen != ":8081" {
		t.Fatalf("ops listen = %q", cfg.Ops.Listen)
	}
	if cfg.CoreConfig() != &cfg.Config {
		t.Fatal("CoreConfig must expose the embedded section")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.Telegram.Token = "t"
	cfg.Database.Host = "db"
	cfg.Database.Name = "sportbot"
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Teams.DefaultMaxMembers != flow.DefaultTeamCapacity {
		t.Fatalf("capacity = %d", cfg.Teams.DefaultMaxMembers)
	}
	if cfg.AbandonAfter() != jobs.DefaultAbandonAfter {
		t.Fatalf("abandon after = %v", cfg.AbandonAfter())
	}
}

func TestNormalizeRejects(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.Telegram.Token = "t"
		c.Database.Host = "db"
		c.Database.Name = "sportbot"
		return c
	}
	cases := map[string]struct {
		mutate func(*Config)
		want   string
	}{
		"missing token":    {func(c *Config) { c.Telegram.Token = "" }, "token"},
		"missing database": {func(c *Config) { c.Database.Host = "" }, "database"},
		"negative members": {func(c *Config) { c.Teams.DefaultMaxMembers = -1 }, "default_max_members"},
		"negative hours":   {func(c *Config) { c.Jobs.AbandonAfterHours = -2 }, "abandon_after_hours"},
		"bad schedule":     {func(c *Config) { c.Jobs.AbandonSchedule = "whenever" }, "abandon_schedule"},
	}
	for name, tc := range cases {
		cfg := base()
		tc.mutate(cfg)
		err := Normalize(cfg)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want mention of %q", name, err, tc.want)
		}
	}
	if err := Normalize(nil); err == nil {
		t.Fatal("nil config must fail")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
