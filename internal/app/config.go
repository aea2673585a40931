package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron"

	coreconfig "github.com/multicco/sportbot4-sub000/core/config"
	coredatabase "github.com/multicco/sportbot4-sub000/core/database"
	"github.com/multicco/sportbot4-sub000/internal/flow"
	"github.com/multicco/sportbot4-sub000/internal/jobs"
)

// TeamsConfig tunes team creation.
type TeamsConfig struct {
	DefaultMaxMembers int `yaml:"default_max_members" envconfig:"TEAMS_DEFAULT_MAX_MEMBERS"`
}

// JobsConfig tunes background maintenance.
type JobsConfig struct {
	// AbandonAfterHours marks in-progress sessions older than this as abandoned; 0 -> default.
	AbandonAfterHours int    `yaml:"abandon_after_hours" envconfig:"JOBS_ABANDON_AFTER_HOURS"`
	AbandonSchedule   string `yaml:"abandon_schedule" envconfig:"JOBS_ABANDON_SCHEDULE"`
}

// OpsConfig controls the probe listener. Empty Listen disables it.
type OpsConfig struct {
	Listen string `yaml:"listen" envconfig:"OPS_LISTEN"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Teams    TeamsConfig         `yaml:"teams"`
	Jobs     JobsConfig          `yaml:"jobs"`
	Ops      OpsConfig           `yaml:"ops"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// AbandonAfter returns the session staleness threshold.
func (c *Config) AbandonAfter() time.Duration {
	if c.Jobs.AbandonAfterHours <= 0 {
		return jobs.DefaultAbandonAfter
	}
	return time.Duration(c.Jobs.AbandonAfterHours) * time.Hour
}

// Load reads the YAML file, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the core section and fills application defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.Database.Host) == "" || strings.TrimSpace(cfg.Database.Name) == "" {
		return fmt.Errorf("database.host and database.name are required")
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = "5432"
	}

	switch {
	case cfg.Teams.DefaultMaxMembers == 0:
		cfg.Teams.DefaultMaxMembers = flow.DefaultTeamCapacity
	case cfg.Teams.DefaultMaxMembers < 0:
		return fmt.Errorf("teams.default_max_members must be > 0")
	}

	if cfg.Jobs.AbandonAfterHours < 0 {
		return fmt.Errorf("jobs.abandon_after_hours must be >= 0")
	}
	cfg.Jobs.AbandonSchedule = strings.TrimSpace(cfg.Jobs.AbandonSchedule)
	if cfg.Jobs.AbandonSchedule == "" {
		cfg.Jobs.AbandonSchedule = jobs.DefaultSchedule
	}
	if _, err := cron.Parse(cfg.Jobs.AbandonSchedule); err != nil {
		return fmt.Errorf("invalid jobs.abandon_schedule %q: %w", cfg.Jobs.AbandonSchedule, err)
	}

	cfg.Ops.Listen = strings.TrimSpace(cfg.Ops.Listen)
	return nil
}
