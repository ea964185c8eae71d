package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks the process-wide parts of the config.
//
// Per-post problems (bad schedule, unknown kind) are deliberately not
// validated here: a broken post disables that post only, it must never
// reject a whole config reload.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required")
	}
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}
	if c.RetentionDays < 0 {
		return errors.New("retention_days must be >= 0")
	}
	if strings.TrimSpace(c.Ledger.Path) == "" {
		return errors.New("ledger.path is required")
	}

	durations := []struct{ path, raw string }{
		{"telegram.poll_timeout", c.Telegram.PollTimeout},
		{"ledger.busy_timeout", c.Ledger.BusyTimeout},
		{"media.fetch_timeout", c.Media.FetchTimeout},
		{"reaper.poll_interval", c.Reaper.PollInterval},
		{"reaper.pace", c.Reaper.Pace},
	}
	for _, d := range durations {
		if _, err := ParseDurationField(d.path, d.raw); err != nil {
			return err
		}
	}

	seen := make(map[string]bool, len(c.Posts))
	for i, p := range c.Posts {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return fmt.Errorf("posts[%d]: name is required", i)
		}
		if seen[name] {
			return fmt.Errorf("posts[%d]: duplicate name %q", i, name)
		}
		seen[name] = true
	}
	return nil
}

// RetentionPeriod returns the configured retention window (default 7 days).
func (c *Config) RetentionPeriod() time.Duration {
	days := c.RetentionDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

// Location resolves the configured timezone (default UTC).
func (c *Config) Location() *time.Location {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}
