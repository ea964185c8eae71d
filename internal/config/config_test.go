package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
telegram:
  token: "123:abc"
  admin_user_ids: [11111, 22222]
  poll_timeout: 10s
  send_rate_per_sec: 4
logging:
  level: debug
  console: true
  file:
    enabled: false
    path: ""
timezone: Europe/Paris
channels:
  - -1001234567890
  - "@weeklychannel"
retention_days: 3
ledger:
  path: ./data/ledger.db
  busy_timeout: 5s
reaper:
  poll_interval: 10m
  batch_size: 200
  pace: 200ms
posts:
  - name: monday-promo
    schedule: monday 09:00
    kind: photo
    media: https://example.org/promo.jpg
    text: "New week, new promo"
    buttons:
      - label: Shop
        url: https://example.org/shop
  - name: friday-digest
    schedule: friday 18:30
    kind: text
    text: "Weekly digest"
`

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseYAML(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", sampleYAML))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if len(cfg.Telegram.AdminUserIDs) != 2 || cfg.Telegram.AdminUserIDs[0] != 11111 {
		t.Errorf("admin ids = %v", cfg.Telegram.AdminUserIDs)
	}
	if cfg.Timezone != "Europe/Paris" {
		t.Errorf("timezone = %q", cfg.Timezone)
	}
	if cfg.RetentionDays != 3 {
		t.Errorf("retention_days = %d", cfg.RetentionDays)
	}

	// Bare numbers and @handles both land as refs.
	if len(cfg.Channels) != 2 {
		t.Fatalf("channels = %v", cfg.Channels)
	}
	if id, ok := cfg.Channels[0].Numeric(); !ok || id != -1001234567890 {
		t.Errorf("channels[0].Numeric() = %d, %v", id, ok)
	}
	if _, ok := cfg.Channels[1].Numeric(); ok || cfg.Channels[1].String() != "@weeklychannel" {
		t.Errorf("channels[1] = %q", cfg.Channels[1])
	}

	if len(cfg.Posts) != 2 {
		t.Fatalf("posts = %+v", cfg.Posts)
	}
	p := cfg.Posts[0]
	if p.Name != "monday-promo" || p.Schedule != "monday 09:00" || p.Kind != "photo" {
		t.Errorf("posts[0] = %+v", p)
	}
	if len(p.Buttons) != 1 || p.Buttons[0].URL != "https://example.org/shop" {
		t.Errorf("posts[0].Buttons = %+v", p.Buttons)
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", sampleYAML+"\nbogus_key: 1\n"))
	if _, err := m.Parse(); err == nil {
		t.Fatal("unknown top-level key accepted")
	}
}

func TestLoadCommits(t *testing.T) {
	m := NewManager(writeConfig(t, "config.yaml", sampleYAML))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := m.Get(); got != cfg {
		t.Fatal("Get() does not return the committed config")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	body := strings.Replace(sampleYAML, `token: "123:abc"`, `token: ""`, 1)
	m := NewManager(writeConfig(t, "config.yaml", body))
	if _, err := m.Load(); err == nil {
		t.Fatal("config without token accepted")
	}
	if m.Get() != nil {
		t.Fatal("rejected config was committed")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Telegram: TelegramConfig{Token: "t"},
			Ledger:   LedgerConfig{Path: "/tmp/l.db"},
			Posts: []PostConfig{
				{Name: "a", Schedule: "monday 09:00", Kind: "text"},
			},
		}
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"ok", nil, false},
		{"missing token", func(c *Config) { c.Telegram.Token = " " }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"negative retention", func(c *Config) { c.RetentionDays = -1 }, true},
		{"missing ledger path", func(c *Config) { c.Ledger.Path = "" }, true},
		{"bad duration", func(c *Config) { c.Reaper.PollInterval = "soon" }, true},
		{"unnamed post", func(c *Config) { c.Posts[0].Name = "" }, true},
		{"duplicate post names", func(c *Config) {
			c.Posts = append(c.Posts, PostConfig{Name: "a", Schedule: "friday 10:00"})
		}, true},
		// Broken posts pass validation; they are disabled individually instead.
		{"bad post schedule", func(c *Config) { c.Posts[0].Schedule = "nonsense" }, false},
		{"unknown post kind", func(c *Config) { c.Posts[0].Kind = "hologram" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			if tc.mutate != nil {
				tc.mutate(cfg)
			}
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("want error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRetentionPeriodDefault(t *testing.T) {
	if got := (&Config{}).RetentionPeriod(); got != 7*24*time.Hour {
		t.Fatalf("default retention = %v", got)
	}
	if got := (&Config{RetentionDays: 2}).RetentionPeriod(); got != 48*time.Hour {
		t.Fatalf("retention for 2 days = %v", got)
	}
}

func TestLocationDefault(t *testing.T) {
	if got := (&Config{}).Location(); got != time.UTC {
		t.Fatalf("default location = %v", got)
	}
	loc := (&Config{Timezone: "Asia/Tokyo"}).Location()
	if loc.String() != "Asia/Tokyo" {
		t.Fatalf("location = %v", loc)
	}
}

func TestChannelRefNumeric(t *testing.T) {
	cases := []struct {
		ref  ChannelRef
		id   int64
		isID bool
	}{
		{"-1001234", -1001234, true},
		{" 42 ", 42, true},
		{"@handle", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		id, ok := tc.ref.Numeric()
		if ok != tc.isID || id != tc.id {
			t.Errorf("Numeric(%q) = %d, %v", tc.ref, id, ok)
		}
	}
}
