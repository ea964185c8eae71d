package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`

	// Timezone is the IANA zone all weekly schedules are computed in,
	// e.g. "Europe/Paris".
	Timezone string `json:"timezone"`

	// Channels are the delivery targets for every post: numeric chat ids
	// (-100...) or @handles. Order is the delivery order within one occurrence.
	Channels []ChannelRef `json:"channels"`

	// RetentionDays is how long a published message stays up before the
	// reaper retracts it. Applied uniformly to every post.
	RetentionDays int `json:"retention_days"`

	Ledger LedgerConfig `json:"ledger"`
	Media  MediaConfig  `json:"media,omitempty"`
	Reaper ReaperConfig `json:"reaper,omitempty"`

	// Posts is the content catalog. Each entry carries its own weekly
	// schedule; edits to schedules/channels take effect on the next cycle.
	Posts []PostConfig `json:"posts"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// AdminUserIDs may invoke the manual /force_post and /resolve triggers.
	AdminUserIDs []int64 `json:"admin_user_ids"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
	// SendRatePerSec caps outbound client calls across all workers.
	SendRatePerSec int `json:"send_rate_per_sec,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type LedgerConfig struct {
	Path string `json:"path"`
	// BusyTimeout is a Go duration string (sqlite busy_timeout pragma).
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// MediaConfig tunes remote media fetching and normalization.
//
// All zero values fall back to defaults (2m fetch timeout, 1 KiB minimum
// body, 4096 px maximum dimension, OS temp dir).
type MediaConfig struct {
	FetchTimeout string `json:"fetch_timeout,omitempty"`
	MinBytes     int64  `json:"min_bytes,omitempty"`
	MaxDimension int    `json:"max_dimension,omitempty"`
	TempDir      string `json:"temp_dir,omitempty"`
}

type ReaperConfig struct {
	// PollInterval is a Go duration string. Default "10m".
	PollInterval string `json:"poll_interval,omitempty"`
	// BatchSize caps how many due rows one poll drains. Default 200.
	BatchSize int `json:"batch_size,omitempty"`
	// Pace is the delay between retractions. Default "200ms".
	Pace string `json:"pace,omitempty"`
}

type PostConfig struct {
	Name string `json:"name"`
	// Schedule is "<weekday> HH:MM", e.g. "monday 09:00".
	Schedule string `json:"schedule"`
	// Kind is one of: text, photo, video, voice, document.
	Kind string `json:"kind"`
	// Media is a local path or http(s) URL; required for non-text kinds.
	Media string `json:"media,omitempty"`
	// Text is the message body (text kind) or caption (media kinds).
	Text    string         `json:"text,omitempty"`
	Buttons []ButtonConfig `json:"buttons,omitempty"`
}

type ButtonConfig struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ChannelRef is a delivery target: a numeric chat id or an @handle.
//
// YAML/JSON may carry it as a bare number or a string; both decode to the
// string form so resolution can decide between cast and lookup.
type ChannelRef string

func (r *ChannelRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = ChannelRef(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*r = ChannelRef(n.String())
		return nil
	}
	return fmt.Errorf("channel ref must be a string or number, got %s", string(b))
}

func (r ChannelRef) String() string { return string(r) }

// Numeric returns the channel id if the ref is already numeric.
func (r ChannelRef) Numeric() (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(string(r)), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
