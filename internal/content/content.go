// Package content models the pre-authored post catalog.
//
// Items are built once from config at startup and treated as immutable;
// schedule edits are picked up by each item's loop re-reading the live
// config, never by mutating an Item.
package content

import (
	"fmt"
	"strings"

	"autopost/internal/config"
	"autopost/internal/schedule"
)

// Kind is the payload type of a post.
type Kind string

const (
	KindText     Kind = "text"
	KindPhoto    Kind = "photo"
	KindVideo    Kind = "video"
	KindVoice    Kind = "voice"
	KindDocument Kind = "document"
)

// NeedsMedia reports whether the kind requires a media file to send.
func (k Kind) NeedsMedia() bool {
	switch k {
	case KindPhoto, KindVideo, KindVoice, KindDocument:
		return true
	}
	return false
}

// ParseKind normalizes a config kind string. Empty means text; anything
// unrecognized is passed through and falls back to text at dispatch time.
func ParseKind(s string) Kind {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindText
	}
	return Kind(s)
}

// Button is one URL button attached below a post.
type Button struct {
	Label string
	URL   string
}

// Item is one pre-authored post with its weekly cadence.
type Item struct {
	Name     string
	Schedule schedule.Weekly
	Kind     Kind
	// MediaRef is a local path or http(s) URL; empty for text posts.
	MediaRef string
	// Text is the body (text kind) or caption (media kinds).
	Text    string
	Buttons []Button
}

// Build turns the config catalog into items.
//
// A broken post (bad schedule, media missing for a media kind) yields an
// error in the returned slice and is skipped; it never blocks the other
// posts. Indexes of the returned items follow the config order of the valid
// posts.
func Build(posts []config.PostConfig) ([]Item, []error) {
	items := make([]Item, 0, len(posts))
	var errs []error
	for i, p := range posts {
		item, err := buildOne(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("post %q (index %d): %w", p.Name, i, err))
			continue
		}
		items = append(items, item)
	}
	return items, errs
}

func buildOne(p config.PostConfig) (Item, error) {
	wk, err := schedule.Parse(p.Schedule)
	if err != nil {
		return Item{}, err
	}
	kind := ParseKind(p.Kind)
	if kind.NeedsMedia() && strings.TrimSpace(p.Media) == "" {
		return Item{}, fmt.Errorf("kind %q requires media", kind)
	}
	buttons := make([]Button, 0, len(p.Buttons))
	for _, b := range p.Buttons {
		if strings.TrimSpace(b.URL) == "" {
			continue
		}
		label := b.Label
		if strings.TrimSpace(label) == "" {
			label = b.URL
		}
		buttons = append(buttons, Button{Label: label, URL: b.URL})
	}
	return Item{
		Name:     p.Name,
		Schedule: wk,
		Kind:     kind,
		MediaRef: strings.TrimSpace(p.Media),
		Text:     p.Text,
		Buttons:  buttons,
	}, nil
}
