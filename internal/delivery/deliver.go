// Package delivery publishes one content item into one channel: resolve the
// target, materialize and normalize media, dispatch through the channel
// client. Failures here are terminal for the attempt; the weekly cadence
// (or the operator's manual trigger) is the retry mechanism.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"autopost/internal/config"
	"autopost/internal/content"
	"autopost/internal/media"
	"autopost/internal/transport"
	logx "autopost/pkg/logx"
)

// ErrMediaUnavailable marks a delivery aborted before any client call
// because the item's media could not be fetched.
var ErrMediaUnavailable = errors.New("media unavailable")

// Result identifies the published message for retention bookkeeping.
type Result struct {
	ChatID    int64
	MessageID int
}

type Deliverer struct {
	client transport.Client
	media  *media.Resolver
	log    logx.Logger
}

func New(client transport.Client, mediaRes *media.Resolver, log logx.Logger) *Deliverer {
	return &Deliverer{client: client, media: mediaRes, log: log}
}

// Deliver publishes item into the channel ref points at.
//
// Every temporary or converted media file of the attempt is removed before
// Deliver returns, on success and failure alike.
func (d *Deliverer) Deliver(ctx context.Context, ref config.ChannelRef, item content.Item) (Result, error) {
	chatID, err := d.ResolveChannel(ctx, ref)
	if err != nil {
		return Result{}, fmt.Errorf("resolve %q: %w", ref, err)
	}

	sc := &media.Scratch{}
	defer sc.Cleanup(d.log)

	mediaPath := ""
	if item.Kind.NeedsMedia() {
		path, ok := d.media.Fetch(ctx, item.MediaRef, sc)
		if !ok {
			d.log.Warn("media unavailable, delivery skipped",
				logx.String("post", item.Name), logx.String("ref", item.MediaRef))
			return Result{}, ErrMediaUnavailable
		}
		// Only renderable media gets normalized; voice notes and documents
		// are sent exactly as fetched.
		switch item.Kind {
		case content.KindPhoto:
			path = d.media.NormalizeImage(path, sc)
		case content.KindVideo:
			path = d.media.NormalizeVideo(ctx, path, sc)
		}
		mediaPath = path
	}

	msgID, err := d.dispatch(ctx, chatID, item, mediaPath)
	if err != nil {
		d.log.Warn("delivery failed",
			logx.String("post", item.Name), logx.Int64("chat_id", chatID), logx.Err(err))
		return Result{}, err
	}

	d.log.Info("delivered",
		logx.String("post", item.Name), logx.Int64("chat_id", chatID), logx.Int("message_id", msgID))
	return Result{ChatID: chatID, MessageID: msgID}, nil
}

func (d *Deliverer) dispatch(ctx context.Context, chatID int64, item content.Item, mediaPath string) (int, error) {
	buttons := toButtons(item.Buttons)
	switch item.Kind {
	case content.KindPhoto:
		return d.client.SendPhoto(ctx, chatID, mediaPath, item.Text, buttons)
	case content.KindVideo:
		return d.client.SendVideo(ctx, chatID, mediaPath, item.Text, buttons)
	case content.KindVoice:
		return d.client.SendVoice(ctx, chatID, mediaPath, item.Text, buttons)
	case content.KindDocument:
		return d.client.SendDocument(ctx, chatID, mediaPath, item.Text, buttons)
	case content.KindText:
		return d.client.SendText(ctx, chatID, item.Text, buttons)
	default:
		// Unrecognized kinds degrade to text rather than dropping the post.
		return d.client.SendText(ctx, chatID, item.Text, buttons)
	}
}

func toButtons(in []content.Button) []transport.Button {
	if len(in) == 0 {
		return nil
	}
	out := make([]transport.Button, len(in))
	for i, b := range in {
		out[i] = transport.Button{Label: b.Label, URL: b.URL}
	}
	return out
}
