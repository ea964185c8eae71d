// Package autopost runs the recurring delivery loops and the retention
// reaper. One goroutine per content item plus a single reaper share the
// channel client and the deletion ledger; each loop is failure-isolated and
// supervised, so one item's crash never stalls another's cadence.
package autopost

import (
	"context"
	"errors"
	"time"

	"autopost/internal/config"
	"autopost/internal/content"
	"autopost/internal/delivery"
	"autopost/internal/ledger"
	"autopost/internal/transport"
	logx "autopost/pkg/logx"
)

const (
	// channelPace spaces deliveries to successive channels within one
	// occurrence so a many-channel item doesn't burst the client.
	channelPace = 250 * time.Millisecond

	defaultReapInterval = 10 * time.Minute
	defaultReapBatch    = 200
	defaultReapPace     = 200 * time.Millisecond
)

type Service struct {
	cfg       *config.Manager
	items     []content.Item
	deliverer *delivery.Deliverer
	client    transport.Client
	store     *ledger.Store
	log       logx.Logger
}

func New(cfg *config.Manager, items []content.Item, d *delivery.Deliverer, client transport.Client, store *ledger.Store, log logx.Logger) *Service {
	return &Service{
		cfg:       cfg,
		items:     items,
		deliverer: d,
		client:    client,
		store:     store,
		log:       log,
	}
}

// Items returns the immutable catalog snapshot the service runs.
func (s *Service) Items() []content.Item { return s.items }

// PostCount implements the operator surface.
func (s *Service) PostCount() int { return len(s.items) }

// ForcePost delivers item index to all configured channels immediately,
// bypassing its timer. Used by the operator /force_post trigger.
func (s *Service) ForcePost(ctx context.Context, index int) (int, error) {
	if index < 0 || index >= len(s.items) {
		return 0, errors.New("post index out of range")
	}
	cfg := s.cfg.Get()
	if cfg == nil || len(cfg.Channels) == 0 {
		return 0, errors.New("no channels configured")
	}
	return s.deliverAll(ctx, s.items[index], cfg), nil
}

// deliverAll runs one occurrence: sequential delivery to every configured
// channel in order, a retention task enqueued after each success. Returns
// how many deliveries succeeded.
func (s *Service) deliverAll(ctx context.Context, item content.Item, cfg *config.Config) int {
	retention := cfg.RetentionPeriod()
	sent := 0
	for i, ref := range cfg.Channels {
		if ctx.Err() != nil {
			return sent
		}
		res, err := s.deliverer.Deliver(ctx, ref, item)
		if err == nil {
			due := time.Now().Add(retention)
			if rowID, lerr := s.store.Enqueue(ctx, res.ChatID, res.MessageID, due); lerr != nil {
				// The message is up but untracked; it will never be retracted.
				s.log.Error("retention enqueue failed",
					logx.String("post", item.Name), logx.Int64("chat_id", res.ChatID),
					logx.Int("message_id", res.MessageID), logx.Err(lerr))
			} else {
				s.log.Debug("retention scheduled",
					logx.Int64("row_id", rowID), logx.Time("due_at", due))
			}
			sent++
		}
		if i < len(cfg.Channels)-1 {
			sleepCtx(ctx, channelPace)
		}
	}
	return sent
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
