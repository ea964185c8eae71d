package autopost

import (
	"context"
	"time"

	"autopost/internal/config"
	logx "autopost/pkg/logx"
)

// RunReaper is the single retention loop: every poll interval it drains a
// bounded batch of due ledger rows, retracting each message and then
// removing the row regardless of the retraction outcome. Dropping the row
// after one failed attempt is deliberate: it keeps the ledger from
// accumulating permanently unretractable entries (already-deleted messages,
// channels the bot was removed from).
func (s *Service) RunReaper(ctx context.Context) error {
	for {
		s.reapOnce(ctx)

		cfg := s.cfg.Get()
		interval, _ := config.ParseDurationOrDefault("reaper.poll_interval", reaperCfg(cfg).PollInterval, defaultReapInterval)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (s *Service) reapOnce(ctx context.Context) {
	cfg := s.cfg.Get()
	rc := reaperCfg(cfg)

	batch := rc.BatchSize
	if batch <= 0 {
		batch = defaultReapBatch
	}
	pace, _ := config.ParseDurationOrDefault("reaper.pace", rc.Pace, defaultReapPace)

	tasks, err := s.store.FetchDue(ctx, time.Now(), batch)
	if err != nil {
		s.log.Warn("reaper: ledger fetch failed", logx.Err(err))
		return
	}
	if len(tasks) == 0 {
		return
	}
	s.log.Info("reaper: retracting due messages", logx.Int("count", len(tasks)))

	for _, t := range tasks {
		if ctx.Err() != nil {
			return
		}
		if err := s.client.DeleteMessage(ctx, t.ChatID, t.MessageID); err != nil {
			// Single-attempt policy: the row goes away either way.
			s.log.Warn("reaper: retraction failed",
				logx.Int64("chat_id", t.ChatID), logx.Int("message_id", t.MessageID), logx.Err(err))
		}
		if err := s.store.Remove(ctx, t.ID); err != nil {
			s.log.Warn("reaper: ledger remove failed", logx.Int64("row_id", t.ID), logx.Err(err))
		}
		sleepCtx(ctx, pace)
	}
}

func reaperCfg(cfg *config.Config) config.ReaperConfig {
	if cfg == nil {
		return config.ReaperConfig{}
	}
	return cfg.Reaper
}
