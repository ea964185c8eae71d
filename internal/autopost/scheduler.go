package autopost

import (
	"context"
	"time"

	"autopost/internal/schedule"
	logx "autopost/pkg/logx"
)

// RunItem is the recurrence loop for one content item. It is meant to run
// under the supervisor's restart wrapper: a panic or error in one item's
// cycle restarts only that item.
//
// Each cycle: compute the next weekly occurrence in the configured zone,
// sleep until then, deliver to every configured channel, then re-read the
// item's schedule from the live config so edits take effect on the
// following cycle.
func (s *Service) RunItem(idx int) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		item := s.items[idx]
		wk := item.Schedule
		log := s.log.With(logx.String("post", item.Name))

		for {
			cfg := s.cfg.Get()
			now := time.Now().In(cfg.Location())
			next := wk.Next(now)
			log.Info("next occurrence scheduled",
				logx.String("schedule", wk.String()),
				logx.Time("at", next),
				logx.Duration("in", next.Sub(now)))

			if !sleepUntil(ctx, next) {
				return nil
			}

			// Snapshot the config once per occurrence; channel order is the
			// delivery order.
			cfg = s.cfg.Get()
			if len(cfg.Channels) == 0 {
				log.Info("no channels configured; occurrence skipped")
			} else {
				sent := s.deliverAll(ctx, item, cfg)
				log.Info("occurrence complete",
					logx.Int("sent", sent), logx.Int("channels", len(cfg.Channels)))
			}

			wk = s.refreshSchedule(item.Name, wk, log)
		}
	}
}

// refreshSchedule re-reads the item's schedule from the live config. A
// removed post or an invalid edit keeps the previous schedule (logged);
// breaking one item's schedule must never stop its loop.
func (s *Service) refreshSchedule(name string, current schedule.Weekly, log logx.Logger) schedule.Weekly {
	cfg := s.cfg.Get()
	if cfg == nil {
		return current
	}
	for _, p := range cfg.Posts {
		if p.Name != name {
			continue
		}
		wk, err := schedule.Parse(p.Schedule)
		if err != nil {
			log.Warn("schedule edit invalid; keeping previous", logx.String("raw", p.Schedule), logx.Err(err))
			return current
		}
		return wk
	}
	log.Warn("post removed from config; keeping previous schedule")
	return current
}

// sleepUntil blocks until the wall-clock instant at (or ctx done, returning
// false). Long sleeps are chunked so a suspended host that drifts past the
// target wakes close to it rather than a full interval late.
func sleepUntil(ctx context.Context, at time.Time) bool {
	for {
		d := time.Until(at)
		if d <= 0 {
			return ctx.Err() == nil
		}
		if d > time.Hour {
			d = time.Hour
		}
		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
	}
}
