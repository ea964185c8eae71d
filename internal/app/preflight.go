package app

import (
	"context"
	"time"

	logx "autopost/pkg/logx"
)

// preflight resolves every configured channel and logs whether the bot can
// post and delete there. It never fails startup; a channel the bot cannot
// reach today may be fixed by an operator without a restart.
func (a *App) preflight(ctx context.Context) error {
	cfg := a.cfgmgr.Get()
	if cfg == nil || len(cfg.Channels) == 0 {
		a.log.Warn("preflight: no channels configured")
		return nil
	}

	pctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	for _, ref := range cfg.Channels {
		info, err := a.tg.ResolveChat(pctx, ref.String())
		if err != nil {
			a.log.Warn("preflight: channel unreachable", logx.String("ref", ref.String()), logx.Err(err))
			continue
		}
		rights, err := a.tg.Rights(pctx, info.ID)
		if err != nil {
			a.log.Warn("preflight: cannot read privileges",
				logx.String("title", info.Title), logx.Int64("chat_id", info.ID), logx.Err(err))
			continue
		}
		a.log.Info("preflight: channel ok",
			logx.String("title", info.Title), logx.Int64("chat_id", info.ID),
			logx.Bool("can_post", rights.CanPost), logx.Bool("can_delete", rights.CanDelete))
	}
	return nil
}
