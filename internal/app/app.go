// Package app wires the process together: config, logging, ledger, channel
// client, media pipeline and the supervised worker loops. Everything is
// constructed once at startup with an explicit lifecycle; Stop tears the
// workers down before closing the ledger handle.
package app

import (
	"context"
	"fmt"
	"time"

	"autopost/internal/autopost"
	"autopost/internal/config"
	"autopost/internal/content"
	"autopost/internal/delivery"
	"autopost/internal/ledger"
	"autopost/internal/media"
	"autopost/internal/runtime/supervisor"
	"autopost/internal/transport/telegram"
	logx "autopost/pkg/logx"
)

type App struct {
	cfgmgr *config.Manager
	log    logx.Logger

	closeLog func() error
	store    *ledger.Store
	tg       *telegram.Client
	svc      *autopost.Service
	items    []content.Item

	sup *supervisor.Supervisor
}

func New(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, closeLog := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	mgr.SetLogger(log)

	// A broken post disables that post only; the rest of the catalog runs.
	items, itemErrs := content.Build(cfg.Posts)
	for _, e := range itemErrs {
		log.Error("post disabled", logx.Err(e))
	}
	if len(items) == 0 {
		log.Warn("no valid posts configured; only the retention reaper will run")
	}

	busy, _ := config.ParseDurationField("ledger.busy_timeout", cfg.Ledger.BusyTimeout)
	store, err := ledger.Open(ledger.Config{Path: cfg.Ledger.Path, BusyTimeout: busy}, log)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	pollTimeout, _ := config.ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout)
	tg, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
		RatePerSec:  cfg.Telegram.SendRatePerSec,
	}, log.With(logx.String("component", "telegram")))
	if err != nil {
		_ = store.Close()
		_ = closeLog()
		return nil, fmt.Errorf("telegram client: %w", err)
	}

	fetchTimeout, _ := config.ParseDurationField("media.fetch_timeout", cfg.Media.FetchTimeout)
	resolver := media.NewResolver(media.Config{
		FetchTimeout: fetchTimeout,
		MinBytes:     cfg.Media.MinBytes,
		MaxDimension: cfg.Media.MaxDimension,
		TempDir:      cfg.Media.TempDir,
	}, media.Detect(log), log.With(logx.String("component", "media")))

	deliverer := delivery.New(tg, resolver, log.With(logx.String("component", "delivery")))
	svc := autopost.New(mgr, items, deliverer, tg, store, log.With(logx.String("component", "autopost")))
	tg.RegisterOperator(svc, cfg.Telegram.AdminUserIDs)

	return &App{
		cfgmgr:   mgr,
		log:      log,
		closeLog: closeLog,
		store:    store,
		tg:       tg,
		svc:      svc,
		items:    items,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log))

	if err := a.tg.Start(a.sup.Context()); err != nil {
		return fmt.Errorf("start telegram polling: %w", err)
	}

	if pending, err := a.store.Pending(context.Background()); err == nil {
		a.log.Info("ledger opened", logx.Int("pending_retractions", pending))
	}

	// One-shot sanity check of channel access/privileges; warnings only.
	a.sup.Go("preflight", a.preflight)

	// Live config reloads; the watcher self-heals via restart.
	a.sup.GoRestart("config.watch", a.cfgmgr.Watch, supervisor.WithStopOnCleanExit(true))

	for i, item := range a.items {
		a.sup.GoRestart("post."+item.Name, a.svc.RunItem(i))
		a.log.Info("recurrence scheduled",
			logx.String("post", item.Name), logx.String("schedule", item.Schedule.String()))
	}
	a.sup.GoRestart("reaper", a.svc.RunReaper)

	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup != nil {
		wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		_ = a.sup.Stop(wctx)
	}
	_ = a.tg.Stop(ctx)
	err := a.store.Close()
	_ = a.closeLog()
	return err
}
