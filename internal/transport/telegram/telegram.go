package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"
	"golang.org/x/time/rate"

	"autopost/internal/transport"
	logx "autopost/pkg/logx"
)

type Config struct {
	Token string
	// PollTimeout is the long-poll timeout for operator command updates.
	PollTimeout time.Duration
	// RatePerSec gates all outbound API calls across the concurrent item
	// schedulers and the reaper so they cannot burst the Bot API.
	RatePerSec int
}

// Client is the telebot-backed transport.Client.
type Client struct {
	cfg Config
	log logx.Logger

	bot     *tele.Bot
	limiter *rate.Limiter

	runMu     sync.Mutex
	running   bool
	runCancel context.CancelFunc
	runWG     sync.WaitGroup
}

var _ transport.Client = (*Client)(nil)

func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 4
	}
	return &Client{
		cfg:     cfg,
		log:     log,
		bot:     b,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Start begins long-polling so operator commands are received.
// Outbound sends work before Start; polling is only needed for commands.
func (c *Client) Start(ctx context.Context) error {
	c.runMu.Lock()
	if c.running {
		c.runMu.Unlock()
		return nil
	}
	c.running = true
	rctx, cancel := context.WithCancel(ctx)
	c.runCancel = cancel
	c.runWG.Add(1)
	c.runMu.Unlock()

	go func() {
		defer c.runWG.Done()
		// Ensure we stop telebot when the context is cancelled.
		go func() {
			<-rctx.Done()
			c.bot.Stop()
		}()
		c.log.Info("polling started")
		c.bot.Start() // blocks until Stop() is called
	}()
	return nil
}

func (c *Client) Stop(ctx context.Context) error {
	c.runMu.Lock()
	cancel := c.runCancel
	c.runCancel = nil
	wasRunning := c.running
	c.running = false
	c.runMu.Unlock()

	if !wasRunning {
		return nil
	}
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		c.runWG.Wait()
		close(done)
	}()

	// Grace window: keep shutdown snappy even if getUpdates long-poll is
	// still waiting.
	grace := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if rem := time.Until(dl); rem > 0 && rem < grace {
			grace = rem
		}
	}
	t := time.NewTimer(grace)
	defer t.Stop()

	select {
	case <-done:
		c.log.Info("polling stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		c.log.Warn("telegram stop grace elapsed; continuing shutdown")
		return nil
	}
}

// Me returns the bot's own user id.
func (c *Client) Me() int64 {
	if c.bot.Me == nil {
		return 0
	}
	return c.bot.Me.ID
}

func (c *Client) ResolveChat(ctx context.Context, ref string) (transport.ChatInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return transport.ChatInfo{}, err
	}
	ref = strings.TrimSpace(ref)
	var (
		chat *tele.Chat
		err  error
	)
	if id, perr := strconv.ParseInt(ref, 10, 64); perr == nil {
		chat, err = c.bot.ChatByID(id)
	} else {
		chat, err = c.bot.ChatByUsername(ref)
	}
	if err != nil {
		return transport.ChatInfo{}, err
	}
	return transport.ChatInfo{ID: chat.ID, Title: chat.Title, Type: string(chat.Type)}, nil
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string, buttons []transport.Button) (int, error) {
	if text == "" {
		text = " "
	}
	return c.send(ctx, chatID, text, buttons)
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, path, caption string, buttons []transport.Button) (int, error) {
	return c.send(ctx, chatID, &tele.Photo{File: tele.FromDisk(path), Caption: caption}, buttons)
}

func (c *Client) SendVideo(ctx context.Context, chatID int64, path, caption string, buttons []transport.Button) (int, error) {
	return c.send(ctx, chatID, &tele.Video{File: tele.FromDisk(path), Caption: caption, Streaming: true}, buttons)
}

func (c *Client) SendVoice(ctx context.Context, chatID int64, path, caption string, buttons []transport.Button) (int, error) {
	return c.send(ctx, chatID, &tele.Voice{File: tele.FromDisk(path), Caption: caption}, buttons)
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, path, caption string, buttons []transport.Button) (int, error) {
	doc := &tele.Document{File: tele.FromDisk(path), Caption: caption, FileName: filepath.Base(path)}
	return c.send(ctx, chatID, doc, buttons)
}

func (c *Client) send(ctx context.Context, chatID int64, what any, buttons []transport.Button) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	opts := &tele.SendOptions{}
	if m := urlMarkup(buttons); m != nil {
		opts.ReplyMarkup = m
	}
	msg, err := c.bot.Send(&tele.Chat{ID: chatID}, what, opts)
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	return c.bot.Delete(tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	})
}

func (c *Client) Rights(ctx context.Context, chatID int64) (transport.Rights, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return transport.Rights{}, err
	}
	member, err := c.bot.ChatMemberOf(&tele.Chat{ID: chatID}, &tele.User{ID: c.Me()})
	if err != nil {
		return transport.Rights{}, err
	}
	return transport.Rights{
		CanPost:   member.Rights.CanPostMessages,
		CanDelete: member.Rights.CanDeleteMessages,
	}, nil
}

// urlMarkup builds an inline keyboard of one URL button per row.
func urlMarkup(buttons []transport.Button) *tele.ReplyMarkup {
	if len(buttons) == 0 {
		return nil
	}
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, m.Row(m.URL(b.Label, b.URL)))
	}
	m.Inline(rows...)
	return m
}
