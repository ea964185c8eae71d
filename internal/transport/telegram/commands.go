package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	logx "autopost/pkg/logx"
)

// Operator is the manual-trigger surface exposed to admins. Both calls
// bypass the recurrence timers and run the delivery/resolution paths
// directly.
type Operator interface {
	// ForcePost delivers post index (0-based) to every configured channel
	// now and returns how many deliveries succeeded.
	ForcePost(ctx context.Context, index int) (sent int, err error)
	// PostCount returns the size of the catalog, for usage errors.
	PostCount() int
}

// RegisterOperator wires the admin-only bot commands. Non-admin senders are
// ignored silently.
func (c *Client) RegisterOperator(ops Operator, adminIDs []int64) {
	admin := func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(tc tele.Context) error {
			sender := tc.Sender()
			if sender == nil {
				return nil
			}
			for _, id := range adminIDs {
				if sender.ID == id {
					return next(tc)
				}
			}
			return nil
		}
	}

	c.bot.Handle("/start", admin(func(tc tele.Context) error {
		return tc.Reply("Bot up. /force_post <index> sends a post now, /resolve <@handle|-100id> checks a channel.")
	}))

	c.bot.Handle("/force_post", admin(func(tc tele.Context) error {
		arg := strings.TrimSpace(tc.Message().Payload)
		idx, err := strconv.Atoi(arg)
		if err != nil || idx < 0 || idx >= ops.PostCount() {
			return tc.Reply(fmt.Sprintf("Usage: /force_post <index 0-%d>", ops.PostCount()-1))
		}
		sent, err := ops.ForcePost(context.Background(), idx)
		if err != nil {
			c.log.Warn("force post failed", logx.Int("index", idx), logx.Err(err))
			return tc.Reply("Failed: " + err.Error())
		}
		return tc.Reply(fmt.Sprintf("OK: post %d sent to %d channel(s).", idx, sent))
	}))

	c.bot.Handle("/resolve", admin(func(tc tele.Context) error {
		ref := strings.TrimSpace(tc.Message().Payload)
		if ref == "" {
			return tc.Reply("Usage: /resolve <@handle or -100id>")
		}
		info, err := c.ResolveChat(context.Background(), ref)
		if err != nil {
			return tc.Reply("KO: " + err.Error())
		}
		return tc.Reply(fmt.Sprintf("OK\nTitle: %s\nType: %s\nID: %d", info.Title, info.Type, info.ID))
	}))
}
