package delivery

import (
	"context"

	"autopost/internal/config"
	logx "autopost/pkg/logx"
)

// ResolveChannel maps a channel reference to its canonical numeric id.
//
// Numeric refs are cast without a lookup. Handle lookups go through the
// client and are never cached: channel handles and memberships change, and
// a failed lookup is transient (retried naturally on the next use).
func (d *Deliverer) ResolveChannel(ctx context.Context, ref config.ChannelRef) (int64, error) {
	if id, ok := ref.Numeric(); ok {
		return id, nil
	}
	info, err := d.client.ResolveChat(ctx, ref.String())
	if err != nil {
		d.log.Warn("channel resolve failed", logx.String("ref", ref.String()), logx.Err(err))
		return 0, err
	}
	return info.ID, nil
}
