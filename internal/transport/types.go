// Package transport defines the channel-client boundary the delivery core
// talks to. The concrete Telegram implementation lives in
// transport/telegram; tests substitute fakes.
package transport

import "context"

// ChatInfo describes a resolved chat.
type ChatInfo struct {
	ID    int64
	Title string
	Type  string
}

// Rights is the subset of admin privileges the preflight check cares about.
type Rights struct {
	CanPost   bool
	CanDelete bool
}

// Button is one URL button attached below an outgoing message.
type Button struct {
	Label string
	URL   string
}

// Client is the outbound messaging capability.
//
// Implementations must tolerate concurrent in-flight calls: every content
// item's scheduler and the reaper share one Client.
type Client interface {
	// ResolveChat maps an @handle or numeric id string to the canonical chat.
	ResolveChat(ctx context.Context, ref string) (ChatInfo, error)

	SendText(ctx context.Context, chatID int64, text string, buttons []Button) (int, error)
	SendPhoto(ctx context.Context, chatID int64, path, caption string, buttons []Button) (int, error)
	SendVideo(ctx context.Context, chatID int64, path, caption string, buttons []Button) (int, error)
	SendVoice(ctx context.Context, chatID int64, path, caption string, buttons []Button) (int, error)
	SendDocument(ctx context.Context, chatID int64, path, caption string, buttons []Button) (int, error)

	DeleteMessage(ctx context.Context, chatID int64, messageID int) error

	// Rights reports this bot's posting/deleting privileges in a chat.
	// Used only by the startup preflight; not required for correctness.
	Rights(ctx context.Context, chatID int64) (Rights, error)
}
