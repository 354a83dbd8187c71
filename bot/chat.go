// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bot

import "context"

// Chat is the subset of the chat platform the workflows depend on. Every
// method may block on network I/O.
type Chat interface {
	IsAdmin(ctx context.Context, guildID, userID string) (bool, error)
	Send(ctx context.Context, channelID, content string) (messageID string, err error)
	Reply(ctx context.Context, channelID, messageID, content string) (replyID string, err error)
	Edit(ctx context.Context, channelID, messageID, content string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error
	ClearReactions(ctx context.Context, channelID, messageID string) error
}

// Message is an inbound message-create event.
type Message struct {
	ID          string
	GuildID     string // empty for direct messages
	ChannelID   string
	AuthorID    string
	AuthorName  string
	AuthorBot   bool
	Content     string
	Attachments []Attachment
}

type Attachment struct {
	URL         string
	ContentType string
}

// Reaction is an inbound reaction-add event.
type Reaction struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
	UserName  string
	UserBot   bool
	Emoji     string
}
