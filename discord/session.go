// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/danielhkuo/citizen-clips/bot"
)

// Intents needed to read commands and reactions in guild channels.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildMessageReactions

// Session owns the gateway connection. It implements bot.Chat for the
// workflows and answers guild and user lookups for the dashboard.
type Session struct {
	dg *discordgo.Session
}

// New prepares a bot session. No connection is made until Open.
func New(token string) (*Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	dg.Identify.Intents = Intents
	// Events are handed to the dispatcher, which owns concurrency
	dg.SyncEvents = true

	dg.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		slog.Info("discord session ready", "user", r.User.Username, "guilds", len(r.Guilds))
	})

	return &Session{dg: dg}, nil
}

// Open connects to the gateway. Failure here is fatal for the process.
func (s *Session) Open() error {
	if err := s.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	return nil
}

// Close closes the Discord connection
func (s *Session) Close() error {
	return s.dg.Close()
}

// Attach routes message and reaction events through d into b.
func (s *Session) Attach(b *bot.Bot, d *bot.Dispatcher) {
	s.dg.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		msg := toMessage(m)
		err := d.Dispatch("message_create", func(ctx context.Context) error {
			return b.HandleMessage(ctx, msg)
		})
		if err != nil {
			slog.Warn("message dropped", "message_id", msg.ID, "error", err)
		}
	})

	s.dg.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		reaction := s.toReaction(r)
		err := d.Dispatch("reaction_add", func(ctx context.Context) error {
			return b.HandleReaction(ctx, reaction)
		})
		if err != nil {
			slog.Warn("reaction dropped", "message_id", reaction.MessageID, "error", err)
		}
	})
}

func toMessage(m *discordgo.MessageCreate) bot.Message {
	msg := bot.Message{
		ID:        m.ID,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		msg.AuthorBot = m.Author.Bot
	}
	for _, a := range m.Attachments {
		msg.Attachments = append(msg.Attachments, bot.Attachment{URL: a.URL, ContentType: a.ContentType})
	}
	return msg
}

func (s *Session) toReaction(r *discordgo.MessageReactionAdd) bot.Reaction {
	reaction := bot.Reaction{
		GuildID:   r.GuildID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.Name,
	}
	if r.Member != nil && r.Member.User != nil {
		reaction.UserName = r.Member.User.Username
		reaction.UserBot = r.Member.User.Bot
	}
	if s.dg.State != nil && s.dg.State.User != nil && r.UserID == s.dg.State.User.ID {
		reaction.UserBot = true
	}
	return reaction
}
