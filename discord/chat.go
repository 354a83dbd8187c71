// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// IsAdmin reports whether userID owns the guild or holds a role with the
// Administrator permission. The state cache is consulted first with REST as
// fallback.
func (s *Session) IsAdmin(ctx context.Context, guildID, userID string) (bool, error) {
	guild, err := s.dg.State.Guild(guildID)
	if err != nil {
		guild, err = s.dg.Guild(guildID, discordgo.WithContext(ctx))
		if err != nil {
			return false, fmt.Errorf("failed to get guild: %w", err)
		}
	}

	member, err := s.dg.State.Member(guildID, userID)
	if err != nil {
		member, err = s.dg.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if err != nil {
			return false, fmt.Errorf("failed to get member: %w", err)
		}
	}

	return hasAdministrator(guild, member, userID), nil
}

// hasAdministrator evaluates guild-level permissions. @everyone shares the
// guild's id and applies to every member.
func hasAdministrator(guild *discordgo.Guild, member *discordgo.Member, userID string) bool {
	if userID == guild.OwnerID {
		return true
	}

	held := map[string]bool{guild.ID: true}
	for _, roleID := range member.Roles {
		held[roleID] = true
	}

	for _, role := range guild.Roles {
		if held[role.ID] && role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func (s *Session) Send(ctx context.Context, channelID, content string) (string, error) {
	m, err := s.dg.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return m.ID, nil
}

func (s *Session) Reply(ctx context.Context, channelID, messageID, content string) (string, error) {
	ref := &discordgo.MessageReference{MessageID: messageID, ChannelID: channelID}
	m, err := s.dg.ChannelMessageSendReply(channelID, content, ref, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to reply: %w", err)
	}
	return m.ID, nil
}

func (s *Session) Edit(ctx context.Context, channelID, messageID, content string) error {
	if _, err := s.dg.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (s *Session) React(ctx context.Context, channelID, messageID, emoji string) error {
	if err := s.dg.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	return nil
}

func (s *Session) RemoveReaction(ctx context.Context, channelID, messageID, emoji, userID string) error {
	if err := s.dg.MessageReactionRemove(channelID, messageID, emoji, userID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}

func (s *Session) ClearReactions(ctx context.Context, channelID, messageID string) error {
	if err := s.dg.MessageReactionsRemoveAll(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to clear reactions: %w", err)
	}
	return nil
}

// HasGuild reports whether the bot is a member of guildID.
func (s *Session) HasGuild(guildID string) bool {
	_, err := s.dg.State.Guild(guildID)
	return err == nil
}

// Username fetches a user's name from the platform.
func (s *Session) Username(ctx context.Context, userID string) (string, error) {
	u, err := s.dg.User(userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to fetch user: %w", err)
	}
	return u.Username, nil
}
