// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/citizen-clips/contest"
	"github.com/danielhkuo/citizen-clips/cycle"
)

const withdrawTimeout = 5 * time.Second

// Bot runs the contest workflows for inbound chat events.
type Bot struct {
	engine *contest.Engine
	chat   Chat
	clock  func() time.Time
}

// New creates a Bot. clock may be nil.
func New(engine *contest.Engine, chat Chat, clock func() time.Time) *Bot {
	if clock == nil {
		clock = time.Now
	}
	return &Bot{engine: engine, chat: chat, clock: clock}
}

// HandleMessage runs the command or upload carried by msg. Messages from bots,
// direct messages and messages outside the configured channel are ignored.
// The returned error is an infrastructure failure; rule outcomes are answered
// in the channel.
func (b *Bot) HandleMessage(ctx context.Context, msg Message) error {
	if msg.AuthorBot || msg.GuildID == "" {
		return nil
	}

	command, args := parseCommand(msg.Content)

	// Setting the channel must work from any channel
	if command == CmdSetChannel {
		return b.setChannel(ctx, msg)
	}

	allowed, err := b.engine.Gate.IsAllowed(ctx, msg.GuildID, msg.ChannelID)
	if err != nil {
		return fmt.Errorf("channel gate: %w", err)
	}
	if !allowed {
		return nil
	}

	cycleID := cycle.Current(b.clock)
	video, isVideo := videoAttachment(msg.Attachments)

	switch command {
	case CmdCommands, CmdCommand, CmdHelp:
		admin := b.isAdminSoft(ctx, msg.GuildID, msg.AuthorID)
		b.send(ctx, msg.ChannelID, helpText(admin))
		return nil
	}

	if isVideo || command == CmdUpload {
		url := ""
		if isVideo {
			url = video.URL
		} else if len(args) > 0 {
			url = args[0]
		}
		if err := b.upload(ctx, msg, cycleID, url, command == CmdUpload); err != nil {
			return err
		}
	}

	switch command {
	case CmdPoints:
		return b.points(ctx, msg)
	case CmdVideos:
		return b.openVoting(ctx, msg, cycleID)
	case CmdFinalize:
		return b.finalize(ctx, msg, cycleID)
	}
	return nil
}

func (b *Bot) setChannel(ctx context.Context, msg Message) error {
	actor, err := b.actor(ctx, msg.GuildID, msg.AuthorID, msg.AuthorName)
	if err != nil {
		return err
	}

	err = b.engine.Gate.SetChannel(ctx, msg.GuildID, msg.ChannelID, actor)
	if errors.Is(err, contest.ErrUnauthorized) {
		b.reply(ctx, msg, msgChannelDenied)
		return nil
	}
	if err != nil {
		return fmt.Errorf("set channel: %w", err)
	}

	slog.Info("channel configured", "guild_id", msg.GuildID, "channel_id", msg.ChannelID, "actor_id", actor.ID)
	b.send(ctx, msg.ChannelID, channelConfigured(msg.ChannelID))
	return nil
}

// upload submits url. explicit is true for the upload command, which is
// answered even when no URL was given.
func (b *Bot) upload(ctx context.Context, msg Message, cycleID, url string, explicit bool) error {
	sub, err := b.engine.Ledger.Submit(ctx, contest.SubmitRequest{
		UserID:   msg.AuthorID,
		UserName: msg.AuthorName,
		GuildID:  msg.GuildID,
		CycleID:  cycleID,
		URL:      url,
	})
	switch {
	case errors.Is(err, contest.ErrMissingURL):
		if explicit {
			b.reply(ctx, msg, msgMissingURL)
		}
		return nil
	case errors.Is(err, contest.ErrSectorClosed):
		b.send(ctx, msg.ChannelID, msgSectorClosed)
		return nil
	case errors.Is(err, contest.ErrActiveSubmissionExists):
		b.reply(ctx, msg, msgActiveExists)
		return nil
	case errors.Is(err, contest.ErrAttemptsExhausted):
		b.reply(ctx, msg, msgAttemptsOut)
		return nil
	case err != nil:
		b.reply(ctx, msg, msgSystemFailure)
		return fmt.Errorf("submit: %w", err)
	}

	// Without a linked acknowledgement nobody can moderate the row, so it is
	// withdrawn and the user can retry.
	ackID, err := b.chat.Reply(ctx, msg.ChannelID, msg.ID, submissionReceived(sub.Attempt))
	if err != nil {
		slog.Error("failed to acknowledge submission", "submission_id", sub.ID, "error", err)
		b.withdraw(ctx, sub.ID)
		return nil
	}
	if err := b.engine.Ledger.LinkAcknowledgement(ctx, sub.ID, ackID); err != nil {
		b.withdraw(ctx, sub.ID)
		if eerr := b.chat.Edit(ctx, msg.ChannelID, ackID, msgSystemFailure); eerr != nil {
			slog.Error("failed to edit acknowledgement", "message_id", ackID, "error", eerr)
		}
		return fmt.Errorf("link acknowledgement: %w", err)
	}

	b.react(ctx, msg.ChannelID, ackID, EmojiApprove)
	b.react(ctx, msg.ChannelID, ackID, EmojiReject)
	return nil
}

// withdraw removes an unacknowledged submission. It runs even when ctx has
// already expired.
func (b *Bot) withdraw(ctx context.Context, submissionID int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), withdrawTimeout)
	defer cancel()
	if err := b.engine.Ledger.Withdraw(ctx, submissionID); err != nil {
		slog.Error("failed to withdraw unacknowledged submission", "submission_id", submissionID, "error", err)
	}
}

func (b *Bot) points(ctx context.Context, msg Message) error {
	points, err := b.engine.Scores.Balance(ctx, msg.GuildID, msg.AuthorID)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	b.reply(ctx, msg, pointsBalance(points))
	return nil
}

func (b *Bot) openVoting(ctx context.Context, msg Message, cycleID string) error {
	actor, err := b.actor(ctx, msg.GuildID, msg.AuthorID, msg.AuthorName)
	if err != nil {
		return err
	}

	entries, err := b.engine.Voting.Open(ctx, msg.GuildID, cycleID, actor)
	switch {
	case errors.Is(err, contest.ErrUnauthorized):
		b.reply(ctx, msg, msgAdminDenied)
		return nil
	case errors.Is(err, contest.ErrNoApprovedSubmissions):
		b.reply(ctx, msg, msgNoApproved)
		return nil
	case errors.Is(err, contest.ErrVotingAlreadyOpen):
		b.reply(ctx, msg, msgVotingOpen)
		return nil
	case errors.Is(err, contest.ErrCycleClosed):
		b.reply(ctx, msg, msgAlreadyFinalized)
		return nil
	case err != nil:
		return fmt.Errorf("open voting: %w", err)
	}

	b.send(ctx, msg.ChannelID, msgVotingStarted)
	for _, sub := range entries {
		voteMsgID, err := b.chat.Send(ctx, msg.ChannelID, votingEntry(sub))
		if err != nil {
			slog.Error("failed to post voting entry", "submission_id", sub.ID, "error", err)
			continue
		}
		if err := b.engine.Voting.LinkVotingMessage(ctx, sub.ID, voteMsgID); err != nil {
			slog.Error("failed to link voting message", "submission_id", sub.ID, "error", err)
			continue
		}
		b.react(ctx, msg.ChannelID, voteMsgID, EmojiVote)
	}
	return nil
}

func (b *Bot) finalize(ctx context.Context, msg Message, cycleID string) error {
	actor, err := b.actor(ctx, msg.GuildID, msg.AuthorID, msg.AuthorName)
	if err != nil {
		return err
	}

	winner, err := b.engine.Resolver.Finalize(ctx, msg.GuildID, cycleID, actor)
	switch {
	case errors.Is(err, contest.ErrUnauthorized):
		b.reply(ctx, msg, msgAdminDenied)
		return nil
	case errors.Is(err, contest.ErrNoVotes):
		b.reply(ctx, msg, msgNoVotes)
		return nil
	case errors.Is(err, contest.ErrAlreadyFinalized):
		b.reply(ctx, msg, msgAlreadyFinalized)
		return nil
	case err != nil:
		return fmt.Errorf("finalize: %w", err)
	}

	b.send(ctx, msg.ChannelID, winnerAnnouncement(winner))
	return nil
}

// HandleReaction applies moderation decisions on acknowledgement messages and
// votes on voting-round messages. Reactions on anything else are ignored.
func (b *Bot) HandleReaction(ctx context.Context, r Reaction) error {
	if r.UserBot || r.GuildID == "" {
		return nil
	}

	sub, err := b.engine.Ledger.FindByAcknowledgement(ctx, r.GuildID, r.MessageID)
	switch {
	case err == nil:
		return b.moderate(ctx, r, sub.ID)
	case !errors.Is(err, contest.ErrUnknownMessage):
		return fmt.Errorf("find acknowledgement: %w", err)
	}

	if !sameEmoji(r.Emoji, EmojiVote) {
		return nil
	}
	return b.vote(ctx, r)
}

func (b *Bot) moderate(ctx context.Context, r Reaction, submissionID int64) error {
	actor, err := b.actor(ctx, r.GuildID, r.UserID, r.UserName)
	if err != nil {
		return err
	}
	if !actor.Admin {
		// Members may not leave reactions on moderation messages
		b.retract(ctx, r)
		return nil
	}

	var decision contest.Decision
	switch {
	case sameEmoji(r.Emoji, EmojiApprove):
		decision = contest.Approve
	case sameEmoji(r.Emoji, EmojiReject):
		decision = contest.Reject
	default:
		return nil
	}

	res, err := b.engine.Moderator.Moderate(ctx, submissionID, decision, actor)
	if errors.Is(err, contest.ErrUnknownMessage) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("moderate: %w", err)
	}
	if !res.Applied {
		return nil
	}

	if err := b.chat.Edit(ctx, r.ChannelID, r.MessageID, moderationNotice(r.Emoji, res.Submission.State, actor.ID)); err != nil {
		slog.Error("failed to edit acknowledgement", "message_id", r.MessageID, "error", err)
	}
	if err := b.chat.ClearReactions(ctx, r.ChannelID, r.MessageID); err != nil {
		slog.Error("failed to clear reactions", "message_id", r.MessageID, "error", err)
	}
	return nil
}

func (b *Bot) vote(ctx context.Context, r Reaction) error {
	_, err := b.engine.Voting.CastVote(ctx, contest.CastVoteRequest{
		VoterID:   r.UserID,
		VoterName: r.UserName,
		GuildID:   r.GuildID,
		CycleID:   cycle.Current(b.clock),
		MessageID: r.MessageID,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, contest.ErrUnknownMessage):
		return nil
	case contest.KindOf(err) == contest.KindPolicy:
		slog.Info("vote rejected", "voter_id", r.UserID, "message_id", r.MessageID, "reason", err)
		b.retract(ctx, r)
		return nil
	default:
		return fmt.Errorf("cast vote: %w", err)
	}
}

// actor resolves the elevated-permission flag of userID.
func (b *Bot) actor(ctx context.Context, guildID, userID, name string) (contest.Actor, error) {
	admin, err := b.chat.IsAdmin(ctx, guildID, userID)
	if err != nil {
		return contest.Actor{}, fmt.Errorf("permission lookup: %w", err)
	}
	return contest.Actor{ID: userID, Name: name, Admin: admin}, nil
}

// isAdminSoft treats lookup failures as "not an admin".
func (b *Bot) isAdminSoft(ctx context.Context, guildID, userID string) bool {
	admin, err := b.chat.IsAdmin(ctx, guildID, userID)
	if err != nil {
		slog.Warn("permission lookup failed", "guild_id", guildID, "user_id", userID, "error", err)
		return false
	}
	return admin
}

func (b *Bot) send(ctx context.Context, channelID, content string) {
	if _, err := b.chat.Send(ctx, channelID, content); err != nil {
		slog.Error("failed to send message", "channel_id", channelID, "error", err)
	}
}

func (b *Bot) reply(ctx context.Context, msg Message, content string) {
	if _, err := b.chat.Reply(ctx, msg.ChannelID, msg.ID, content); err != nil {
		slog.Error("failed to reply", "channel_id", msg.ChannelID, "message_id", msg.ID, "error", err)
	}
}

func (b *Bot) react(ctx context.Context, channelID, messageID, emoji string) {
	if err := b.chat.React(ctx, channelID, messageID, emoji); err != nil {
		slog.Error("failed to add reaction", "message_id", messageID, "emoji", emoji, "error", err)
	}
}

func (b *Bot) retract(ctx context.Context, r Reaction) {
	if err := b.chat.RemoveReaction(ctx, r.ChannelID, r.MessageID, r.Emoji, r.UserID); err != nil {
		slog.Error("failed to remove reaction", "message_id", r.MessageID, "user_id", r.UserID, "error", err)
	}
}

// sameEmoji compares emoji ignoring the variation selector some clients add.
func sameEmoji(a, b string) bool {
	return strings.TrimSuffix(a, "\ufe0f") == strings.TrimSuffix(b, "\ufe0f")
}
