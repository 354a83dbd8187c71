// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/citizen-clips/db"
	"github.com/danielhkuo/citizen-clips/models"
)

// Voting opens voting rounds and records community votes.
type Voting struct {
	db    *sql.DB
	clock func() time.Time
}

func NewVoting(db *sql.DB, clock func() time.Time) *Voting {
	return &Voting{db: db, clock: clock}
}

// Open returns the approved submissions of the cycle that are not yet in the
// voting round, oldest first. The caller posts one voting-round message per
// entry and links it with LinkVotingMessage. A finalized cycle cannot be
// opened, and reopening only posts entries approved since the last round.
func (v *Voting) Open(ctx context.Context, guildID, cycleID string, actor Actor) ([]models.Submission, error) {
	if !actor.Admin {
		return nil, ErrUnauthorized
	}

	closed, err := isClosed(ctx, v.db, guildID, cycleID)
	if err != nil {
		return nil, err
	}
	if closed {
		return nil, ErrCycleClosed
	}

	rows, err := v.db.QueryContext(ctx, `
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE guild_id = $1 AND cycle_id = $2 AND state = $3 AND vote_message_id IS NULL
		ORDER BY id
	`, guildID, cycleID, models.StateApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved submissions: %w", err)
	}
	defer rows.Close()

	var entries []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		entries = append(entries, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		var posted int
		err := v.db.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM submissions
			WHERE guild_id = $1 AND cycle_id = $2 AND state = $3 AND vote_message_id IS NOT NULL
		`, guildID, cycleID, models.StateApproved).Scan(&posted)
		if err != nil {
			return nil, fmt.Errorf("failed to count posted entries: %w", err)
		}
		if posted > 0 {
			return nil, ErrVotingAlreadyOpen
		}
		return nil, ErrNoApprovedSubmissions
	}

	slog.Info("voting opened", "guild_id", guildID, "cycle_id", cycleID, "entries", len(entries), "actor_id", actor.ID)
	return entries, nil
}

// LinkVotingMessage records the voting-round message of a submission. The
// first link is kept; a second one returns ErrUnknownMessage.
func (v *Voting) LinkVotingMessage(ctx context.Context, submissionID int64, messageID string) error {
	res, err := v.db.ExecContext(ctx, `
		UPDATE submissions SET vote_message_id = $1
		WHERE id = $2 AND state = $3 AND vote_message_id IS NULL
	`, messageID, submissionID, models.StateApproved)
	if err != nil {
		return fmt.Errorf("failed to link voting message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownMessage
	}
	return nil
}

type CastVoteRequest struct {
	VoterID   string
	VoterName string
	GuildID   string
	CycleID   string
	// MessageID is the voting-round message that received the reaction.
	MessageID string
}

// CastVote records one vote per voter per guild per cycle. Authors may vote
// for their own clip.
func (v *Voting) CastVote(ctx context.Context, req CastVoteRequest) (*models.Vote, error) {
	var vote *models.Vote
	err := withTx(ctx, v.db, func(tx *sql.Tx) error {
		var submissionID int64
		var submissionCycle string
		err := tx.QueryRowContext(ctx, `
			SELECT id, cycle_id FROM submissions
			WHERE vote_message_id = $1 AND guild_id = $2
			ORDER BY id LIMIT 1
		`, req.MessageID, req.GuildID).Scan(&submissionID, &submissionCycle)
		if err == sql.ErrNoRows {
			return ErrUnknownMessage
		}
		if err != nil {
			return fmt.Errorf("failed to query voting entry: %w", err)
		}

		// Entries from an earlier cycle can no longer collect votes.
		if submissionCycle != req.CycleID {
			return ErrCycleClosed
		}
		closed, err := isClosed(ctx, tx, req.GuildID, req.CycleID)
		if err != nil {
			return err
		}
		if closed {
			return ErrCycleClosed
		}

		var voted bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1 FROM votes WHERE voter_id = $1 AND guild_id = $2 AND cycle_id = $3
			)
		`, req.VoterID, req.GuildID, req.CycleID).Scan(&voted)
		if err != nil {
			return fmt.Errorf("failed to check existing vote: %w", err)
		}
		if voted {
			return ErrAlreadyVoted
		}

		now := v.clock().UTC().Truncate(time.Second)
		vote = &models.Vote{
			VoterID:      req.VoterID,
			SubmissionID: submissionID,
			CycleID:      req.CycleID,
			GuildID:      req.GuildID,
			CreatedAt:    now,
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO votes (voter_id, submission_id, cycle_id, guild_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, req.VoterID, submissionID, req.CycleID, req.GuildID, now.Unix()).Scan(&vote.ID)
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}

		return ensureUser(ctx, tx, req.GuildID, req.VoterID, req.VoterName)
	})

	if err != nil && db.IsUniqueViolation(err) {
		return nil, ErrAlreadyVoted
	}
	if err != nil {
		return nil, err
	}

	slog.Info("vote cast",
		"voter_id", vote.VoterID,
		"submission_id", vote.SubmissionID,
		"guild_id", vote.GuildID,
		"cycle_id", vote.CycleID,
	)
	return vote, nil
}
