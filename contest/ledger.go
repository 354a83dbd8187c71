// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielhkuo/citizen-clips/db"
	"github.com/danielhkuo/citizen-clips/models"
)

// Ledger tracks clip submissions and enforces the per-cycle attempt rules.
type Ledger struct {
	db    *sql.DB
	clock func() time.Time
}

func NewLedger(db *sql.DB, clock func() time.Time) *Ledger {
	return &Ledger{db: db, clock: clock}
}

type SubmitRequest struct {
	UserID   string
	UserName string
	GuildID  string
	CycleID  string
	URL      string
}

// Submit records a new pending submission. Checks run in order: cycle closed,
// active submission present, attempts exhausted. The returned submission's
// Attempt is the 1-based attempt number shown to the user.
func (l *Ledger) Submit(ctx context.Context, req SubmitRequest) (*models.Submission, error) {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return nil, ErrMissingURL
	}

	var sub *models.Submission
	err := withTx(ctx, l.db, func(tx *sql.Tx) error {
		attempts, err := checkSubmittable(ctx, tx, req.UserID, req.GuildID, req.CycleID)
		if err != nil {
			return err
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO submissions (user_id, guild_id, url, cycle_id, state, attempt, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+submissionColumns,
			req.UserID, req.GuildID, req.URL, req.CycleID, models.StatePending, attempts+1, l.clock().Unix())
		sub, err = scanSubmission(row)
		if err != nil {
			return fmt.Errorf("failed to insert submission: %w", err)
		}

		return ensureUser(ctx, tx, req.GuildID, req.UserID, req.UserName)
	})

	if err != nil && db.IsUniqueViolation(err) {
		// A concurrent submit won the race; report what the winner left behind.
		slog.Info("submission race lost", "user_id", req.UserID, "guild_id", req.GuildID, "cycle_id", req.CycleID)
		if _, cerr := checkSubmittable(ctx, l.db, req.UserID, req.GuildID, req.CycleID); cerr != nil {
			return nil, cerr
		}
		return nil, ErrActiveSubmissionExists
	}
	if err != nil {
		return nil, err
	}

	slog.Info("submission created",
		"submission_id", sub.ID,
		"user_id", sub.UserID,
		"guild_id", sub.GuildID,
		"cycle_id", sub.CycleID,
		"attempt", sub.Attempt,
	)
	return sub, nil
}

// checkSubmittable applies the submit preconditions and returns the number of
// prior attempts.
func checkSubmittable(ctx context.Context, q querier, userID, guildID, cycleID string) (int, error) {
	closed, err := isClosed(ctx, q, guildID, cycleID)
	if err != nil {
		return 0, err
	}
	if closed {
		return 0, ErrSectorClosed
	}

	var attempts, active int
	err = q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN state <> $4 THEN 1 ELSE 0 END), 0)
		FROM submissions
		WHERE user_id = $1 AND guild_id = $2 AND cycle_id = $3
	`, userID, guildID, cycleID, models.StateRejected).Scan(&attempts, &active)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}

	if active > 0 {
		return attempts, ErrActiveSubmissionExists
	}
	if attempts >= models.MaxAttempts {
		return attempts, ErrAttemptsExhausted
	}
	return attempts, nil
}

// LinkAcknowledgement records the message that carries moderation reactions.
func (l *Ledger) LinkAcknowledgement(ctx context.Context, submissionID int64, messageID string) error {
	res, err := l.db.ExecContext(ctx, `
		UPDATE submissions SET ack_message_id = $1 WHERE id = $2
	`, messageID, submissionID)
	if err != nil {
		return fmt.Errorf("failed to link acknowledgement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownMessage
	}
	return nil
}

// Withdraw deletes a pending submission that never got an acknowledgement
// message. The attempt is not counted and the user may submit again.
func (l *Ledger) Withdraw(ctx context.Context, submissionID int64) error {
	res, err := l.db.ExecContext(ctx, `
		DELETE FROM submissions
		WHERE id = $1 AND state = $2 AND ack_message_id IS NULL
	`, submissionID, models.StatePending)
	if err != nil {
		return fmt.Errorf("failed to withdraw submission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUnknownMessage
	}

	slog.Info("submission withdrawn", "submission_id", submissionID)
	return nil
}

// Get loads a submission by id.
func (l *Ledger) Get(ctx context.Context, submissionID int64) (*models.Submission, error) {
	return l.findOne(ctx, `WHERE id = $1`, submissionID)
}

// FindByAcknowledgement resolves a moderation reaction target.
func (l *Ledger) FindByAcknowledgement(ctx context.Context, guildID, messageID string) (*models.Submission, error) {
	return l.findOne(ctx, `WHERE ack_message_id = $1 AND guild_id = $2`, messageID, guildID)
}

// FindByVotingMessage resolves a vote reaction target.
func (l *Ledger) FindByVotingMessage(ctx context.Context, guildID, messageID string) (*models.Submission, error) {
	return l.findOne(ctx, `WHERE vote_message_id = $1 AND guild_id = $2`, messageID, guildID)
}

func (l *Ledger) findOne(ctx context.Context, where string, args ...any) (*models.Submission, error) {
	sub, err := scanSubmission(l.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions `+where+` ORDER BY id LIMIT 1`, args...))
	if err == sql.ErrNoRows {
		return nil, ErrUnknownMessage
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}
	return sub, nil
}

// Recent lists the latest submissions of a guild, newest first.
func (l *Ledger) Recent(ctx context.Context, guildID string, limit int) ([]models.Submission, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE guild_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent submissions: %w", err)
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}
