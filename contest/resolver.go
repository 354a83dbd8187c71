// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/citizen-clips/models"
)

// Resolver closes cycles and rewards the winner.
type Resolver struct {
	db    *sql.DB
	clock func() time.Time
}

func NewResolver(db *sql.DB, clock func() time.Time) *Resolver {
	return &Resolver{db: db, clock: clock}
}

// IsClosed reports whether the cycle has a closure record.
func (r *Resolver) IsClosed(ctx context.Context, guildID, cycleID string) (bool, error) {
	return isClosed(ctx, r.db, guildID, cycleID)
}

// ClosureFor returns the closure record of a cycle, or nil when it is open.
func (r *Resolver) ClosureFor(ctx context.Context, guildID, cycleID string) (*models.Closure, error) {
	var c models.Closure
	var closedAt int64
	err := r.db.QueryRowContext(ctx, `
		SELECT cycle_id, guild_id, winner_submission_id, winner_votes, closed_at
		FROM closures
		WHERE cycle_id = $1 AND guild_id = $2
	`, cycleID, guildID).Scan(&c.CycleID, &c.GuildID, &c.WinnerSubmissionID, &c.WinnerVotes, &closedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query closure: %w", err)
	}
	c.ClosedAt = time.Unix(closedAt, 0).UTC()
	return &c, nil
}

// Tally counts votes per submission, ordered by votes descending and then by
// submission id ascending. The first entry is the winner.
func (r *Resolver) Tally(ctx context.Context, guildID, cycleID string) ([]models.TallyEntry, error) {
	return tally(ctx, r.db, guildID, cycleID)
}

func tally(ctx context.Context, q querier, guildID, cycleID string) ([]models.TallyEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT submission_id, COUNT(*) AS total
		FROM votes
		WHERE guild_id = $1 AND cycle_id = $2
		GROUP BY submission_id
		ORDER BY total DESC, submission_id ASC
	`, guildID, cycleID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	defer rows.Close()

	entries := []models.TallyEntry{}
	for rows.Next() {
		var e models.TallyEntry
		if err := rows.Scan(&e.SubmissionID, &e.Votes); err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Finalize closes the cycle and grants WinnerBonus to the author of the most
// voted submission. The closure insert is the only guard against finalizing
// twice: when it affects no row the cycle was already closed and nothing is
// granted.
func (r *Resolver) Finalize(ctx context.Context, guildID, cycleID string, actor Actor) (*models.Winner, error) {
	if !actor.Admin {
		return nil, ErrUnauthorized
	}

	var winner *models.Winner
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		entries, err := tally(ctx, tx, guildID, cycleID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return ErrNoVotes
		}
		top := entries[0]

		sub, err := scanSubmission(tx.QueryRowContext(ctx,
			`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, top.SubmissionID))
		if err != nil {
			return fmt.Errorf("failed to load winning submission: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO closures (cycle_id, guild_id, winner_submission_id, winner_votes, closed_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (cycle_id, guild_id) DO NOTHING
		`, cycleID, guildID, top.SubmissionID, top.Votes, r.clock().Unix())
		if err != nil {
			return fmt.Errorf("failed to insert closure: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return ErrAlreadyFinalized
		}

		if err := credit(ctx, tx, guildID, sub.UserID, models.WinnerBonus); err != nil {
			return err
		}

		winner = &models.Winner{Submission: *sub, Votes: top.Votes, Bonus: models.WinnerBonus}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("cycle finalized",
		"guild_id", guildID,
		"cycle_id", cycleID,
		"winner_id", winner.Submission.UserID,
		"submission_id", winner.Submission.ID,
		"votes", winner.Votes,
		"actor_id", actor.ID,
	)
	return winner, nil
}
