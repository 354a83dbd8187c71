// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/citizen-clips/models"
)

// Actor is the user performing an operation. Admin is resolved by the caller
// from the chat platform's permission flags.
type Actor struct {
	ID    string
	Name  string
	Admin bool
}

// Engine groups the contest components over one shared connection pool.
type Engine struct {
	Gate      *Gate
	Ledger    *Ledger
	Moderator *Moderator
	Voting    *Voting
	Resolver  *Resolver
	Scores    *Scores
}

// New wires every component to db. clock may be nil.
func New(db *sql.DB, clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		Gate:      NewGate(db),
		Ledger:    NewLedger(db, clock),
		Moderator: NewModerator(db),
		Voting:    NewVoting(db, clock),
		Resolver:  NewResolver(db, clock),
		Scores:    NewScores(db),
	}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, committing only when fn returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rowScanner is an interface that can be satisfied by *sql.Row or *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const submissionColumns = `id, user_id, guild_id, url, cycle_id, state, attempt, ack_message_id, vote_message_id, created_at`

func scanSubmission(scanner rowScanner) (*models.Submission, error) {
	var sub models.Submission
	var createdAt int64
	err := scanner.Scan(
		&sub.ID, &sub.UserID, &sub.GuildID, &sub.URL, &sub.CycleID, &sub.State,
		&sub.Attempt, &sub.AckMessageID, &sub.VoteMessageID, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	sub.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &sub, nil
}

func isClosed(ctx context.Context, q querier, guildID, cycleID string) (bool, error) {
	var closed bool
	err := q.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM closures WHERE cycle_id = $1 AND guild_id = $2
		)
	`, cycleID, guildID).Scan(&closed)
	if err != nil {
		return false, fmt.Errorf("failed to check closure: %w", err)
	}
	return closed, nil
}
