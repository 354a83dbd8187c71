// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	var ddl string
	switch dialect {
	case DialectPostgres:
		ddl = postgresSchema
	case DialectSQLite:
		ddl = sqliteSchema
	default:
		return fmt.Errorf("unsupported database type %q", dialect)
	}

	_, err := db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Tables that do not depend on the id column type
const sharedSchema = `
-- Per-guild point balances
CREATE TABLE IF NOT EXISTS users (
    user_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    display_name TEXT NOT NULL DEFAULT '',
    points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
    PRIMARY KEY (user_id, guild_id)
);

CREATE INDEX IF NOT EXISTS idx_users_leaderboard ON users(guild_id, points);

-- Finalized cycles
CREATE TABLE IF NOT EXISTS closures (
    cycle_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    winner_submission_id BIGINT NOT NULL,
    winner_votes INTEGER NOT NULL,
    closed_at BIGINT NOT NULL,
    PRIMARY KEY (cycle_id, guild_id)
);

-- Channel restriction
CREATE TABLE IF NOT EXISTS channel_config (
    guild_id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL
);

-- Dashboard sessions
CREATE TABLE IF NOT EXISTS dashboard_sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    username TEXT NOT NULL,
    guilds TEXT NOT NULL,
    expires_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submissions_ack ON submissions(guild_id, ack_message_id);
CREATE INDEX IF NOT EXISTS idx_submissions_vote ON submissions(guild_id, vote_message_id);
CREATE INDEX IF NOT EXISTS idx_submissions_cycle ON submissions(guild_id, cycle_id, state);

-- One active (pending/approved) submission per user, guild and cycle
CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_active
    ON submissions(user_id, guild_id, cycle_id)
    WHERE state IN ('pending', 'approved');

CREATE INDEX IF NOT EXISTS idx_votes_tally ON votes(guild_id, cycle_id, submission_id);
`

const postgresSchema = `
-- Clip submissions
CREATE TABLE IF NOT EXISTS submissions (
    id BIGSERIAL PRIMARY KEY,
    user_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    url TEXT NOT NULL,
    cycle_id TEXT NOT NULL,
    state TEXT NOT NULL DEFAULT 'pending' CHECK (state IN ('pending', 'approved', 'rejected')),
    attempt INTEGER NOT NULL CHECK (attempt BETWEEN 1 AND 2),
    ack_message_id TEXT,
    vote_message_id TEXT,
    created_at BIGINT NOT NULL,
    UNIQUE (user_id, guild_id, cycle_id, attempt)
);

-- Community votes
CREATE TABLE IF NOT EXISTS votes (
    id BIGSERIAL PRIMARY KEY,
    voter_id TEXT NOT NULL,
    submission_id BIGINT NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
    cycle_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (voter_id, guild_id, cycle_id)
);
` + sharedSchema

const sqliteSchema = `
-- Clip submissions
CREATE TABLE IF NOT EXISTS submissions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    url TEXT NOT NULL,
    cycle_id TEXT NOT NULL,
    state TEXT NOT NULL DEFAULT 'pending' CHECK (state IN ('pending', 'approved', 'rejected')),
    attempt INTEGER NOT NULL CHECK (attempt BETWEEN 1 AND 2),
    ack_message_id TEXT,
    vote_message_id TEXT,
    created_at BIGINT NOT NULL,
    UNIQUE (user_id, guild_id, cycle_id, attempt)
);

-- Community votes
CREATE TABLE IF NOT EXISTS votes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    voter_id TEXT NOT NULL,
    submission_id INTEGER NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
    cycle_id TEXT NOT NULL,
    guild_id TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    UNIQUE (voter_id, guild_id, cycle_id)
);
` + sharedSchema
