// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"context"
	"database/sql"
	"fmt"
)

// Gate restricts command and upload processing to one channel per guild.
type Gate struct {
	db *sql.DB
}

func NewGate(db *sql.DB) *Gate {
	return &Gate{db: db}
}

// Channel returns the configured channel for a guild, if any.
func (g *Gate) Channel(ctx context.Context, guildID string) (string, bool, error) {
	var channelID string
	err := g.db.QueryRowContext(ctx, `
		SELECT channel_id FROM channel_config WHERE guild_id = $1
	`, guildID).Scan(&channelID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query channel config: %w", err)
	}
	return channelID, true, nil
}

// IsAllowed reports whether events from channelID should be processed.
// Guilds without a configured channel are unrestricted.
func (g *Gate) IsAllowed(ctx context.Context, guildID, channelID string) (bool, error) {
	configured, ok, err := g.Channel(ctx, guildID)
	if err != nil {
		return false, err
	}
	return !ok || configured == channelID, nil
}

// SetChannel restricts the guild to channelID. Last write wins.
func (g *Gate) SetChannel(ctx context.Context, guildID, channelID string, actor Actor) error {
	if !actor.Admin {
		return ErrUnauthorized
	}

	_, err := g.db.ExecContext(ctx, `
		INSERT INTO channel_config (guild_id, channel_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET channel_id = excluded.channel_id
	`, guildID, channelID)
	if err != nil {
		return fmt.Errorf("failed to set channel: %w", err)
	}
	return nil
}
