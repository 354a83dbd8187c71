// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/citizen-clips/models"
)

// Scores is the per-guild point ledger. Balances only change through
// Moderator (approval credit) and Resolver (winner bonus).
type Scores struct {
	db *sql.DB
}

func NewScores(db *sql.DB) *Scores {
	return &Scores{db: db}
}

// Balance returns the user's points, 0 when the user has no row yet.
func (s *Scores) Balance(ctx context.Context, guildID, userID string) (int, error) {
	var points int
	err := s.db.QueryRowContext(ctx, `
		SELECT points FROM users WHERE user_id = $1 AND guild_id = $2
	`, userID, guildID).Scan(&points)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query balance: %w", err)
	}
	return points, nil
}

// Leaderboard lists a guild's users by points, highest first.
func (s *Scores) Leaderboard(ctx context.Context, guildID string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, guild_id, display_name, points
		FROM users
		WHERE guild_id = $1
		ORDER BY points DESC, display_name, user_id
	`, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.UserID, &u.GuildID, &u.DisplayName, &u.Points); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// RefreshDisplayName updates the cached name of an existing user. It never
// creates a row.
func (s *Scores) RefreshDisplayName(ctx context.Context, guildID, userID, name string) error {
	if name == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET display_name = $1 WHERE user_id = $2 AND guild_id = $3
	`, name, userID, guildID)
	if err != nil {
		return fmt.Errorf("failed to refresh display name: %w", err)
	}
	return nil
}

// ensureUser creates the user with 0 points if absent and refreshes the
// cached display name when one is known.
func ensureUser(ctx context.Context, q querier, guildID, userID, name string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (user_id, guild_id, display_name, points)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name = '' THEN users.display_name ELSE excluded.display_name END
	`, userID, guildID, name)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// credit adds points to a user, creating the row when needed.
func credit(ctx context.Context, q querier, guildID, userID string, points int) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (user_id, guild_id, display_name, points)
		VALUES ($1, $2, '', $3)
		ON CONFLICT (user_id, guild_id) DO UPDATE SET
			points = users.points + excluded.points
	`, userID, guildID, points)
	if err != nil {
		return fmt.Errorf("failed to credit points: %w", err)
	}
	return nil
}
