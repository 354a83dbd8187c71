// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/citizen-clips/models"
)

// SessionTTL is how long a dashboard login stays valid.
const SessionTTL = 7 * 24 * time.Hour

// SessionStore keeps dashboard sessions server side. The cookie only carries
// the session id.
type SessionStore struct {
	db    *sql.DB
	clock func() time.Time
}

// NewSessionStore creates a store. clock may be nil.
func NewSessionStore(db *sql.DB, clock func() time.Time) *SessionStore {
	if clock == nil {
		clock = time.Now
	}
	return &SessionStore{db: db, clock: clock}
}

// Create stores identity under a new random id.
func (s *SessionStore) Create(ctx context.Context, identity models.Identity) (*models.DashboardSession, error) {
	guilds, err := json.Marshal(identity.Guilds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode guilds: %w", err)
	}

	sess := &models.DashboardSession{
		ID:        uuid.NewString(),
		Identity:  identity,
		ExpiresAt: s.clock().Add(SessionTTL).UTC().Truncate(time.Second),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard_sessions (id, user_id, username, guilds, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sess.ID, identity.UserID, identity.Username, string(guilds), sess.ExpiresAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return sess, nil
}

// Get loads a live session. Expired and unknown ids yield ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*models.DashboardSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	var sess models.DashboardSession
	var guilds string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, guilds, expires_at
		FROM dashboard_sessions
		WHERE id = $1
	`, id).Scan(&sess.ID, &sess.Identity.UserID, &sess.Identity.Username, &guilds, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	sess.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	if !s.clock().Before(sess.ExpiresAt) {
		if err := s.Delete(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}

	if err := json.Unmarshal([]byte(guilds), &sess.Identity.Guilds); err != nil {
		return nil, fmt.Errorf("failed to decode guilds: %w", err)
	}
	return &sess, nil
}

// Delete removes a session. Deleting an unknown id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM dashboard_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many were removed.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dashboard_sessions WHERE expires_at <= $1`, s.clock().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}
