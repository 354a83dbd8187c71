// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/citizen-clips/cliparse"
	"github.com/danielhkuo/citizen-clips/db"
	"github.com/danielhkuo/citizen-clips/models"
)

// TestDBURL is an in-memory SQLite database. Each SetupTestDB call gets its own.
const TestDBURL = ":memory:"

// Fixed identifiers shared by tests
const (
	TestGuildID   = "guild-1"
	TestChannelID = "channel-1"
	TestAdminID   = "admin-1"
)

// SetupTestDB creates a fresh in-memory database with the full schema.
// The pool is limited to one connection, so the database lives as long as
// the returned handle.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.DialectSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseURL:  TestDBURL,
		DatabaseType: db.DialectSQLite,
		BotToken:     "test-bot-token",
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		CallbackURL:  "http://localhost:3318/auth/discord/callback",
		SessionSalt:  "test-session-salt",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// CreateTestSubmission inserts a submission directly and returns its id.
// The attempt number follows the rows already stored for the user and cycle.
func CreateTestSubmission(t *testing.T, db *sql.DB, guildID, userID, cycleID, state string) int64 {
	t.Helper()

	var attempts int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM submissions WHERE user_id = $1 AND guild_id = $2 AND cycle_id = $3
	`, userID, guildID, cycleID).Scan(&attempts)
	if err != nil {
		t.Fatalf("Failed to count submissions: %v", err)
	}

	var id int64
	err = db.QueryRow(`
		INSERT INTO submissions (user_id, guild_id, url, cycle_id, state, attempt, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, userID, guildID, "https://clips.example/"+userID, cycleID, state, attempts+1, time.Now().Unix()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test submission: %v", err)
	}

	return id
}

// CreateTestUser inserts a user row with the given balance.
func CreateTestUser(t *testing.T, db *sql.DB, guildID, userID, name string, points int) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO users (user_id, guild_id, display_name, points)
		VALUES ($1, $2, $3, $4)
	`, userID, guildID, name, points)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
}

// CreateTestSession stores a dashboard session and returns its id.
func CreateTestSession(t *testing.T, db *sql.DB, id string, identity models.Identity, expiresAt time.Time) string {
	t.Helper()

	guilds, err := json.Marshal(identity.Guilds)
	if err != nil {
		t.Fatalf("Failed to encode guilds: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO dashboard_sessions (id, user_id, username, guilds, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, identity.UserID, identity.Username, string(guilds), expiresAt.Unix())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return id
}

// CountRows returns the number of rows in table matching where.
func CountRows(t *testing.T, db *sql.DB, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
