package models

import "time"

// Submission state constants
const (
	StatePending  = "pending"
	StateApproved = "approved"
	StateRejected = "rejected"
)

// Contest rules
const (
	MaxAttempts    = 2
	ApprovalPoints = 1
	WinnerBonus    = 5
)

// Discord permission bit for Administrator
const PermissionAdministrator int64 = 0x8

// Domain types

type Submission struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	GuildID       string    `json:"guild_id"`
	URL           string    `json:"url"`
	CycleID       string    `json:"cycle_id"`
	State         string    `json:"state"`
	Attempt       int       `json:"attempt"`
	AckMessageID  *string   `json:"ack_message_id,omitempty"`
	VoteMessageID *string   `json:"vote_message_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Active reports whether the submission still occupies the user's slot for its cycle.
func (s Submission) Active() bool {
	return s.State == StatePending || s.State == StateApproved
}

type User struct {
	UserID      string `json:"user_id"`
	GuildID     string `json:"guild_id"`
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
}

type Vote struct {
	ID           int64     `json:"id"`
	VoterID      string    `json:"voter_id"`
	SubmissionID int64     `json:"submission_id"`
	CycleID      string    `json:"cycle_id"`
	GuildID      string    `json:"guild_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type Closure struct {
	CycleID            string    `json:"cycle_id"`
	GuildID            string    `json:"guild_id"`
	WinnerSubmissionID int64     `json:"winner_submission_id"`
	WinnerVotes        int       `json:"winner_votes"`
	ClosedAt           time.Time `json:"closed_at"`
}

// TallyEntry is the vote count of one submission in a cycle.
type TallyEntry struct {
	SubmissionID int64 `json:"submission_id"`
	Votes        int   `json:"votes"`
}

type Winner struct {
	Submission Submission `json:"submission"`
	Votes      int        `json:"votes"`
	Bonus      int        `json:"bonus"`
}

// Dashboard types

type GuildSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Permissions int64  `json:"permissions"`
}

// IsAdmin reports whether the summary carries the Administrator bit.
func (g GuildSummary) IsAdmin() bool {
	return g.Permissions&PermissionAdministrator == PermissionAdministrator
}

// Identity is what the OAuth login learns about a dashboard user.
type Identity struct {
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	Guilds   []GuildSummary `json:"guilds"`
}

type DashboardSession struct {
	ID        string
	Identity  Identity
	ExpiresAt time.Time
}

type SubmissionView struct {
	Submission
	DisplayName string `json:"display_name"`
}

type GuildOverview struct {
	GuildID     string           `json:"guild_id"`
	GuildName   string           `json:"guild_name"`
	CycleID     string           `json:"cycle_id"`
	Locked      bool             `json:"locked"`
	Leaderboard []User           `json:"leaderboard"`
	Recent      []SubmissionView `json:"recent"`
}

type DashboardResponse struct {
	Username string          `json:"username"`
	CycleID  string          `json:"cycle_id"`
	Guilds   []GuildOverview `json:"guilds"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
