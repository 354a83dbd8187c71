// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, view, and response types shared by the bot,
the contest engine, and the dashboard.

# Domain Types

  - Submission: one clip attempt by a user in a guild for a cycle
  - User: per-guild point balance and cached display name
  - Vote: one vote per voter per guild per cycle
  - Closure: terminal marker that a cycle has been finalized
  - TallyEntry, Winner: results of finalizing a cycle

# Dashboard Types

  - Identity, GuildSummary: what the OAuth login learns about a user
  - DashboardSession: server-side session record
  - GuildOverview, SubmissionView, DashboardResponse: rendered data

# Constants

Submission states:

	StatePending  = "pending"
	StateApproved = "approved"
	StateRejected = "rejected"

Contest rules:

	MaxAttempts    = 2 // per user, guild and cycle
	ApprovalPoints = 1 // credited when an officer approves a clip
	WinnerBonus    = 5 // credited to the author of the weekly winner
*/
package models
