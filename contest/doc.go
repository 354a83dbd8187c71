// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package contest implements the weekly clip contest: channel gating, the
submission ledger, moderation, voting, cycle resolution and points.

# Components

	engine := contest.New(db, time.Now)

  - Gate: optional per-guild channel restriction
  - Ledger: submissions, at most one active and two total per user and cycle
  - Moderator: pending -> approved | rejected, +1 point on approval
  - Voting: approved entries posted once per cycle, one vote per voter per cycle
  - Resolver: plurality winner, +5 points, closure record
  - Scores: balances and leaderboard

# Submission Lifecycle

	pending ──approve──▶ approved
	   │
	   └────reject────▶ rejected

Approved and rejected are terminal. A rejected submission frees the active
slot but still counts toward the attempt cap.

# Results

Every operation returns (value, error). Rule outcomes are *Error values with a
Kind (validation, policy, authorization, not found) and are compared with
errors.Is against the Err* sentinels. Anything else is an infrastructure error.

# Concurrency

There is no in-process locking. Each operation runs in one transaction and
the store's unique constraints settle races between concurrent events;
constraint violations are translated into the matching policy error.

# Tie-break

When submissions tie on votes, the lowest submission id (the earliest
entry) wins.
*/
package contest
