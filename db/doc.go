// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Opening

Open selects the driver, tunes the pool, pings and applies the schema:

	conn, err := db.Open(ctx, db.DialectPostgres, "postgres://...")

PostgreSQL (github.com/lib/pq) is the production target. SQLite
(modernc.org/sqlite, pure Go) serves single-file deployments and the test
suite. Both accept $N placeholders, so queries are shared.

# Tables

  - submissions: clip attempts, unique on (user, guild, cycle, attempt)
  - users: per-guild points, primary key (user_id, guild_id)
  - votes: unique on (voter_id, guild_id, cycle_id)
  - closures: primary key (cycle_id, guild_id)
  - channel_config: primary key guild_id
  - dashboard_sessions: server-side OAuth sessions

A partial unique index on submissions(user_id, guild_id, cycle_id) restricted
to pending/approved rows enforces "one active submission".

# Constraint Translation

The contest engine relies on these constraints as the final arbiter of
concurrent check-then-insert races. IsUniqueViolation recognizes a violation
from either driver so callers can map it to a user-facing rejection.
*/
package db
