// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers of the officer dashboard.

# Handler Types

  - LandingHandler: public landing page with the bot invite link
  - AuthHandler: Discord login, callback and logout
  - DashboardHandler: per-guild admin page and JSON overview

# Login Flow

	GET /login                  → Login (signed state cookie, redirect to Discord)
	GET /auth/discord/callback  → Callback (checks state, stores a session)
	GET /logout                 → Logout

Login answers 503 when no IdentityProvider is configured.

# Dashboard

	GET /admin                         → Admin (HTML)
	GET /api/guilds/{id}/overview      → Overview (JSON, optional ?cycle=2026-W42)

Both require a session (see middleware.RequireSession). Only guilds where the
user holds the Administrator permission and the bot is present are shown;
other guild ids get 403 from Overview.

Each guild overview carries the cycle lock status, the leaderboard and the
last RecentLimit submissions. Submitter names come from the users table; names
missing there are looked up through the Directory and cached. Lookups that
fail show UnknownPilot.

Pages are rendered from embedded html/template files with go-humanize for
point counts, ranks and relative times.
*/
package handlers
