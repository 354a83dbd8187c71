// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes of the officer dashboard.

# Route Registration

	mux := router.NewRouter(db, cfg, engine, directory)

# Endpoints

Public:

	GET /        - Landing page with bot invite link
	GET /health  - Liveness probe

Login (503 unless client id, secret and callback URL are configured):

	GET /login                  - Start Discord OAuth2
	GET /auth/discord/callback  - Finish login, set session cookie
	GET /logout                 - Drop the session

Dashboard (session required):

	GET /admin                     - HTML overview of every managed guild
	GET /api/guilds/{id}/overview  - JSON overview of one guild, ?cycle=KEY optional
*/
package router
