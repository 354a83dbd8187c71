// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Citizen Clips bot.

Citizen Clips runs a weekly clip contest inside Discord guilds. Members upload
one clip per ISO week (two attempts if the first is rejected), officers
approve or reject with ✅/❌, approved clips are put to a 🗳️ vote and the
officer finalizes the week, rewarding the winner. A small web dashboard shows
officers the state of every guild they manage.

# Starting the Bot

	BOT_TOKEN=... SESSION_SECRET=... go run .

Or with flags:

	go run . -token ... -session-salt ... -t postgres -d "postgres://..."

A .env file in the working directory is loaded automatically (see cliparse).

# Configuration

Required settings:

  - BOT_TOKEN (-token): Discord bot token
  - SESSION_SECRET (-session-salt): Secret for signing OAuth state

Optional settings:

  - PORT (-p): Dashboard port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): file path or connection string
  - CLIENT_ID, CLIENT_SECRET, CALLBACK_URL: dashboard login
  - LOG_LEVEL, LOG_FORMAT: slog level and text/json output
  - MAX_IN_FLIGHT: cap on concurrently handled Discord events

# Architecture

  - discord: gateway session and REST adapter
  - bot: command parsing, workflows and the event dispatcher
  - contest: gate, ledger, moderation, voting, resolver and scores
  - cycle: ISO week cycle keys
  - handlers, router, middleware: dashboard HTTP layer
  - auth: OAuth state, Discord login and sessions
  - db: drivers and schema
  - models: shared types
  - cliparse: configuration parsing

Shutdown on SIGINT/SIGTERM stops the HTTP server, closes the gateway and waits
for in-flight events before closing the database.

See package documentation for each component.
*/
package main
