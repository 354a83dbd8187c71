// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Each setting is resolved in order: CLI flag, environment variable, default.
Before the environment is read, a .env file is loaded with godotenv: the file
named by -env, or ./.env when it exists. Variables already set in the process
environment are never overwritten by the file.

# CLI Flags and Environment Variables

	-p              PORT            Server port (default 3318)
	-d              DATABASE_URL    Connection string (default citizen-clips.db for sqlite)
	-t              DATABASE_TYPE   sqlite or postgres (default sqlite)
	-token          BOT_TOKEN       Discord bot token (required)
	-client-id      CLIENT_ID       Discord OAuth client id
	-client-secret  CLIENT_SECRET   Discord OAuth client secret
	-callback-url   CALLBACK_URL    OAuth callback (default http://localhost:<port>/auth/discord/callback)
	-session-salt   SESSION_SECRET  Dashboard session secret (required)
	-log-level      LOG_LEVEL       debug, info, warn or error (default info)
	-log-format     LOG_FORMAT      text or json (default text)
	-max-in-flight  MAX_IN_FLIGHT   Concurrent chat events, 0 = unlimited (default 0)

The dashboard login is disabled unless the client id and secret are set; see
Config.OAuthConfigured.
*/
package cliparse
