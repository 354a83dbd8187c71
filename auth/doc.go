// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides dashboard login: OAuth state signing, the Discord
authorization code flow, and server-side sessions.

# OAuth State

State values are a random nonce and its HMAC-SHA256 signature:

	state, err := auth.GenerateState(salt)
	err := auth.ValidateState(state, salt)

The signature is URL-safe base64 without padding. The login handler also sets
the state in a cookie and the callback requires both to match.

# Discord Login

	o := auth.NewDiscordOAuth(clientID, clientSecret, callbackURL, nil)
	http.Redirect(w, r, o.AuthCodeURL(state), http.StatusFound)
	identity, err := o.Identify(ctx, code)

Identify exchanges the code with golang.org/x/oauth2 and then reads the user
and their guild list through a discordgo bearer session. Scopes are
"identify" and "guilds".

# Sessions

	store := auth.NewSessionStore(db, nil)
	sess, err := store.Create(ctx, identity)
	sess, err = store.Get(ctx, id) // ErrSessionNotFound when missing or expired

Session ids are random UUIDs. Sessions expire after SessionTTL (7 days).

# ID Generation

Random hex IDs:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth
