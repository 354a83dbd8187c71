// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/oauth2"

	"github.com/danielhkuo/citizen-clips/models"
)

// DiscordEndpoint is Discord's OAuth2 endpoint.
var DiscordEndpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// Scopes requested at login: who the user is and which guilds they are in.
var Scopes = []string{"identify", "guilds"}

// IdentityFetcher loads the identity behind an access token.
type IdentityFetcher interface {
	FetchIdentity(ctx context.Context, token *oauth2.Token) (models.Identity, error)
}

// DiscordOAuth runs the authorization code flow.
type DiscordOAuth struct {
	config  *oauth2.Config
	fetcher IdentityFetcher
}

// NewDiscordOAuth creates the login flow. fetcher may be nil to query
// Discord directly.
func NewDiscordOAuth(clientID, clientSecret, callbackURL string, fetcher IdentityFetcher) *DiscordOAuth {
	if fetcher == nil {
		fetcher = DiscordIdentity{}
	}
	return &DiscordOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       Scopes,
			Endpoint:     DiscordEndpoint,
		},
		fetcher: fetcher,
	}
}

// WithEndpoint replaces the OAuth endpoint.
func (o *DiscordOAuth) WithEndpoint(endpoint oauth2.Endpoint) *DiscordOAuth {
	o.config.Endpoint = endpoint
	return o
}

// AuthCodeURL is where the browser is sent to log in.
func (o *DiscordOAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "none"))
}

// Identify exchanges an authorization code and loads the user's identity.
func (o *DiscordOAuth) Identify(ctx context.Context, code string) (models.Identity, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to exchange code: %w", err)
	}
	return o.fetcher.FetchIdentity(ctx, token)
}

// DiscordIdentity fetches the user and guild list with a bearer session.
type DiscordIdentity struct{}

func (DiscordIdentity) FetchIdentity(ctx context.Context, token *oauth2.Token) (models.Identity, error) {
	dg, err := discordgo.New("Bearer " + token.AccessToken)
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to create bearer session: %w", err)
	}

	user, err := dg.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to fetch user: %w", err)
	}

	guilds, err := dg.UserGuilds(200, "", "", false, discordgo.WithContext(ctx))
	if err != nil {
		return models.Identity{}, fmt.Errorf("failed to fetch guilds: %w", err)
	}

	identity := models.Identity{UserID: user.ID, Username: user.Username}
	for _, g := range guilds {
		identity.Guilds = append(identity.Guilds, models.GuildSummary{
			ID:          g.ID,
			Name:        g.Name,
			Permissions: g.Permissions,
		})
	}
	return identity, nil
}
