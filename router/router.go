// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/citizen-clips/auth"
	"github.com/danielhkuo/citizen-clips/cliparse"
	"github.com/danielhkuo/citizen-clips/contest"
	"github.com/danielhkuo/citizen-clips/handlers"
	"github.com/danielhkuo/citizen-clips/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, engine *contest.Engine, dir handlers.Directory) *http.ServeMux {
	mux := http.NewServeMux()

	sessions := auth.NewSessionStore(db, nil)

	var provider handlers.IdentityProvider
	if cfg.OAuthConfigured() {
		provider = auth.NewDiscordOAuth(cfg.ClientID, cfg.ClientSecret, cfg.CallbackURL, nil)
	}

	// Initialize handlers
	landingHandler := handlers.NewLandingHandler(cfg)
	authHandler := handlers.NewAuthHandler(cfg, sessions, provider)
	dashboardHandler := handlers.NewDashboardHandler(engine, dir, nil)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Login
	mux.HandleFunc("GET /login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /auth/discord/callback", middleware.WithLogging(authHandler.Callback))
	mux.HandleFunc("GET /logout", middleware.WithLogging(authHandler.Logout))

	// Dashboard (session required)
	mux.HandleFunc("GET /admin", middleware.WithLogging(middleware.RequireSession(sessions, dashboardHandler.Admin)))
	mux.HandleFunc("GET /api/guilds/{id}/overview", middleware.WithLogging(middleware.RequireSession(sessions, dashboardHandler.Overview)))

	// Landing page
	mux.HandleFunc("GET /{$}", landingHandler.Index)

	return mux
}
