// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/citizen-clips/auth"
	"github.com/danielhkuo/citizen-clips/cliparse"
	"github.com/danielhkuo/citizen-clips/middleware"
	"github.com/danielhkuo/citizen-clips/models"
)

const stateCookie = "citizen_oauth_state"

// IdentityProvider runs the OAuth login against the chat platform.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (models.Identity, error)
}

type AuthHandler struct {
	cfg      cliparse.Config
	sessions *auth.SessionStore
	provider IdentityProvider
}

// NewAuthHandler creates the login handlers. A nil provider disables login.
func NewAuthHandler(cfg cliparse.Config, sessions *auth.SessionStore, provider IdentityProvider) *AuthHandler {
	return &AuthHandler{cfg: cfg, sessions: sessions, provider: provider}
}

// Login handles GET /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Discord login is not configured")
		return
	}

	state, err := auth.GenerateState(h.cfg.SessionSalt)
	if err != nil {
		slog.Error("failed to generate oauth state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /auth/discord/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Discord login is not configured")
		return
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Login cancelled: "+e)
		return
	}

	state := q.Get("state")
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value != state {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Login state mismatch")
		return
	}
	if err := auth.ValidateState(state, h.cfg.SessionSalt); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid login state")
		return
	}
	clearCookie(w, stateCookie)

	code := q.Get("code")
	if code == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code is required")
		return
	}

	identity, err := h.provider.Identify(r.Context(), code)
	if err != nil {
		slog.Error("discord login failed", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Discord login failed")
		return
	}

	sess, err := h.sessions.Create(r.Context(), identity)
	if err != nil {
		slog.Error("failed to create session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("dashboard login", "user_id", identity.UserID, "guilds", len(identity.Guilds))
	http.Redirect(w, r, "/admin", http.StatusFound)
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
			slog.Error("failed to delete session", "error", err)
		}
	}
	clearCookie(w, middleware.SessionCookie)
	http.Redirect(w, r, "/", http.StatusFound)
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
