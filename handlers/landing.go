// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/citizen-clips/cliparse"
)

type LandingHandler struct {
	cfg cliparse.Config
}

func NewLandingHandler(cfg cliparse.Config) *LandingHandler {
	return &LandingHandler{cfg: cfg}
}

// Index handles GET /
func (h *LandingHandler) Index(w http.ResponseWriter, r *http.Request) {
	render(w, "landing.html", struct {
		InviteURL    string
		LoginEnabled bool
	}{
		InviteURL:    h.cfg.InviteURL(),
		LoginEnabled: h.cfg.OAuthConfigured(),
	})
}
