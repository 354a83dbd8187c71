// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/citizen-clips/contest"
	"github.com/danielhkuo/citizen-clips/cycle"
	"github.com/danielhkuo/citizen-clips/middleware"
	"github.com/danielhkuo/citizen-clips/models"
)

// RecentLimit is how many submissions the dashboard lists per guild.
const RecentLimit = 10

// UnknownPilot is shown when a submitter's name cannot be resolved.
const UnknownPilot = "Unknown Pilot"

// Directory answers questions about the bot's guilds and users.
type Directory interface {
	HasGuild(guildID string) bool
	Username(ctx context.Context, userID string) (string, error)
}

type DashboardHandler struct {
	engine *contest.Engine
	dir    Directory
	clock  func() time.Time
}

// NewDashboardHandler creates the officer dashboard. clock may be nil.
func NewDashboardHandler(engine *contest.Engine, dir Directory, clock func() time.Time) *DashboardHandler {
	if clock == nil {
		clock = time.Now
	}
	return &DashboardHandler{engine: engine, dir: dir, clock: clock}
}

// Admin handles GET /admin
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	now := h.clock()
	cycleID := cycle.Key(now)
	resp := models.DashboardResponse{
		Username: sess.Identity.Username,
		CycleID:  cycleID,
		Guilds:   []models.GuildOverview{},
	}

	for _, g := range h.adminGuilds(sess.Identity) {
		overview, err := h.overview(r.Context(), g, cycleID)
		if err != nil {
			slog.Error("failed to build guild overview", "guild_id", g.ID, "error", err)
			http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
			return
		}
		resp.Guilds = append(resp.Guilds, overview)
	}

	render(w, "dashboard.html", struct {
		models.DashboardResponse
		Now time.Time
	}{resp, now})
}

// Overview handles GET /api/guilds/{id}/overview
// The optional cycle query parameter selects a past cycle.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "login required")
		return
	}

	guildID := r.PathValue("id")
	if guildID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "guild id is required")
		return
	}

	cycleID := r.URL.Query().Get("cycle")
	if cycleID == "" {
		cycleID = cycle.Current(h.clock)
	} else if _, _, err := cycle.Parse(cycleID); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid cycle %q", cycleID))
		return
	}

	var guild *models.GuildSummary
	for _, g := range h.adminGuilds(sess.Identity) {
		if g.ID == guildID {
			guild = &g
			break
		}
	}
	if guild == nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "You are not an officer of this guild")
		return
	}

	overview, err := h.overview(r.Context(), *guild, cycleID)
	if err != nil {
		slog.Error("failed to build guild overview", "guild_id", guildID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, overview)
}

// adminGuilds keeps the guilds where the user is an administrator and the
// bot is present.
func (h *DashboardHandler) adminGuilds(identity models.Identity) []models.GuildSummary {
	var guilds []models.GuildSummary
	for _, g := range identity.Guilds {
		if g.IsAdmin() && h.dir.HasGuild(g.ID) {
			guilds = append(guilds, g)
		}
	}
	return guilds
}

func (h *DashboardHandler) overview(ctx context.Context, g models.GuildSummary, cycleID string) (models.GuildOverview, error) {
	locked, err := h.engine.Resolver.IsClosed(ctx, g.ID, cycleID)
	if err != nil {
		return models.GuildOverview{}, err
	}

	leaderboard, err := h.engine.Scores.Leaderboard(ctx, g.ID)
	if err != nil {
		return models.GuildOverview{}, err
	}

	recent, err := h.engine.Ledger.Recent(ctx, g.ID, RecentLimit)
	if err != nil {
		return models.GuildOverview{}, err
	}

	names := make(map[string]string, len(leaderboard))
	for _, u := range leaderboard {
		if u.DisplayName != "" {
			names[u.UserID] = u.DisplayName
		}
	}

	views := make([]models.SubmissionView, 0, len(recent))
	for _, sub := range recent {
		name, ok := names[sub.UserID]
		if !ok {
			name = h.lookupName(ctx, g.ID, sub.UserID)
			names[sub.UserID] = name
		}
		views = append(views, models.SubmissionView{Submission: sub, DisplayName: name})
	}

	for i, u := range leaderboard {
		if u.DisplayName == "" {
			leaderboard[i].DisplayName = names[u.UserID]
			if leaderboard[i].DisplayName == "" {
				leaderboard[i].DisplayName = UnknownPilot
			}
		}
	}

	return models.GuildOverview{
		GuildID:     g.ID,
		GuildName:   g.Name,
		CycleID:     cycleID,
		Locked:      locked,
		Leaderboard: leaderboard,
		Recent:      views,
	}, nil
}

// lookupName asks the platform for a name missing from the cache and stores
// it. Failures fall back to UnknownPilot.
func (h *DashboardHandler) lookupName(ctx context.Context, guildID, userID string) string {
	name, err := h.dir.Username(ctx, userID)
	if err != nil || name == "" {
		slog.Warn("display name lookup failed", "user_id", userID, "error", err)
		return UnknownPilot
	}
	if err := h.engine.Scores.RefreshDisplayName(ctx, guildID, userID, name); err != nil {
		slog.Warn("failed to cache display name", "user_id", userID, "error", err)
	}
	return name
}
