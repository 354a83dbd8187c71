// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/citizen-clips/auth"
	"github.com/danielhkuo/citizen-clips/contest"
	"github.com/danielhkuo/citizen-clips/middleware"
	"github.com/danielhkuo/citizen-clips/models"
	"github.com/danielhkuo/citizen-clips/testutil"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

const (
	testCycle   = "2026-W42"
	testSession = "7b0c7a52-1f7e-4c1a-9a55-3f0d2b6e8c01"
)

type stubProvider struct {
	identity models.Identity
	err      error
	code     string
}

func (s *stubProvider) AuthCodeURL(state string) string {
	return "https://discord.example/authorize?state=" + url.QueryEscape(state)
}

func (s *stubProvider) Identify(ctx context.Context, code string) (models.Identity, error) {
	s.code = code
	return s.identity, s.err
}

func officer() models.Identity {
	return models.Identity{
		UserID:   testutil.TestAdminID,
		Username: "officer",
		Guilds: []models.GuildSummary{
			{ID: testutil.TestGuildID, Name: "Citizens", Permissions: models.PermissionAdministrator},
			{ID: "guild-member", Name: "Members Only", Permissions: 0},
			{ID: "guild-no-bot", Name: "No Bot", Permissions: models.PermissionAdministrator},
		},
	}
}

type dashboardHarness struct {
	db       *sql.DB
	dir      *testutil.FakeDirectory
	sessions *auth.SessionStore
	handler  *DashboardHandler
}

func newDashboardHarness(t *testing.T) *dashboardHarness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	clock := testutil.FixedClock(testNow)

	dir := testutil.NewFakeDirectory()
	dir.AddGuild(testutil.TestGuildID)
	dir.AddGuild("guild-member")

	testutil.CreateTestSession(t, db, testSession, officer(), testNow.Add(time.Hour))

	return &dashboardHarness{
		db:       db,
		dir:      dir,
		sessions: auth.NewSessionStore(db, clock),
		handler:  NewDashboardHandler(contest.New(db, clock), dir, clock),
	}
}

func (h *dashboardHarness) serve(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testSession})
	w := httptest.NewRecorder()
	middleware.RequireSession(h.sessions, handler)(w, req)
	return w
}

func (h *dashboardHarness) overview(guildID, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/api/guilds/"+guildID+"/overview"+query, nil)
	req.SetPathValue("id", guildID)
	return h.serve(h.handler.Overview, req)
}

func TestLanding(t *testing.T) {
	cfg := testutil.GetTestConfig()
	w := httptest.NewRecorder()
	NewLandingHandler(cfg).Index(w, httptest.NewRequest("GET", "/", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "client_id=test-client-id") {
		t.Errorf("landing page missing invite link: %s", body)
	}
	if !strings.Contains(body, `href="/login"`) {
		t.Error("landing page missing login link")
	}

	cfg.ClientSecret = ""
	w = httptest.NewRecorder()
	NewLandingHandler(cfg).Index(w, httptest.NewRequest("GET", "/", nil))
	if strings.Contains(w.Body.String(), `href="/login"`) {
		t.Error("login link shown without OAuth configured")
	}
}

func TestLogin_NotConfigured(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAuthHandler(testutil.GetTestConfig(), auth.NewSessionStore(db, nil), nil)

	for _, path := range []string{"/login", "/auth/discord/callback"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", path, nil)
		if path == "/login" {
			h.Login(w, req)
		} else {
			h.Callback(w, req)
		}
		testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
	}
}

func TestLogin_SetsSignedState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewAuthHandler(cfg, auth.NewSessionStore(db, nil), &stubProvider{})

	w := httptest.NewRecorder()
	h.Login(w, httptest.NewRequest("GET", "/login", nil))

	testutil.AssertStatus(t, w, http.StatusFound)
	var state string
	for _, c := range w.Result().Cookies() {
		if c.Name == stateCookie {
			state = c.Value
		}
	}
	if state == "" {
		t.Fatal("state cookie not set")
	}
	if err := auth.ValidateState(state, cfg.SessionSalt); err != nil {
		t.Errorf("state cookie not signed: %v", err)
	}
	if loc := w.Header().Get("Location"); !strings.Contains(loc, url.QueryEscape(state)) {
		t.Errorf("redirect %q does not carry the state", loc)
	}
}

func callbackRequest(query, cookieState string) *http.Request {
	req := httptest.NewRequest("GET", "/auth/discord/callback?"+query, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookieState})
	}
	return req
}

func TestCallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	provider := &stubProvider{identity: officer()}
	h := NewAuthHandler(cfg, auth.NewSessionStore(db, nil), provider)

	state, _ := auth.GenerateState(cfg.SessionSalt)
	forged, _ := auth.GenerateState("other-salt")

	testCases := []struct {
		name       string
		query      string
		cookie     string
		wantStatus int
	}{
		{"provider error", "error=access_denied", state, http.StatusBadRequest},
		{"missing cookie", "state=" + url.QueryEscape(state) + "&code=c", "", http.StatusBadRequest},
		{"cookie mismatch", "state=" + url.QueryEscape(state) + "&code=c", forged, http.StatusBadRequest},
		{"forged state", "state=" + url.QueryEscape(forged) + "&code=c", forged, http.StatusBadRequest},
		{"missing code", "state=" + url.QueryEscape(state), state, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.Callback(w, callbackRequest(tc.query, tc.cookie))
			testutil.AssertStatus(t, w, tc.wantStatus)
		})
	}

	if n := testutil.CountRows(t, db, "dashboard_sessions", ""); n != 0 {
		t.Errorf("sessions after rejected callbacks = %d, want 0", n)
	}

	t.Run("success", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.Callback(w, callbackRequest("state="+url.QueryEscape(state)+"&code=good", state))

		testutil.AssertStatus(t, w, http.StatusFound)
		if loc := w.Header().Get("Location"); loc != "/admin" {
			t.Errorf("Location = %q, want /admin", loc)
		}
		if provider.code != "good" {
			t.Errorf("provider code = %q, want good", provider.code)
		}

		var sessionID string
		for _, c := range w.Result().Cookies() {
			if c.Name == middleware.SessionCookie {
				sessionID = c.Value
			}
		}
		if n := testutil.CountRows(t, db, "dashboard_sessions", "id = $1 AND user_id = $2", sessionID, testutil.TestAdminID); n != 1 {
			t.Errorf("stored sessions = %d, want 1", n)
		}
	})
}

func TestCallback_IdentifyFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	h := NewAuthHandler(cfg, auth.NewSessionStore(db, nil), &stubProvider{err: errors.New("discord down")})

	state, _ := auth.GenerateState(cfg.SessionSalt)
	w := httptest.NewRecorder()
	h.Callback(w, callbackRequest("state="+url.QueryEscape(state)+"&code=c", state))

	testutil.AssertStatus(t, w, http.StatusBadGateway)
}

func TestLogout(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := NewAuthHandler(testutil.GetTestConfig(), auth.NewSessionStore(db, nil), &stubProvider{})
	testutil.CreateTestSession(t, db, testSession, officer(), time.Now().Add(time.Hour))

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: testSession})
	w := httptest.NewRecorder()
	h.Logout(w, req)

	testutil.AssertStatus(t, w, http.StatusFound)
	if n := testutil.CountRows(t, db, "dashboard_sessions", ""); n != 0 {
		t.Errorf("sessions after logout = %d, want 0", n)
	}
}

func TestAdminPage(t *testing.T) {
	h := newDashboardHarness(t)
	testutil.CreateTestUser(t, h.db, testutil.TestGuildID, "user-1", "Ace", 1234)
	testutil.CreateTestSubmission(t, h.db, testutil.TestGuildID, "user-1", testCycle, models.StateApproved)
	testutil.CreateTestSubmission(t, h.db, testutil.TestGuildID, "user-ghost", testCycle, models.StatePending)

	w := h.serve(h.handler.Admin, httptest.NewRequest("GET", "/admin", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	body := w.Body.String()
	for _, want := range []string{"Citizens", "Ace", "1,234", "1st", UnknownPilot, testCycle, "abierta"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	for _, unwanted := range []string{"Members Only", "No Bot"} {
		if strings.Contains(body, unwanted) {
			t.Errorf("dashboard shows %q", unwanted)
		}
	}
}

func TestAdminPage_RequiresSession(t *testing.T) {
	h := newDashboardHarness(t)
	w := httptest.NewRecorder()
	middleware.RequireSession(h.sessions, h.handler.Admin)(w, httptest.NewRequest("GET", "/admin", nil))

	testutil.AssertStatus(t, w, http.StatusFound)
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestOverview(t *testing.T) {
	h := newDashboardHarness(t)
	testutil.CreateTestUser(t, h.db, testutil.TestGuildID, "user-1", "Ace", 6)
	testutil.CreateTestUser(t, h.db, testutil.TestGuildID, "user-2", "Bee", 1)
	first := testutil.CreateTestSubmission(t, h.db, testutil.TestGuildID, "user-1", testCycle, models.StateApproved)
	second := testutil.CreateTestSubmission(t, h.db, testutil.TestGuildID, "user-2", testCycle, models.StateRejected)

	w := h.overview(testutil.TestGuildID, "")
	testutil.AssertStatus(t, w, http.StatusOK)

	var got models.GuildOverview
	testutil.AssertJSON(t, w, &got)

	if got.CycleID != testCycle || got.Locked {
		t.Errorf("cycle = %q locked = %v, want %q unlocked", got.CycleID, got.Locked, testCycle)
	}
	if len(got.Leaderboard) != 2 || got.Leaderboard[0].UserID != "user-1" {
		t.Errorf("leaderboard = %+v", got.Leaderboard)
	}
	if len(got.Recent) != 2 || got.Recent[0].ID != second || got.Recent[1].ID != first {
		t.Fatalf("recent = %+v, want newest first", got.Recent)
	}
	if got.Recent[0].DisplayName != "Bee" {
		t.Errorf("recent name = %q, want Bee", got.Recent[0].DisplayName)
	}
	if h.dir.Lookups() != 0 {
		t.Errorf("lookups = %d, want 0 with cached names", h.dir.Lookups())
	}
}

func TestOverview_PastCycleLocked(t *testing.T) {
	h := newDashboardHarness(t)
	_, err := h.db.Exec(`
		INSERT INTO closures (cycle_id, guild_id, winner_submission_id, winner_votes, closed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, "2026-W41", testutil.TestGuildID, 1, 3, testNow.Unix())
	if err != nil {
		t.Fatalf("insert closure: %v", err)
	}

	w := h.overview(testutil.TestGuildID, "?cycle=2026-W41")
	testutil.AssertStatus(t, w, http.StatusOK)

	var got models.GuildOverview
	testutil.AssertJSON(t, w, &got)
	if got.CycleID != "2026-W41" || !got.Locked {
		t.Errorf("cycle = %q locked = %v, want 2026-W41 locked", got.CycleID, got.Locked)
	}
}

func TestOverview_Rejections(t *testing.T) {
	h := newDashboardHarness(t)

	testCases := []struct {
		name       string
		guildID    string
		query      string
		wantStatus int
	}{
		{"bad cycle", testutil.TestGuildID, "?cycle=2026-W99", http.StatusBadRequest},
		{"not admin", "guild-member", "", http.StatusForbidden},
		{"bot absent", "guild-no-bot", "", http.StatusForbidden},
		{"unknown guild", "guild-x", "", http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := h.overview(tc.guildID, tc.query)
			testutil.AssertStatus(t, w, tc.wantStatus)
		})
	}
}

func TestOverview_ResolvesAndCachesNames(t *testing.T) {
	h := newDashboardHarness(t)
	h.dir.AddUser("user-3", "Cosmo")
	testutil.CreateTestUser(t, h.db, testutil.TestGuildID, "user-3", "", 0)
	testutil.CreateTestSubmission(t, h.db, testutil.TestGuildID, "user-3", testCycle, models.StatePending)
	testutil.CreateTestSubmission(t, h.db, testutil.TestGuildID, "user-ghost", testCycle, models.StatePending)

	var got models.GuildOverview
	testutil.AssertJSON(t, h.overview(testutil.TestGuildID, ""), &got)

	names := map[string]string{}
	for _, v := range got.Recent {
		names[v.UserID] = v.DisplayName
	}
	if names["user-3"] != "Cosmo" || names["user-ghost"] != UnknownPilot {
		t.Errorf("names = %v", names)
	}
	if h.dir.Lookups() != 2 {
		t.Errorf("lookups = %d, want 2", h.dir.Lookups())
	}

	var cached string
	h.db.QueryRow(`SELECT display_name FROM users WHERE user_id = $1`, "user-3").Scan(&cached)
	if cached != "Cosmo" {
		t.Errorf("cached name = %q, want Cosmo", cached)
	}

	// Second view uses the cache for user-3 and only retries the ghost.
	testutil.AssertJSON(t, h.overview(testutil.TestGuildID, ""), &got)
	if h.dir.Lookups() != 3 {
		t.Errorf("lookups after second view = %d, want 3", h.dir.Lookups())
	}
	if n := testutil.CountRows(t, h.db, "users", "user_id = $1", "user-ghost"); n != 0 {
		t.Errorf("ghost user rows = %d, want 0", n)
	}
}
