// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/citizen-clips/testutil"
)

func TestGate_UnrestrictedByDefault(t *testing.T) {
	e, _ := setupEngine(t)

	ok, err := e.Gate.IsAllowed(context.Background(), testutil.TestGuildID, "any-channel")
	if err != nil {
		t.Fatalf("IsAllowed() error = %v", err)
	}
	if !ok {
		t.Error("expected every channel to be allowed without configuration")
	}
}

func TestGate_SetChannel(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()

	if err := e.Gate.SetChannel(ctx, testutil.TestGuildID, "C", admin); err != nil {
		t.Fatalf("SetChannel() error = %v", err)
	}

	tests := []struct {
		channel string
		want    bool
	}{
		{"C", true},
		{"D", false},
	}
	for _, tt := range tests {
		ok, err := e.Gate.IsAllowed(ctx, testutil.TestGuildID, tt.channel)
		if err != nil {
			t.Fatalf("IsAllowed() error = %v", err)
		}
		if ok != tt.want {
			t.Errorf("IsAllowed(%s) = %v, want %v", tt.channel, ok, tt.want)
		}
	}

	// Other guilds are unaffected
	ok, _ := e.Gate.IsAllowed(ctx, "guild-2", "D")
	if !ok {
		t.Error("channel restriction leaked into another guild")
	}
}

func TestGate_LastWriteWins(t *testing.T) {
	e, db := setupEngine(t)
	ctx := context.Background()

	for _, ch := range []string{"C", "D", "D"} {
		if err := e.Gate.SetChannel(ctx, testutil.TestGuildID, ch, admin); err != nil {
			t.Fatalf("SetChannel(%s) error = %v", ch, err)
		}
	}

	channel, ok, err := e.Gate.Channel(ctx, testutil.TestGuildID)
	if err != nil || !ok {
		t.Fatalf("Channel() = %q, %v, %v", channel, ok, err)
	}
	if channel != "D" {
		t.Errorf("Channel() = %q, want D", channel)
	}
	if n := testutil.CountRows(t, db, "channel_config", ""); n != 1 {
		t.Errorf("expected 1 config row, got %d", n)
	}
}

func TestGate_SetChannelRequiresAdmin(t *testing.T) {
	e, db := setupEngine(t)

	err := e.Gate.SetChannel(context.Background(), testutil.TestGuildID, "C", member)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("SetChannel() error = %v, want ErrUnauthorized", err)
	}
	if n := testutil.CountRows(t, db, "channel_config", ""); n != 0 {
		t.Errorf("expected no config rows, got %d", n)
	}
}
