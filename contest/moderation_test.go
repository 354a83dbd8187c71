// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"context"
	"errors"
	"testing"

	"github.com/danielhkuo/citizen-clips/models"
)

func TestModerate(t *testing.T) {
	tests := []struct {
		name       string
		decision   Decision
		wantState  string
		wantPoints int
	}{
		{"approve", Approve, models.StateApproved, models.ApprovalPoints},
		{"reject", Reject, models.StateRejected, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := setupEngine(t)
			id := submit(t, e, "A")

			res, err := e.Moderator.Moderate(context.Background(), id, tt.decision, admin)
			if err != nil {
				t.Fatalf("Moderate() error = %v", err)
			}
			if !res.Applied {
				t.Error("expected decision to be applied")
			}
			if res.Submission.State != tt.wantState {
				t.Errorf("State = %s, want %s", res.Submission.State, tt.wantState)
			}

			stored, err := e.Ledger.Get(context.Background(), id)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if stored.State != tt.wantState {
				t.Errorf("stored State = %s, want %s", stored.State, tt.wantState)
			}
			if got := balance(t, e, "A"); got != tt.wantPoints {
				t.Errorf("points = %d, want %d", got, tt.wantPoints)
			}
		})
	}
}

func TestModerate_TerminalIsNoOp(t *testing.T) {
	e, _ := setupEngine(t)
	ctx := context.Background()
	id := submit(t, e, "A")
	approve(t, e, id)

	for _, d := range []Decision{Approve, Reject} {
		res, err := e.Moderator.Moderate(ctx, id, d, admin)
		if err != nil {
			t.Fatalf("Moderate(%s) error = %v", d, err)
		}
		if res.Applied {
			t.Errorf("Moderate(%s) on approved submission was applied", d)
		}
		if res.Submission.State != models.StateApproved {
			t.Errorf("State = %s, want approved", res.Submission.State)
		}
	}

	if got := balance(t, e, "A"); got != 1 {
		t.Errorf("points = %d, want 1 after duplicate moderation", got)
	}
}

func TestModerate_Unauthorized(t *testing.T) {
	e, _ := setupEngine(t)
	id := submit(t, e, "A")

	_, err := e.Moderator.Moderate(context.Background(), id, Approve, member)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Moderate() error = %v, want ErrUnauthorized", err)
	}

	sub, _ := e.Ledger.Get(context.Background(), id)
	if sub.State != models.StatePending {
		t.Errorf("State = %s, want pending", sub.State)
	}
	if got := balance(t, e, "A"); got != 0 {
		t.Errorf("points = %d, want 0", got)
	}
}

func TestModerate_InvalidInput(t *testing.T) {
	e, _ := setupEngine(t)
	id := submit(t, e, "A")

	if _, err := e.Moderator.Moderate(context.Background(), id, Decision("maybe"), admin); !errors.Is(err, ErrInvalidDecision) {
		t.Errorf("Moderate(maybe) error = %v, want ErrInvalidDecision", err)
	}
	if _, err := e.Moderator.Moderate(context.Background(), 9999, Approve, admin); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("Moderate(missing) error = %v, want ErrUnknownMessage", err)
	}
}
