// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/citizen-clips/models"
)

// Decision is an officer's verdict on a pending submission.
type Decision string

const (
	Approve Decision = "approve"
	Reject  Decision = "reject"
)

// State is the submission state a decision moves to.
func (d Decision) State() string {
	switch d {
	case Approve:
		return models.StateApproved
	case Reject:
		return models.StateRejected
	}
	return ""
}

// Moderator applies approve/reject decisions.
type Moderator struct {
	db *sql.DB
}

func NewModerator(db *sql.DB) *Moderator {
	return &Moderator{db: db}
}

type ModerationResult struct {
	Submission models.Submission
	Decision   Decision
	// Applied is false when the submission was already approved or rejected;
	// duplicate reaction events land here and change nothing.
	Applied bool
}

// Moderate moves a pending submission to approved or rejected. Approval
// credits the submitter with ApprovalPoints.
func (m *Moderator) Moderate(ctx context.Context, submissionID int64, decision Decision, actor Actor) (*ModerationResult, error) {
	if !actor.Admin {
		return nil, ErrUnauthorized
	}
	newState := decision.State()
	if newState == "" {
		return nil, ErrInvalidDecision
	}

	var result *ModerationResult
	err := withTx(ctx, m.db, func(tx *sql.Tx) error {
		sub, err := scanSubmission(tx.QueryRowContext(ctx,
			`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, submissionID))
		if err == sql.ErrNoRows {
			return ErrUnknownMessage
		}
		if err != nil {
			return fmt.Errorf("failed to query submission: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE submissions SET state = $1 WHERE id = $2 AND state = $3
		`, newState, submissionID, models.StatePending)
		if err != nil {
			return fmt.Errorf("failed to update submission state: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}

		result = &ModerationResult{Submission: *sub, Decision: decision, Applied: n == 1}
		if !result.Applied {
			return nil
		}
		result.Submission.State = newState

		if decision == Approve {
			return credit(ctx, tx, sub.GuildID, sub.UserID, models.ApprovalPoints)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Applied {
		slog.Info("submission moderated",
			"submission_id", submissionID,
			"state", result.Submission.State,
			"actor_id", actor.ID,
		)
	} else {
		slog.Info("moderation ignored, submission already decided",
			"submission_id", submissionID,
			"state", result.Submission.State,
		)
	}
	return result, nil
}
