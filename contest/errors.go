// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contest

import "errors"

// Kind classifies contest errors so callers can decide how to react.
type Kind int

const (
	// KindInfrastructure is anything that is not a *Error: store or platform failures.
	KindInfrastructure Kind = iota
	// KindValidation covers malformed input. Reported inline, nothing changed.
	KindValidation
	// KindPolicy covers rule violations. Reported inline, speculative side effects reverted.
	KindPolicy
	// KindAuthorization is an actor without elevated permission.
	KindAuthorization
	// KindNotFound is input that refers to nothing tracked. Ignored silently.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPolicy:
		return "policy"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "infrastructure"
	}
}

// Error is a non-infrastructure outcome of a contest operation.
type Error struct {
	Kind Kind
	Code string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Code
}

var (
	ErrMissingURL      = &Error{Kind: KindValidation, Code: "missing_url"}
	ErrInvalidDecision = &Error{Kind: KindValidation, Code: "invalid_decision"}

	ErrSectorClosed           = &Error{Kind: KindPolicy, Code: "sector_closed"}
	ErrActiveSubmissionExists = &Error{Kind: KindPolicy, Code: "active_submission_exists"}
	ErrAttemptsExhausted      = &Error{Kind: KindPolicy, Code: "attempts_exhausted"}
	ErrAlreadyVoted           = &Error{Kind: KindPolicy, Code: "already_voted"}
	ErrCycleClosed            = &Error{Kind: KindPolicy, Code: "cycle_closed"}
	ErrNoApprovedSubmissions  = &Error{Kind: KindPolicy, Code: "no_approved_submissions"}
	ErrVotingAlreadyOpen      = &Error{Kind: KindPolicy, Code: "voting_already_open"}
	ErrNoVotes                = &Error{Kind: KindPolicy, Code: "no_votes"}
	ErrAlreadyFinalized       = &Error{Kind: KindPolicy, Code: "already_finalized"}

	ErrUnauthorized = &Error{Kind: KindAuthorization, Code: "unauthorized"}

	ErrUnknownMessage = &Error{Kind: KindNotFound, Code: "unknown_message"}
)

// KindOf returns the kind of err. Errors that are not contest errors are
// infrastructure errors; nil is KindInfrastructure as well and callers are
// expected to check for nil first.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return KindInfrastructure
}
