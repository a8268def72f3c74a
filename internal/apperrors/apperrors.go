package apperrors

import (
	"errors"
	"fmt"

	"github.com/phocus/phocus/internal/period"
)

// Expected, recoverable outcomes. Services return these as values; the
// engine never leaves a partially mutated record behind on any of them.
var (
	ErrGoalNotFound   = errors.New("goal not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrGroupNotFound  = errors.New("group not found")
	ErrRewardNotFound = errors.New("reward not found")
	ErrGoalCompleted  = errors.New("goal already fully completed")
	ErrGateDenied     = errors.New("completion not allowed yet")
	ErrLimitExceeded  = errors.New("group goal limit reached")
	ErrInsufficientXP = errors.New("insufficient xp")
	ErrNotGroupAdmin  = errors.New("only group admins may do this")
	ErrNotGroupMember = errors.New("user is not a group member")
)

// GateDeniedError carries the goal's periodicity so the caller can render
// a message specific to the period that is still running.
type GateDeniedError struct {
	Periodicity period.Periodicity
}

func (e *GateDeniedError) Error() string {
	switch e.Periodicity {
	case period.Daily:
		return "goal already completed today"
	case period.Weekly:
		return "goal already completed this week"
	case period.Monthly:
		return "goal already completed this month"
	case period.Once:
		return "goal was a one-time goal and is already done"
	default:
		return fmt.Sprintf("goal already completed this %s period", e.Periodicity)
	}
}

func (e *GateDeniedError) Unwrap() error { return ErrGateDenied }
