package model

import (
	"iter"
	"time"
)

const (
	// DefaultLockoutThreshold is the number of consecutive failures that locks an account.
	DefaultLockoutThreshold = 3
	// DefaultLockDuration is how long a locked account rejects login attempts.
	DefaultLockDuration = 60 * time.Second
)

// LockoutPolicy configures the attempt tracker.
type LockoutPolicy struct {
	Threshold    int
	LockDuration time.Duration
}

// DefaultLockoutPolicy returns the policy with default threshold and duration.
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		Threshold:    DefaultLockoutThreshold,
		LockDuration: DefaultLockDuration,
	}
}

// FailureRecord tracks consecutive failed logins of one username.
type FailureRecord struct {
	Username            string
	ConsecutiveFailures int
	LockedAt            *time.Time
}

// LockedAccount is a username in the locked state with its remaining lock time.
type LockedAccount struct {
	Username         string
	RemainingSeconds int
}

// AttemptTracker tracks consecutive login failures and lockouts per username.
type AttemptTracker interface {
	IsLocked(username string, now time.Time) (locked bool, remainingSeconds int)
	RecordSuccess(username string)
	RecordFailure(username string, now time.Time) (locked bool)
	Locked(now time.Time) iter.Seq[LockedAccount]
}
