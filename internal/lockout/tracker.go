package lockout

import (
	"cmp"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/dtroode/gatekeeper/internal/model"
)

var _ model.AttemptTracker = (*Tracker)(nil)

type entry struct {
	failures int
	lockedAt time.Time
}

func (e *entry) locked() bool {
	return !e.lockedAt.IsZero()
}

// Tracker counts consecutive failed logins per username and locks an account
// once the policy threshold is reached. Lock expiry is evaluated lazily
// against the time passed by the caller; nothing runs in the background.
type Tracker struct {
	mu     sync.Mutex
	data   map[string]*entry
	policy model.LockoutPolicy
}

// NewTracker returns a tracker with the given policy. Non-positive policy
// values fall back to the defaults.
func NewTracker(policy model.LockoutPolicy) *Tracker {
	if policy.Threshold <= 0 {
		policy.Threshold = model.DefaultLockoutThreshold
	}
	if policy.LockDuration <= 0 {
		policy.LockDuration = model.DefaultLockDuration
	}
	return &Tracker{
		data:   make(map[string]*entry),
		policy: policy,
	}
}

// Policy returns the effective lockout policy.
func (t *Tracker) Policy() model.LockoutPolicy {
	return t.policy
}

// IsLocked reports whether username is locked at now and, if so, the
// remaining lock time rounded up to whole seconds. An expired lock clears
// the record.
func (t *Tracker) IsLocked(username string, now time.Time) (bool, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.data[username]
	if !ok || !e.locked() {
		return false, 0
	}

	if remaining, active := t.remaining(e, now); active {
		return true, ceilSeconds(remaining)
	}

	delete(t.data, username)
	return false, 0
}

// RecordSuccess clears the failure record of username.
func (t *Tracker) RecordSuccess(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.data, username)
}

// RecordFailure counts a failed login and reports whether this failure locked
// the account. A failure that lands on an active lock is not counted.
func (t *Tracker) RecordFailure(username string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.data[username]
	if !ok {
		e = &entry{}
		t.data[username] = e
	}

	if e.locked() {
		if _, active := t.remaining(e, now); active {
			return false
		}
		*e = entry{}
	}

	e.failures++
	if e.failures >= t.policy.Threshold {
		e.lockedAt = now
		return true
	}

	return false
}

// Record returns a copy of the failure record of username.
func (t *Tracker) Record(username string) (model.FailureRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.data[username]
	if !ok {
		return model.FailureRecord{}, false
	}

	rec := model.FailureRecord{
		Username:            username,
		ConsecutiveFailures: e.failures,
	}
	if e.locked() {
		lockedAt := e.lockedAt
		rec.LockedAt = &lockedAt
	}
	return rec, true
}

// Locked returns the accounts locked at now, ordered by username. Every
// iteration takes a fresh snapshot, so the sequence can be ranged over
// repeatedly. The tracker state is not modified.
func (t *Tracker) Locked(now time.Time) iter.Seq[model.LockedAccount] {
	return func(yield func(model.LockedAccount) bool) {
		for _, acc := range t.snapshot(now) {
			if !yield(acc) {
				return
			}
		}
	}
}

func (t *Tracker) snapshot(now time.Time) []model.LockedAccount {
	t.mu.Lock()
	accounts := make([]model.LockedAccount, 0, len(t.data))
	for username, e := range t.data {
		if !e.locked() {
			continue
		}
		if remaining, active := t.remaining(e, now); active {
			accounts = append(accounts, model.LockedAccount{
				Username:         username,
				RemainingSeconds: ceilSeconds(remaining),
			})
		}
	}
	t.mu.Unlock()

	slices.SortFunc(accounts, func(a, b model.LockedAccount) int {
		return cmp.Compare(a.Username, b.Username)
	})
	return accounts
}

// remaining must be called with t.mu held.
func (t *Tracker) remaining(e *entry, now time.Time) (time.Duration, bool) {
	elapsed := now.Sub(e.lockedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= t.policy.LockDuration {
		return 0, false
	}
	return t.policy.LockDuration - elapsed, true
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
