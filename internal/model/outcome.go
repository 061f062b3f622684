package model

import "fmt"

// OutcomeKind enumerates login results.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeLocked
	OutcomeUnknownUser
	OutcomeWrongPassword
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeLocked:
		return "locked"
	case OutcomeUnknownUser:
		return "unknown_user"
	case OutcomeWrongPassword:
		return "wrong_password"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// LoginOutcome is the result of a login attempt. A failed login is a normal
// outcome, not an error.
type LoginOutcome struct {
	Kind OutcomeKind
	// RemainingSeconds is set for OutcomeLocked.
	RemainingSeconds int
	// NowLocked is set for OutcomeWrongPassword when this failure locked the account.
	NowLocked bool
}

func Success() LoginOutcome {
	return LoginOutcome{Kind: OutcomeSuccess}
}

func Locked(remainingSeconds int) LoginOutcome {
	return LoginOutcome{Kind: OutcomeLocked, RemainingSeconds: remainingSeconds}
}

func UnknownUser() LoginOutcome {
	return LoginOutcome{Kind: OutcomeUnknownUser}
}

func WrongPassword(nowLocked bool) LoginOutcome {
	return LoginOutcome{Kind: OutcomeWrongPassword, NowLocked: nowLocked}
}

func (o LoginOutcome) String() string {
	switch o.Kind {
	case OutcomeLocked:
		return fmt.Sprintf("locked(%ds)", o.RemainingSeconds)
	case OutcomeWrongPassword:
		return fmt.Sprintf("wrong_password(now_locked=%t)", o.NowLocked)
	default:
		return o.Kind.String()
	}
}
