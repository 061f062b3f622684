package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/model"
)

// Auth verifies logins against the credential store and applies the
// lockout policy of the attempt tracker.
type Auth struct {
	credentials model.CredentialStore
	attempts    model.AttemptTracker
	hasher      model.PasswordHasher
	audit       model.AuditSink
	logger      *logger.Logger
	now         func() time.Time
}

func NewAuth(
	credentials model.CredentialStore,
	attempts model.AttemptTracker,
	hasher model.PasswordHasher,
	audit model.AuditSink,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		credentials: credentials,
		attempts:    attempts,
		hasher:      hasher,
		audit:       audit,
		logger:      logger,
		now:         time.Now,
	}
}

// Login checks, in this order, the lockout state, the account existence and
// the password. The order must not change: a locked account never reaches
// the password comparison, and an unknown account never gets a failure record.
func (a *Auth) Login(ctx context.Context, username, password string, now time.Time) model.LoginOutcome {
	a.logger.Debug("Auth service: login attempt",
		"username", username)

	if locked, remaining := a.attempts.IsLocked(username, now); locked {
		a.emit(ctx, now, model.SeverityWarning, model.ActionLogin, username,
			fmt.Sprintf("login attempt on locked account, %d seconds remaining", remaining))
		return model.Locked(remaining)
	}

	secret, ok := a.credentials.Get(username)
	if !ok {
		a.emit(ctx, now, model.SeverityWarning, model.ActionLogin, username,
			"login attempt for unknown account")
		return model.UnknownUser()
	}

	if a.hasher.Verify(password, secret) {
		a.attempts.RecordSuccess(username)
		a.emit(ctx, now, model.SeverityInfo, model.ActionLogin, username,
			"login succeeded")
		return model.Success()
	}

	nowLocked := a.attempts.RecordFailure(username, now)
	a.emit(ctx, now, model.SeverityWarning, model.ActionLogin, username,
		"login failed: wrong password")
	if nowLocked {
		a.logger.Info("Auth service: account locked",
			"username", username)
		a.emit(ctx, now, model.SeverityCritical, model.ActionLockout, username,
			"account locked after repeated failed logins")
	}

	return model.WrongPassword(nowLocked)
}

// AddUser registers a new account.
func (a *Auth) AddUser(ctx context.Context, username, password string) error {
	a.logger.Debug("Auth service: adding user",
		"username", username)

	hash, err := a.hasher.Hash(password)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"username", username,
			"error", err.Error())
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.credentials.Add(ctx, username, hash); err != nil {
		a.failed(ctx, model.ActionAddUser, username, err)
		return err
	}

	a.emit(ctx, a.now(), model.SeverityInfo, model.ActionAddUser, username, "account added")
	return nil
}

// EnsureUser adds the account unless it already exists and reports whether
// it was created. The stored password of an existing account is left as is.
func (a *Auth) EnsureUser(ctx context.Context, username, password string) (bool, error) {
	if _, ok := a.credentials.Get(username); ok {
		return false, nil
	}

	err := a.AddUser(ctx, username, password)
	if errors.Is(err, model.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// ChangePassword replaces the password of an account after verifying the old one.
func (a *Auth) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	a.logger.Debug("Auth service: changing password",
		"username", username)

	secret, ok := a.credentials.Get(username)
	if !ok {
		a.emit(ctx, a.now(), model.SeverityWarning, model.ActionChangePassword, username,
			"password change for unknown account")
		return fmt.Errorf("failed to change password of %q: %w", username, model.ErrNotFound)
	}

	if !a.hasher.Verify(oldPassword, secret) {
		a.emit(ctx, a.now(), model.SeverityWarning, model.ActionChangePassword, username,
			"password change with wrong old password")
		return fmt.Errorf("failed to change password of %q: %w", username, model.ErrWrongPassword)
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		a.logger.Error("Auth service: failed to hash password",
			"username", username,
			"error", err.Error())
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.credentials.Update(ctx, username, hash); err != nil {
		a.failed(ctx, model.ActionChangePassword, username, err)
		return err
	}

	a.emit(ctx, a.now(), model.SeverityInfo, model.ActionChangePassword, username, "password changed")
	return nil
}

// DeleteUser removes an account. Its failure record, if any, is left to expire.
func (a *Auth) DeleteUser(ctx context.Context, username string) error {
	a.logger.Debug("Auth service: deleting user",
		"username", username)

	if err := a.credentials.Remove(ctx, username); err != nil {
		a.failed(ctx, model.ActionDeleteUser, username, err)
		return err
	}

	a.emit(ctx, a.now(), model.SeverityInfo, model.ActionDeleteUser, username, "account deleted")
	return nil
}

// ListLockedAccounts returns the accounts locked at now with their remaining lock time.
func (a *Auth) ListLockedAccounts(ctx context.Context, now time.Time) iter.Seq[model.LockedAccount] {
	a.emit(ctx, now, model.SeverityInfo, model.ActionListLocked, "", "locked accounts queried")
	return a.attempts.Locked(now)
}

func (a *Auth) failed(ctx context.Context, action, username string, err error) {
	switch {
	case errors.Is(err, model.ErrAlreadyExists):
		a.emit(ctx, a.now(), model.SeverityWarning, action, username, "account already exists")
	case errors.Is(err, model.ErrNotFound):
		a.emit(ctx, a.now(), model.SeverityWarning, action, username, "account not found")
	default:
		a.logger.Error("Auth service: credential store failure",
			"action", action,
			"username", username,
			"error", err.Error())
		a.emit(ctx, a.now(), model.SeverityWarning, action, username, "credential store failure: "+err.Error())
	}
}

func (a *Auth) emit(ctx context.Context, at time.Time, severity model.Severity, action, username, message string) {
	a.audit.Emit(ctx, model.NewAuditEvent(at, severity, action, username, message))
}
