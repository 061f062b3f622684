package handler

import (
	"context"
	"iter"
	"time"

	"github.com/go-playground/validator/v10"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/model"
)

// AccountService defines login and account administration operations.
type AccountService interface {
	Login(ctx context.Context, username, password string, now time.Time) model.LoginOutcome
	AddUser(ctx context.Context, username, password string) error
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	DeleteUser(ctx context.Context, username string) error
	ListLockedAccounts(ctx context.Context, now time.Time) iter.Seq[model.LockedAccount]
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=256"`
	Password string `json:"password" validate:"required,max=1024"`
}

type addUserRequest struct {
	Username string `json:"username" validate:"required,max=256,printascii"`
	Password string `json:"password" validate:"required,max=1024"`
}

type changePasswordRequest struct {
	Username    string `json:"username" validate:"required,max=256"`
	OldPassword string `json:"old_password" validate:"required,max=1024"`
	NewPassword string `json:"new_password" validate:"required,max=1024"`
}

type deleteUserRequest struct {
	Username string `json:"username" validate:"required,max=256"`
}

var _ AccountsServer = (*Accounts)(nil)

// Accounts handles gRPC endpoints of the accounts service.
type Accounts struct {
	service        AccountService
	tokens         model.TokenManager
	contextManager model.ContextManager
	validate       *validator.Validate
	logger         *logger.Logger
	now            func() time.Time
}

// NewAccounts creates a new Accounts handler.
func NewAccounts(
	service AccountService,
	tokens model.TokenManager,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Accounts {
	return &Accounts{
		service:        service,
		tokens:         tokens,
		contextManager: contextManager,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		logger:         logger,
		now:            time.Now,
	}
}

// Login reports the login outcome. Failed logins are regular responses; an
// access token is attached only on success.
func (h *Accounts) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in loginRequest
	if err := h.bind(req, &in); err != nil {
		return nil, handleError(err)
	}

	h.logger.Debug("Accounts handler: processing login request",
		"username", in.Username)

	outcome := h.service.Login(ctx, in.Username, in.Password, h.now())

	fields := map[string]any{
		"outcome": outcome.Kind.String(),
	}
	switch outcome.Kind {
	case model.OutcomeSuccess:
		token, err := h.tokens.GenerateAccessToken(in.Username)
		if err != nil {
			h.logger.Error("Accounts handler: failed to issue access token",
				"username", in.Username,
				"error", err.Error())
			return nil, handleError(err)
		}
		fields["access_token"] = token
	case model.OutcomeLocked:
		fields["remaining_seconds"] = outcome.RemainingSeconds
	case model.OutcomeWrongPassword:
		fields["now_locked"] = outcome.NowLocked
	}

	h.logger.Info("Accounts handler: login completed",
		"username", in.Username,
		"outcome", outcome.String())

	return encodeResponse(fields)
}

// AddUser registers a new account.
func (h *Accounts) AddUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in addUserRequest
	if err := h.bind(req, &in); err != nil {
		return nil, handleError(err)
	}

	operator, _ := h.contextManager.GetSubjectFromContext(ctx)
	h.logger.Debug("Accounts handler: processing add user request",
		"username", in.Username,
		"operator", operator)

	if err := h.service.AddUser(ctx, in.Username, in.Password); err != nil {
		h.logger.Error("Accounts handler: add user failed",
			"username", in.Username,
			"operator", operator,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Accounts handler: user added",
		"username", in.Username,
		"operator", operator)

	return encodeResponse(map[string]any{"username": in.Username})
}

// ChangePassword replaces the password of an account given its current one.
// Only the authenticated owner of the account may change it.
func (h *Accounts) ChangePassword(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in changePasswordRequest
	if err := h.bind(req, &in); err != nil {
		return nil, handleError(err)
	}

	subject, ok := h.contextManager.GetSubjectFromContext(ctx)
	if !ok || subject != in.Username {
		h.logger.Warn("Accounts handler: change password for another account rejected",
			"username", in.Username,
			"subject", subject)
		return nil, handleError(errNotAccountOwner)
	}

	h.logger.Debug("Accounts handler: processing change password request",
		"username", in.Username)

	if err := h.service.ChangePassword(ctx, in.Username, in.OldPassword, in.NewPassword); err != nil {
		h.logger.Error("Accounts handler: change password failed",
			"username", in.Username,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Accounts handler: password changed",
		"username", in.Username)

	return encodeResponse(map[string]any{"username": in.Username})
}

// DeleteUser removes an account.
func (h *Accounts) DeleteUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in deleteUserRequest
	if err := h.bind(req, &in); err != nil {
		return nil, handleError(err)
	}

	operator, _ := h.contextManager.GetSubjectFromContext(ctx)
	h.logger.Debug("Accounts handler: processing delete user request",
		"username", in.Username,
		"operator", operator)

	if err := h.service.DeleteUser(ctx, in.Username); err != nil {
		h.logger.Error("Accounts handler: delete user failed",
			"username", in.Username,
			"operator", operator,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Accounts handler: user deleted",
		"username", in.Username,
		"operator", operator)

	return encodeResponse(map[string]any{"username": in.Username})
}

// ListLockedAccounts returns the currently locked accounts ordered by username.
func (h *Accounts) ListLockedAccounts(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	accounts := []any{}
	for acc := range h.service.ListLockedAccounts(ctx, h.now()) {
		accounts = append(accounts, map[string]any{
			"username":          acc.Username,
			"remaining_seconds": acc.RemainingSeconds,
		})
	}

	h.logger.Debug("Accounts handler: listed locked accounts",
		"count", len(accounts))

	return encodeResponse(map[string]any{"accounts": accounts})
}

func (h *Accounts) bind(req *structpb.Struct, dst any) error {
	if err := decodeRequest(req, dst); err != nil {
		return err
	}
	return h.validate.Struct(dst)
}
