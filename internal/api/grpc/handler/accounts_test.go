package handler

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	grpcctx "github.com/dtroode/gatekeeper/internal/api/grpc/context"
	"github.com/dtroode/gatekeeper/internal/mocks"
	"github.com/dtroode/gatekeeper/internal/model"
	"github.com/dtroode/gatekeeper/internal/testutil"
)

var fixedNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newAccounts(t *testing.T) (*Accounts, *mocks.AccountService, *mocks.TokenManager) {
	t.Helper()
	svc := mocks.NewAccountService(t)
	tokens := mocks.NewTokenManager(t)
	h := NewAccounts(svc, tokens, grpcctx.NewManager(), testutil.MakeNoopLogger())
	h.now = func() time.Time { return fixedNow }
	return h, svc, tokens
}

func request(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestAccounts_Login(t *testing.T) {
	tests := []struct {
		name    string
		outcome model.LoginOutcome
		want    map[string]any
	}{
		{
			name:    "success",
			outcome: model.Success(),
			want:    map[string]any{"outcome": "success", "access_token": "tok"},
		},
		{
			name:    "locked",
			outcome: model.Locked(52),
			want:    map[string]any{"outcome": "locked", "remaining_seconds": float64(52)},
		},
		{
			name:    "unknown user",
			outcome: model.UnknownUser(),
			want:    map[string]any{"outcome": "unknown_user"},
		},
		{
			name:    "wrong password",
			outcome: model.WrongPassword(true),
			want:    map[string]any{"outcome": "wrong_password", "now_locked": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc, tokens := newAccounts(t)
			svc.On("Login", mock.Anything, "alice", "pw1", fixedNow).Return(tt.outcome)
			if tt.outcome.Kind == model.OutcomeSuccess {
				tokens.On("GenerateAccessToken", "alice").Return("tok", nil)
			}

			out, err := h.Login(context.Background(), request(t, map[string]any{"username": "alice", "password": "pw1"}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.AsMap())
		})
	}
}

func TestAccounts_Login_TokenFailure(t *testing.T) {
	h, svc, tokens := newAccounts(t)
	svc.On("Login", mock.Anything, "alice", "pw1", fixedNow).Return(model.Success())
	tokens.On("GenerateAccessToken", "alice").Return("", errors.New("sign failed"))

	out, err := h.Login(context.Background(), request(t, map[string]any{"username": "alice", "password": "pw1"}))
	assert.Nil(t, out)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestAccounts_InvalidRequests(t *testing.T) {
	h, _, _ := newAccounts(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (*structpb.Struct, error)
	}{
		{
			name: "login without password",
			call: func() (*structpb.Struct, error) {
				return h.Login(ctx, request(t, map[string]any{"username": "alice"}))
			},
		},
		{
			name: "login with numeric username",
			call: func() (*structpb.Struct, error) {
				return h.Login(ctx, request(t, map[string]any{"username": 5, "password": "x"}))
			},
		},
		{
			name: "add user with empty body",
			call: func() (*structpb.Struct, error) {
				return h.AddUser(ctx, nil)
			},
		},
		{
			name: "add user with control characters",
			call: func() (*structpb.Struct, error) {
				return h.AddUser(ctx, request(t, map[string]any{"username": "bad\nname", "password": "x"}))
			},
		},
		{
			name: "change password without new password",
			call: func() (*structpb.Struct, error) {
				return h.ChangePassword(ctx, request(t, map[string]any{"username": "alice", "old_password": "x"}))
			},
		},
		{
			name: "delete user without username",
			call: func() (*structpb.Struct, error) {
				return h.DeleteUser(ctx, request(t, map[string]any{}))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.call()
			assert.Nil(t, out)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestAccounts_AddUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		svcErr   error
		wantCode codes.Code
	}{
		{name: "created", wantCode: codes.OK},
		{name: "duplicate", svcErr: model.ErrAlreadyExists, wantCode: codes.AlreadyExists},
		{name: "storage", svcErr: &model.StorageError{Op: "save", Err: errors.New("disk full")}, wantCode: codes.Unavailable},
		{name: "unexpected", svcErr: errors.New("boom"), wantCode: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc, _ := newAccounts(t)
			svc.On("AddUser", mock.Anything, "bob", "secret").Return(tt.svcErr)

			out, err := h.AddUser(ctx, request(t, map[string]any{"username": "bob", "password": "secret"}))
			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				assert.Equal(t, map[string]any{"username": "bob"}, out.AsMap())
			}
		})
	}
}

func TestAccounts_ChangePassword(t *testing.T) {
	ctx := grpcctx.NewManager().SetSubjectToContext(context.Background(), "alice")

	tests := []struct {
		name     string
		svcErr   error
		wantCode codes.Code
	}{
		{name: "changed", wantCode: codes.OK},
		{name: "unknown account", svcErr: model.ErrNotFound, wantCode: codes.NotFound},
		{name: "wrong old password", svcErr: model.ErrWrongPassword, wantCode: codes.PermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc, _ := newAccounts(t)
			svc.On("ChangePassword", mock.Anything, "alice", "pw1", "pw2").Return(tt.svcErr)

			_, err := h.ChangePassword(ctx, request(t, map[string]any{
				"username":     "alice",
				"old_password": "pw1",
				"new_password": "pw2",
			}))
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}
}

func TestAccounts_ChangePassword_NotOwner(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{name: "no subject", ctx: context.Background()},
		{name: "other subject", ctx: grpcctx.NewManager().SetSubjectToContext(context.Background(), "mallory")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newAccounts(t)

			out, err := h.ChangePassword(tt.ctx, request(t, map[string]any{
				"username":     "alice",
				"old_password": "pw1",
				"new_password": "pw2",
			}))
			assert.Nil(t, out)
			assert.Equal(t, codes.PermissionDenied, status.Code(err))
		})
	}
}

func TestAccounts_DeleteUser(t *testing.T) {
	h, svc, _ := newAccounts(t)
	svc.On("DeleteUser", mock.Anything, "bob").Return(nil).Once()
	svc.On("DeleteUser", mock.Anything, "ghost").Return(model.ErrNotFound).Once()

	ctx := grpcctx.NewManager().SetSubjectToContext(context.Background(), "admin")

	_, err := h.DeleteUser(ctx, request(t, map[string]any{"username": "bob"}))
	assert.NoError(t, err)

	_, err = h.DeleteUser(ctx, request(t, map[string]any{"username": "ghost"}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestAccounts_ListLockedAccounts(t *testing.T) {
	h, svc, _ := newAccounts(t)
	locked := []model.LockedAccount{
		{Username: "alice", RemainingSeconds: 50},
		{Username: "bob", RemainingSeconds: 30},
	}
	svc.On("ListLockedAccounts", mock.Anything, fixedNow).Return(slices.Values(locked))

	out, err := h.ListLockedAccounts(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"accounts": []any{
			map[string]any{"username": "alice", "remaining_seconds": float64(50)},
			map[string]any{"username": "bob", "remaining_seconds": float64(30)},
		},
	}, out.AsMap())
}

func TestAccounts_ListLockedAccounts_Empty(t *testing.T) {
	h, svc, _ := newAccounts(t)
	svc.On("ListLockedAccounts", mock.Anything, fixedNow).Return(slices.Values([]model.LockedAccount(nil)))

	out, err := h.ListLockedAccounts(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"accounts": []any{}}, out.AsMap())
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "malformed", err: errMalformedRequest, want: codes.InvalidArgument},
		{name: "wrapped not found", err: errors.Join(errors.New("ctx"), model.ErrNotFound), want: codes.NotFound},
		{name: "already exists", err: model.ErrAlreadyExists, want: codes.AlreadyExists},
		{name: "wrong password", err: model.ErrWrongPassword, want: codes.PermissionDenied},
		{name: "not owner", err: errNotAccountOwner, want: codes.PermissionDenied},
		{name: "storage", err: &model.StorageError{Op: "load", Err: errors.New("x")}, want: codes.Unavailable},
		{name: "other", err: errors.New("x"), want: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(handleError(tt.err)))
		})
	}
}
