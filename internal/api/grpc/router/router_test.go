package router

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	grpcctx "github.com/dtroode/gatekeeper/internal/api/grpc/context"
	"github.com/dtroode/gatekeeper/internal/api/grpc/handler"
	"github.com/dtroode/gatekeeper/internal/credential"
	"github.com/dtroode/gatekeeper/internal/hasher"
	"github.com/dtroode/gatekeeper/internal/lockout"
	"github.com/dtroode/gatekeeper/internal/model"
	"github.com/dtroode/gatekeeper/internal/service"
	"github.com/dtroode/gatekeeper/internal/testutil"
	"github.com/dtroode/gatekeeper/internal/token"
)

type client struct {
	t    *testing.T
	conn *grpc.ClientConn
}

func (c *client) call(ctx context.Context, method string, fields map[string]any) (map[string]any, error) {
	c.t.Helper()
	in, err := structpb.NewStruct(fields)
	require.NoError(c.t, err)

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func startServer(t *testing.T, users map[string]string) *client {
	t.Helper()
	ctx := context.Background()
	lg := testutil.MakeNoopLogger()

	h := hasher.NewArgon2(hasher.Params{Time: 1, MemKiB: 1024, Par: 1})
	hashed := make(map[string]string, len(users))
	for username, password := range users {
		secret, err := h.Hash(password)
		require.NoError(t, err)
		hashed[username] = secret
	}

	store, err := credential.NewStore(ctx, testutil.NewMemoryBackend(hashed))
	require.NoError(t, err)

	auth := service.NewAuth(store, lockout.NewTracker(model.DefaultLockoutPolicy()), h, &testutil.AuditRecorder{}, lg)
	s := New(auth, token.NewJWT("test-secret", time.Minute), grpcctx.NewManager(), lg).Register()

	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &client{t: t, conn: conn}
}

func withToken(ctx context.Context, token string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
}

func TestRouter_LockoutOverGRPC(t *testing.T) {
	c := startServer(t, map[string]string{"alice": "pw1", "admin": "root"})
	ctx := context.Background()

	for i, wantLocked := range []bool{false, false, true} {
		out, err := c.call(ctx, handler.MethodLogin, map[string]any{"username": "alice", "password": "bad"})
		require.NoError(t, err, "attempt %d", i+1)
		assert.Equal(t, "wrong_password", out["outcome"])
		assert.Equal(t, wantLocked, out["now_locked"])
	}

	out, err := c.call(ctx, handler.MethodLogin, map[string]any{"username": "alice", "password": "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "locked", out["outcome"])
	remaining := out["remaining_seconds"].(float64)
	assert.Greater(t, remaining, 0.0)
	assert.LessOrEqual(t, remaining, 60.0)

	out, err = c.call(ctx, handler.MethodLogin, map[string]any{"username": "nobody", "password": "x"})
	require.NoError(t, err)
	assert.Equal(t, "unknown_user", out["outcome"])

	_, err = c.call(ctx, handler.MethodListLockedAccounts, map[string]any{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	out, err = c.call(ctx, handler.MethodLogin, map[string]any{"username": "admin", "password": "root"})
	require.NoError(t, err)
	require.Equal(t, "success", out["outcome"])
	accessToken := out["access_token"].(string)
	require.NotEmpty(t, accessToken)

	out, err = c.call(withToken(ctx, accessToken), handler.MethodListLockedAccounts, map[string]any{})
	require.NoError(t, err)
	accounts := out["accounts"].([]any)
	require.Len(t, accounts, 1)
	assert.Equal(t, "alice", accounts[0].(map[string]any)["username"])
}

func TestRouter_AccountAdministration(t *testing.T) {
	c := startServer(t, map[string]string{"admin": "root"})
	ctx := context.Background()

	_, err := c.call(ctx, handler.MethodAddUser, map[string]any{"username": "bob", "password": "secret"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.call(withToken(ctx, "forged"), handler.MethodDeleteUser, map[string]any{"username": "admin"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	out, err := c.call(ctx, handler.MethodLogin, map[string]any{"username": "admin", "password": "root"})
	require.NoError(t, err)
	authed := withToken(ctx, out["access_token"].(string))

	_, err = c.call(authed, handler.MethodAddUser, map[string]any{"username": "bob", "password": "secret"})
	require.NoError(t, err)

	_, err = c.call(authed, handler.MethodAddUser, map[string]any{"username": "bob", "password": "other"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	_, err = c.call(ctx, handler.MethodChangePassword, map[string]any{
		"username": "bob", "old_password": "secret", "new_password": "next",
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.call(authed, handler.MethodChangePassword, map[string]any{
		"username": "bob", "old_password": "secret", "new_password": "next",
	})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	out, err = c.call(ctx, handler.MethodLogin, map[string]any{"username": "bob", "password": "secret"})
	require.NoError(t, err)
	require.Equal(t, "success", out["outcome"])
	bob := withToken(ctx, out["access_token"].(string))

	_, err = c.call(bob, handler.MethodChangePassword, map[string]any{
		"username": "bob", "old_password": "wrong", "new_password": "next",
	})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = c.call(bob, handler.MethodChangePassword, map[string]any{
		"username": "bob", "old_password": "secret", "new_password": "next",
	})
	require.NoError(t, err)

	out, err = c.call(ctx, handler.MethodLogin, map[string]any{"username": "bob", "password": "next"})
	require.NoError(t, err)
	assert.Equal(t, "success", out["outcome"])

	_, err = c.call(authed, handler.MethodDeleteUser, map[string]any{"username": "bob"})
	require.NoError(t, err)

	_, err = c.call(authed, handler.MethodDeleteUser, map[string]any{"username": "bob"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.call(authed, handler.MethodAddUser, map[string]any{"username": "", "password": "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRouter_ChangePasswordOnLockedAccount(t *testing.T) {
	c := startServer(t, map[string]string{"alice": "pw1"})
	ctx := context.Background()

	for range 3 {
		_, err := c.call(ctx, handler.MethodLogin, map[string]any{"username": "alice", "password": "bad"})
		require.NoError(t, err)
	}

	for _, oldPassword := range []string{"guess1", "guess2", "pw1"} {
		_, err := c.call(ctx, handler.MethodChangePassword, map[string]any{
			"username": "alice", "old_password": oldPassword, "new_password": "taken",
		})
		assert.Equal(t, codes.Unauthenticated, status.Code(err), "old password %q", oldPassword)
	}

	out, err := c.call(ctx, handler.MethodLogin, map[string]any{"username": "alice", "password": "pw1"})
	require.NoError(t, err)
	assert.Equal(t, "locked", out["outcome"])
	assert.Empty(t, out["access_token"])

	_, err = c.call(ctx, handler.MethodChangePassword, map[string]any{
		"username": "nobody", "old_password": "x", "new_password": "y",
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRouter_Health(t *testing.T) {
	c := startServer(t, nil)

	resp, err := healthpb.NewHealthClient(c.conn).Check(context.Background(), &healthpb.HealthCheckRequest{
		Service: handler.ServiceName,
	})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
