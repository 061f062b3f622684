package middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gatekeeper/internal/logger"
)

func TestLogging_HandleGRPC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		handler   grpc.UnaryHandler
		wantCode  codes.Code
		wantLevel string
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req any) (any, error) {
				time.Sleep(time.Millisecond)
				return "ok", nil
			},
			wantCode:  codes.OK,
			wantLevel: "level=INFO",
		},
		{
			name: "client error",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(codes.InvalidArgument, "bad input")
			},
			wantCode:  codes.InvalidArgument,
			wantLevel: "level=WARN",
		},
		{
			name: "non-grpc error is unknown",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, errors.New("boom")
			},
			wantCode:  codes.Unknown,
			wantLevel: "level=ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			lg := NewLogging(logger.NewWithWriter(&buf, 0))

			info := &grpc.UnaryServerInfo{FullMethod: "/gatekeeper.Accounts/Login"}
			resp, err := lg.HandleGRPC(context.Background(), struct{}{}, info, tt.handler)

			assert.Equal(t, tt.wantCode, status.Code(err))
			if tt.wantCode == codes.OK {
				assert.Equal(t, "ok", resp)
			}
			assert.Contains(t, buf.String(), tt.wantLevel)
			assert.Contains(t, buf.String(), "method=/gatekeeper.Accounts/Login")
		})
	}
}
