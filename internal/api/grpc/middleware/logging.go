package middleware

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gatekeeper/internal/logger"
)

// Logging is a unary interceptor that logs gRPC requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// HandleGRPC logs method name, duration and status for each unary request.
// Client errors are logged as warnings, server errors as errors.
func (l *Logging) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	l.logger.Debug("gRPC request started",
		"method", info.FullMethod)

	resp, err := handler(ctx, req)

	duration := time.Since(start)
	code := status.Code(err)

	args := []any{
		"method", info.FullMethod,
		"duration_ms", duration.Milliseconds(),
		"status", code.String(),
	}

	switch code {
	case codes.OK:
		l.logger.Info("gRPC request completed", args...)
	case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss:
		l.logger.Error("gRPC request failed", append(args, "error", err.Error())...)
	default:
		l.logger.Warn("gRPC request rejected", append(args, "error", err.Error())...)
	}

	return resp, err
}
