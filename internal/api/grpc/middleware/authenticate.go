package middleware

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/model"
)

// Authenticate validates bearer tokens and injects the subject into context.
type Authenticate struct {
	tokens         model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokens model.TokenManager, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the bearer token from the authorization header and returns
// a context carrying its subject.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	tokenString, err := auth.AuthFromMD(ctx, "bearer")
	if err != nil {
		return nil, err
	}

	subject, err := m.tokens.ParseAccessToken(tokenString)
	if err != nil {
		m.logger.Warn("Authenticate middleware: rejected token",
			"error", err.Error())
		return nil, status.Error(codes.Unauthenticated, "invalid authorization token")
	}

	return m.contextManager.SetSubjectToContext(ctx, subject), nil
}
