package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/gatekeeper/internal/api/grpc/handler"
	"github.com/dtroode/gatekeeper/internal/api/grpc/middleware"
	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/model"
)

// protectedMethods require a valid access token.
var protectedMethods = map[string]struct{}{
	handler.MethodAddUser:            {},
	handler.MethodChangePassword:     {},
	handler.MethodDeleteUser:         {},
	handler.MethodListLockedAccounts: {},
}

// Router builds the gRPC server of the accounts service.
type Router struct {
	accounts       handler.AccountService
	tokens         model.TokenManager
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	accounts handler.AccountService,
	tokens model.TokenManager,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		accounts:       accounts,
		tokens:         tokens,
		contextManager: contextManager,
		logger:         logger,
	}
}

func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	_, ok := protectedMethods[c.FullMethod()]
	return ok
}

// Register creates the gRPC server with recovery, request logging and
// authentication interceptors and registers all services on it.
func (r *Router) Register(opts ...grpc.ServerOption) *grpc.Server {
	recovery := middleware.NewRecovery(r.logger)
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokens, r.contextManager, r.logger)

	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			recovery.UnaryInterceptor(),
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
	)

	s := grpc.NewServer(opts...)
	r.registerAccountRoutes(s)
	r.registerHealth(s)

	return s
}

func (r *Router) registerAccountRoutes(server *grpc.Server) {
	accountsHandler := handler.NewAccounts(r.accounts, r.tokens, r.contextManager, r.logger)
	handler.RegisterAccountsServer(server, accountsHandler)
}

func (r *Router) registerHealth(server *grpc.Server) {
	hs := health.NewServer()
	hs.SetServingStatus(handler.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, hs)
}
