package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/gatekeeper/database"
	grpcctx "github.com/dtroode/gatekeeper/internal/api/grpc/context"
	"github.com/dtroode/gatekeeper/internal/api/grpc/router"
	grpcServer "github.com/dtroode/gatekeeper/internal/api/grpc/server"
	httpapi "github.com/dtroode/gatekeeper/internal/api/http"
	"github.com/dtroode/gatekeeper/internal/audit"
	"github.com/dtroode/gatekeeper/internal/config"
	"github.com/dtroode/gatekeeper/internal/credential"
	"github.com/dtroode/gatekeeper/internal/hasher"
	"github.com/dtroode/gatekeeper/internal/lockout"
	"github.com/dtroode/gatekeeper/internal/logger"
	"github.com/dtroode/gatekeeper/internal/model"
	"github.com/dtroode/gatekeeper/internal/repository/file"
	"github.com/dtroode/gatekeeper/internal/repository/postgres"
	"github.com/dtroode/gatekeeper/internal/server"
	"github.com/dtroode/gatekeeper/internal/service"
	storage "github.com/dtroode/gatekeeper/internal/storage/minio"
	"github.com/dtroode/gatekeeper/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checks := make(map[string]httpapi.Pinger)

	backend, closeBackend, err := newCredentialBackend(ctx, cfg, checks)
	if err != nil {
		logger.Fatal("failed to initialize credential backend", "backend", cfg.Storage.Backend, "error", err)
	}
	defer closeBackend()

	store, err := credential.NewStore(ctx, backend)
	if err != nil {
		logger.Fatal("failed to load credentials", "backend", cfg.Storage.Backend, "error", err)
	}
	logger.Info("credentials loaded", "backend", cfg.Storage.Backend, "accounts", store.Len())

	auditSink, closeAudit, err := newAuditSink(ctx, cfg, registry, logger)
	if err != nil {
		logger.Fatal("failed to initialize audit trail", "error", err)
	}
	defer closeAudit()

	tracker := lockout.NewTracker(model.LockoutPolicy{
		Threshold:    cfg.Lockout.Threshold,
		LockDuration: cfg.Lockout.Duration,
	})
	passwordHasher := hasher.NewArgon2(hasher.Params{
		Time:   cfg.KDF.Time,
		MemKiB: cfg.KDF.MemKiB,
		Par:    cfg.KDF.Par,
	})

	authService := service.NewAuth(store, tracker, passwordHasher, auditSink, logger)

	if cfg.Bootstrap.AdminUsername != "" {
		created, err := authService.EnsureUser(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
		if err != nil {
			logger.Fatal("failed to bootstrap admin account", "username", cfg.Bootstrap.AdminUsername, "error", err)
		}
		if created {
			logger.Info("bootstrap admin account created", "username", cfg.Bootstrap.AdminUsername)
		}
	}

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)
	ctxMgr := grpcctx.NewManager()

	rpc := registerGRPCServer(logger, authService, tokenManager, ctxMgr, fmt.Sprintf(":%s", cfg.GRPC.Port))
	ops := httpapi.NewServer(httpapi.NewRouter(httpapi.RouterConfig{
		Registry: registry,
		Checks:   checks,
		Logger:   logger,
	}), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	start := func(s model.Server, sl model.SecurityLayer) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "address", s.Address(), "error", err)
				stop()
			}
		}()
	}
	start(rpc, sl)
	start(ops, server.NewPlainListener())

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	for _, s := range []model.Server{rpc, ops} {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func newCredentialBackend(ctx context.Context, cfg *config.Config, checks map[string]httpapi.Pinger) (model.CredentialBackend, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		checks["postgres"] = db
		return postgres.NewCredentialRepository(db), func() { _ = db.Close() }, nil
	case config.BackendMinio:
		client, err := storage.NewClient(ctx, cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket, cfg.Minio.UseSSL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewCredentialObject(client, cfg.Minio.Object), func() {}, nil
	default:
		return file.NewCredentialFile(cfg.Storage.FilePath), func() {}, nil
	}
}

func newAuditSink(ctx context.Context, cfg *config.Config, registry prometheus.Registerer, logger *logger.Logger) (model.AuditSink, func(), error) {
	logFile, err := os.OpenFile(cfg.Audit.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	sinks := audit.Multi{
		audit.NewLogger(logFile),
		audit.NewMetrics(registry),
	}
	closers := []io.Closer{logFile}

	var async *audit.Async
	if cfg.Audit.Postgres {
		db, err := openAuditDB(ctx, cfg.Database.DSN)
		if err != nil {
			logFile.Close()
			return nil, nil, err
		}
		async = audit.NewAsync(postgres.NewAuditRepository(db, logger), cfg.Audit.BufferSize, logger)
		sinks = append(sinks, async)
		closers = append(closers, db)
	}

	return sinks, func() {
		if async != nil {
			async.Close()
		}
		for _, c := range closers {
			_ = c.Close()
		}
	}, nil
}

func openAuditDB(ctx context.Context, dsn string) (*sql.DB, error) {
	if err := database.Migrate(ctx, dsn); err != nil {
		return nil, fmt.Errorf("failed to migrate audit database: %w", err)
	}
	return database.Open(ctx, dsn)
}

func registerGRPCServer(
	logger *logger.Logger,
	authService *service.Auth,
	tokenManager model.TokenManager,
	ctxMgr model.ContextManager,
	addr string,
) *grpcServer.GRPCServer {
	r := router.New(authService, tokenManager, ctxMgr, logger)
	s := r.Register()

	reflection.Register(s)

	return grpcServer.NewGRPCServer(s, addr)
}
