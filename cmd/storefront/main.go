package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/clients"
	"storefront/internal/delivery"
	grpcHandler "storefront/internal/delivery/grpc"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/pkg/db"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

func main() {
	bootLogger := config.NewLogger("info")
	cfg, err := config.LoadConfig(bootLogger)
	if err != nil {
		bootLogger.Fatalf("FATAL: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)
	logger.Info("Starting Storefront...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Remote store clients ---
	httpClient := clients.NewHTTPClient(cfg.HTTPClientTimeout)
	productClient := clients.NewProductHTTPClient(cfg.StoreAPIURL, httpClient, logger)
	cartClient := clients.NewCartHTTPClient(cfg.StoreAPIURL, httpClient, logger)
	userClient := clients.NewUserHTTPClient(cfg.StoreAPIURL, httpClient, logger)
	logger.Infof("Remote store clients initialized for target: %s", cfg.StoreAPIURL)

	// --- Sessions ---
	sessions, closeSessions := buildSessionRepository(ctx, cfg, logger)
	defer closeSessions()

	// --- Reconciliation log ---
	recorder, closeRecorder := buildRecorder(ctx, cfg, logger)
	defer closeRecorder()

	// --- Dependency Injection ---
	authUseCase := usecase.NewAuthUseCase(userClient, sessions, logger)
	catalogUseCase := usecase.NewCatalogUseCase(productClient, logger)
	adminUseCase := usecase.NewAdminUseCase(productClient, logger)
	cartUseCase := usecase.NewCartUseCase(cartClient, productClient, recorder, logger)
	logger.Info("Use cases initialized.")

	router := delivery.NewRouter(delivery.Handlers{
		Auth:    delivery.NewAuthHandler(authUseCase, logger),
		Catalog: delivery.NewCatalogHandler(catalogUseCase, logger),
		Cart:    delivery.NewCartHandler(cartUseCase, authUseCase, logger),
		Admin:   delivery.NewAdminHandler(adminUseCase, catalogUseCase, logger),
	}, authUseCase, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	grpcServer := grpc.NewServer()
	grpcHandler.RegisterCartServiceServer(grpcServer, grpcHandler.NewCartHandler(cartUseCase, authUseCase, logger))
	reflection.Register(grpcServer)

	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Errorf("Failed to serve gRPC: %v", err)
			stop()
		}
	}()
	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Failed to serve HTTP: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Warn("Shutdown signal received...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Storefront shut down gracefully.")
}

func buildSessionRepository(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (domain.SessionRepository, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("Using in-memory session store")
		return repository.NewMemorySessionRepository(cfg.SessionTTL, logger), func() {}
	}
	client, err := repository.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("Failed to connect to redis at %s: %v", cfg.RedisAddr, err)
	}
	logger.Infof("Using redis session store at %s", cfg.RedisAddr)
	return repository.NewRedisSessionRepository(client, cfg.SessionTTL, logger), func() {
		if err := client.Close(); err != nil {
			logger.Errorf("Error closing redis client: %v", err)
		}
	}
}

func buildRecorder(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (domain.ReconciliationRecorder, func()) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, reconciliation entries go to the log only")
		return repository.NewLogReconciliationRecorder(logger), func() {}
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	repo := repository.NewPostgresReconciliationRepository(database, logger)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Fatalf("Failed to prepare reconciliation schema: %v", err)
	}
	logger.Info("Database connection established, reconciliation log enabled.")
	return repo, func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		}
	}
}
