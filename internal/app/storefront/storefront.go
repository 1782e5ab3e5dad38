// Package storefront собирает HTTP API витрины и gRPC health-сервер.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/magabrotheeeer/storefront/internal/cache"
	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/grpc/server"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/account"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/auth"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/checkout"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/clients"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/credentials"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/health"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/sysconfig"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/watchlist"
	"github.com/magabrotheeeer/storefront/internal/lib/jwt"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/migrations"
	accountsvc "github.com/magabrotheeeer/storefront/internal/services/account"
	authsvc "github.com/magabrotheeeer/storefront/internal/services/auth"
	checkoutsvc "github.com/magabrotheeeer/storefront/internal/services/checkout"
	clientssvc "github.com/magabrotheeeer/storefront/internal/services/clients"
	credentialssvc "github.com/magabrotheeeer/storefront/internal/services/credentials"
	sysconfigsvc "github.com/magabrotheeeer/storefront/internal/services/sysconfig"
	watchlistsvc "github.com/magabrotheeeer/storefront/internal/services/watchlist"
	"github.com/magabrotheeeer/storefront/internal/storage/repository"
)

const (
	shutdownTimeout = 15 * time.Second
	probeInterval   = 10 * time.Second
)

// App приложение витрины.
type App struct {
	server   *http.Server
	grpc     *grpc.Server
	grpcAddr string
	health   *server.HealthServer
	logger   *slog.Logger
	db       *repository.Storage
	cache    *cache.Cache
}

// New подключает хранилище и кеш, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	now := time.Now
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authsvc.NewAuthService(db, db, cacheRedis, jwtMaker, logger)
	accountService := accountsvc.NewService(db, logger, now)
	watchlistService := watchlistsvc.NewService(db, cacheRedis, cfg.RedisTTL, logger)
	checkoutService := checkoutsvc.NewService(db, cfg.Storefront, logger)
	credentialsService := credentialssvc.NewService(db, logger, now)
	clientsService := clientssvc.NewService(db, cfg.MonthlyPrice, logger, now)
	sysconfigService := sysconfigsvc.NewService(db, cacheRedis, cfg.RedisTTL, logger, now)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.HTTPServer, cfg.AllowedOrigins, authService, Handlers{
		Auth:        auth.New(logger, authService),
		Account:     account.New(logger, accountService),
		Watchlist:   watchlist.New(logger, watchlistService),
		Checkout:    checkout.New(logger, checkoutService),
		Credentials: credentials.New(logger, credentialsService),
		Clients:     clients.New(logger, clientsService),
		SysConfig:   sysconfig.New(logger, sysconfigService),
		Health:      health.New(logger, db),
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	healthServer := server.NewHealthServer(db, logger)
	grpcServer := grpc.NewServer()
	healthServer.Register(grpcServer)

	return &App{
		server:   srv,
		grpc:     grpcServer,
		grpcAddr: cfg.GRPCAddress,
		health:   healthServer,
		logger:   logger,
		db:       db,
		cache:    cacheRedis,
	}, nil
}

// Run запускает HTTP и gRPC серверы и блокируется до отмены ctx или ошибки одного из них.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", a.grpcAddr)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		a.logger.Info("gRPC health server starting on", slog.String("address", a.grpcAddr))
		if err := a.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.health.Watch(gctx, probeInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down servers gracefully")
		a.grpc.GracefulStop()
		return a.server.Shutdown(timeoutCtx)
	})

	err := g.Wait()

	if cerr := a.cache.Close(); cerr != nil {
		a.logger.Error("failed to close cache", sl.Err(cerr))
	}
	if cerr := a.db.Close(); cerr != nil {
		a.logger.Error("failed to close storage", sl.Err(cerr))
	}
	return err
}
