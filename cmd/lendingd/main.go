package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ageorgief/BookLibrary/internal/config"
	"github.com/ageorgief/BookLibrary/internal/db"
	"github.com/ageorgief/BookLibrary/internal/events"
	grpcserver "github.com/ageorgief/BookLibrary/internal/grpc"
	"github.com/ageorgief/BookLibrary/internal/httpapi"
	"github.com/ageorgief/BookLibrary/internal/ledger"
	"github.com/ageorgief/BookLibrary/internal/metrics"
	"github.com/ageorgief/BookLibrary/internal/repo"
	"github.com/ageorgief/BookLibrary/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// publisher is the broker connection as seen by main
type publisher interface {
	grpcserver.EventPublisher
	Close() error
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log := logger.NewLogger(cfg.ServiceName, cfg.LogLevel)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	log.Info("Lending service starting")

	// Connect to database
	log.Info("Connecting to database...", zap.String("driver", cfg.DBDriver))
	database, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Run migrations
	log.Info("Running database migrations...")
	if err := db.RunMigrations(database); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Load the ledger
	ledgerRepo := repo.NewLedgerRepository(database, log)
	l, err := loadLedger(context.Background(), ledgerRepo, ledger.Principal(cfg.OwnerAddress), log)
	if err != nil {
		log.Fatal("Failed to load ledger", zap.Error(err))
	}
	log.Info("Ledger loaded",
		zap.String("owner", string(l.Owner())),
		zap.Int("books", l.Len()),
	)

	// Connect to RabbitMQ
	var pub publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		log.Info("Connecting to RabbitMQ")
		p, err := events.NewPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		pub = p
	} else {
		log.Warn("RABBITMQ_URL not set, ledger events disabled")
	}
	defer pub.Close()

	m := metrics.New(l)

	// Create gRPC server
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpcserver.LoggingInterceptor(log),
			grpcserver.MetricsInterceptor(m),
		),
	)

	ledgerService := grpcserver.NewLedgerServer(l, pub, log)
	grpcserver.RegisterLedgerService(grpcServer, ledgerService)

	healthServer := grpcserver.NewHealthServer(database, pub, log)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
	if err != nil {
		log.Fatal("Failed to listen on gRPC port", zap.Error(err))
	}

	go func() {
		log.Info("Starting gRPC server", zap.String("address", grpcListener.Addr().String()))
		if err := grpcServer.Serve(grpcListener); err != nil {
			log.Fatal("Failed to serve gRPC", zap.Error(err))
		}
	}()

	// Start HTTP server for REST, health and metrics
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	httpapi.RegisterRoutes(router, ledgerService, healthServer, m, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to serve HTTP", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}

	grpcServer.GracefulStop()

	log.Info("Server stopped")
}

// loadLedger restores the persisted ledger, initializing the owner on first start
func loadLedger(ctx context.Context, r *repo.LedgerRepository, owner ledger.Principal, log *zap.Logger) (*ledger.Ledger, error) {
	effective, err := r.InitOwner(ctx, owner)
	if errors.Is(err, repo.ErrOwnerMismatch) {
		log.Warn("OWNER_ADDRESS differs from the stored owner and is ignored",
			zap.String("configured", string(owner)),
			zap.String("stored", string(effective)),
		)
	} else if err != nil {
		return nil, err
	}

	state, err := r.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	l, err := ledger.Restore(state, r)
	if err != nil {
		return nil, err
	}
	if err := r.VerifyStats(ctx, l.Stats()); err != nil {
		return nil, err
	}
	return l, nil
}
