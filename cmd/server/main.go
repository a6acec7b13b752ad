package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/fcastillo/hybrid-notary/internal/application/dispatcher"
	"github.com/fcastillo/hybrid-notary/internal/application/port"
	"github.com/fcastillo/hybrid-notary/internal/application/service"
	"github.com/fcastillo/hybrid-notary/internal/application/workflow"
	"github.com/fcastillo/hybrid-notary/internal/config"
	"github.com/fcastillo/hybrid-notary/internal/domain/entity"
	"github.com/fcastillo/hybrid-notary/internal/domain/event"
	"github.com/fcastillo/hybrid-notary/internal/infrastructure/call"
	"github.com/fcastillo/hybrid-notary/internal/infrastructure/persistence/memory"
	"github.com/fcastillo/hybrid-notary/internal/infrastructure/persistence/repository"
	"github.com/fcastillo/hybrid-notary/internal/infrastructure/roster"
	httpserver "github.com/fcastillo/hybrid-notary/internal/interfaces/http"
	"github.com/fcastillo/hybrid-notary/internal/metrics"
	"github.com/fcastillo/hybrid-notary/internal/notification"
	"github.com/fcastillo/hybrid-notary/internal/worker"
	"github.com/fcastillo/hybrid-notary/pkg/database"
	"github.com/fcastillo/hybrid-notary/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting hybrid notarization service",
		zap.String("db_driver", cfg.Database.Driver),
		zap.Int("port", cfg.Server.Port))

	// Wire the session store
	var (
		transactions port.TransactionRepository
		sessions     port.SessionRepository
		events       port.SessionEventRepository
		txManager    port.TransactionManager
	)

	switch cfg.Database.Driver {
	case "memory":
		store := memory.NewStore()
		transactions = store.Transactions()
		sessions = store.Sessions()
		events = store.Events()
		txManager = store.TxManager()

	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}

		db, err := database.New(database.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer db.Close()

		migrator := database.NewMigrator(db, logger)
		if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
			logger.Fatal("Failed to run database migrations", zap.Error(err))
		}

		transactions = repository.NewTransactionRepository(db.DB, logger)
		sessions = repository.NewSessionRepository(db.DB, logger)
		events = repository.NewSessionEventRepository(db.DB, logger)
		txManager = repository.NewTxManager(db)

	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}

	// Metrics and lifecycle events
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	disp := dispatcher.NewDispatcher(dispatcher.WithLogger(kvLogger{logger.Sugar()}))
	defer disp.Close()

	notifier := notification.NewLogNotifier(logger)
	disp.SubscribeNamed(event.TypeSessionCompleted, "client-notifier", notification.CompletionHandler(notifier))

	// Certifier roster from config
	certifiers := make([]entity.Certifier, 0, len(cfg.Certifiers))
	for _, c := range cfg.Certifiers {
		certifiers = append(certifiers, entity.Certifier{ID: c.ID, Name: c.Name})
	}
	directory := roster.NewStaticDirectory(certifiers)

	// Application services
	engine := workflow.NewEngine(sessions, events, txManager, directory, call.NewTokenIssuer(), logger,
		workflow.WithDispatcher(disp),
		workflow.WithMetrics(m))

	intake := service.NewIntakeService(transactions, sessions, txManager, cfg.Templates, logger,
		service.WithDispatcher(disp),
		service.WithMetrics(m))

	queries := service.NewQueryService(sessions, events)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Abandonment sweeper is opt-in
	if cfg.Session.AbandonTimeout > 0 {
		sweeper := worker.NewExpirySweeper(sessions, engine,
			cfg.Session.AbandonTimeout,
			cfg.Session.SweepInterval,
			cfg.Session.SweepBatchSize,
			logger)
		if err := sweeper.Start(ctx); err != nil {
			logger.Fatal("Failed to start expiry sweeper", zap.Error(err))
		}
		defer sweeper.Stop()
	}

	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		intake,
		engine,
		queries,
		httpserver.ClientConfig{
			SessionPollInterval: cfg.Polling.SessionInterval,
			QueuePollInterval:   cfg.Polling.QueueInterval,
		},
		registry,
		logger,
	)

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited")
}

// kvLogger adapts zap's sugared logger to the dispatcher's logger interface
type kvLogger struct {
	s *zap.SugaredLogger
}

func (l kvLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l kvLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}
