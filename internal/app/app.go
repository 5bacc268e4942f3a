package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"parkassist/internal/agent"
	"parkassist/internal/auth"
	"parkassist/internal/config"
	"parkassist/internal/document"
	httpserver "parkassist/internal/http"
	"parkassist/internal/http/handlers"
	"parkassist/internal/http/middleware"
	"parkassist/internal/llm"
	redisstore "parkassist/internal/redis"
	"parkassist/internal/repository"
	"parkassist/internal/service"
	"parkassist/internal/tools"
	"parkassist/internal/transcribe"
	libdb "parkassist/libs/db"
	libredis "parkassist/libs/redis"
	"parkassist/libs/telemetry"
)

// App wires the parking assistant dependencies.
type App struct {
	server       *httpserver.Server
	db           *sql.DB
	redisClient  *redis.Client
	stopTracing  func(context.Context) error
	logger       *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	sessionRepo := repository.NewSessionRepository(sqlDB)
	paymentRepo := repository.NewPaymentRepository(sqlDB)

	resolver := service.NewResolutionService(sessionRepo, logger)
	reconciler := service.NewReconciler(sessionRepo, paymentRepo, logger)

	registry := tools.NewRegistry(logger,
		tools.NewLostTicketTool(resolver, reconciler, cfg.Parking.ExitStation, logger),
		tools.NewPaymentFailedTool(resolver, reconciler, cfg.Parking.ExitStation, logger),
		tools.NewPlateMismatchTool(resolver, reconciler, cfg.Parking.ExitStation, logger),
		tools.NewCannotPayTool(),
	)

	chatClient := llm.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	history := redisstore.NewConversationStore(redisClient, cfg.HistoryTTL())
	orchestrator := agent.NewOrchestrator(chatClient, registry, history, "", logger)

	transcriber := transcribe.NewClient(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.OpenAI.WhisperModel, logger)
	documents, err := document.NewLocalStore(cfg.Uploads.Dir)
	if err != nil {
		redisClient.Close()
		sqlDB.Close()
		return nil, err
	}

	authSvc := auth.NewService(cfg.Auth.Secret, cfg.Auth.OperatorID, cfg.Auth.OperatorHash, cfg.TokenTTL())

	resolveHandler := handlers.NewResolveHandler(orchestrator, transcriber, documents, logger)
	chatSocket := handlers.NewChatSocketHandler(orchestrator, logger)

	routes := httpserver.Routes{
		Resolve:           middleware.Auth(authSvc, resolveHandler.Handle),
		CloseConversation: middleware.Auth(authSvc, handlers.NewCloseConversationHandler(orchestrator, logger)),
		ChatSocket:        middleware.Auth(authSvc, chatSocket.Handle),
		Token:             handlers.NewTokenHandler(authSvc, logger),
		Health:            handlers.NewHealthHandler(),
	}

	stopTracing := telemetry.Setup("parking-assistant", logger)
	router := otelhttp.NewHandler(httpserver.NewRouter(routes), "parking-assistant")
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		stopTracing: stopTracing,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.stopTracing != nil {
		if err := a.stopTracing(context.Background()); err != nil {
			a.logger.Warn("failed to stop tracing", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
