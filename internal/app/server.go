package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"service-admin/internal/audit"
	"service-admin/internal/config"
	"service-admin/internal/db"
	authHandler "service-admin/internal/handlers/auth"
	catalogHandler "service-admin/internal/handlers/catalog"
	feedHandler "service-admin/internal/handlers/feed"
	planHandler "service-admin/internal/handlers/plan"
	subscriptionHandler "service-admin/internal/handlers/subscription"
	"service-admin/internal/middleware"
	"service-admin/internal/pkg/session"
	"service-admin/internal/pkg/token"
	"service-admin/internal/repository/postgres"
	authUsecase "service-admin/internal/service/auth"
	catalogUsecase "service-admin/internal/service/catalog"
	"service-admin/internal/service/lifecycle"
	"service-admin/internal/service/planadmin"
	"service-admin/internal/websocket"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	return &Server{cfg: config.Load(), engine: gin.New()}
}

func (s *Server) Start(ctx context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	logger.Info("connected to PostgreSQL")

	// ----- Redis -----
	redisClient, err := db.ConnectRedis()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	// ----- Token & Session -----
	tokenManager, err := token.NewManager(s.cfg.JWTSecret, s.cfg.JWTIssuer, s.cfg.JWTTTL)
	if err != nil {
		return fmt.Errorf("failed to build token manager: %w", err)
	}
	sessionStore := session.NewStore(redisClient, s.cfg.SessionTTL)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	logRepo := postgres.NewSubscriptionLogRepository(pool)
	serviceRepo := postgres.NewServiceRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	priceRepo := postgres.NewServicePriceRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services -----
	recorder := audit.NewRecorder(logRepo, hub, logger)
	authService := authUsecase.NewService(adminRepo, sessionStore, tokenManager, logger)
	lifecycleService := lifecycle.NewService(
		subscriptionRepo,
		planRepo,
		paymentRepo,
		logRepo,
		dbWrapper,
		recorder,
		logger,
	)
	planService := planadmin.NewService(planRepo, logger)
	catalogService := catalogUsecase.NewService(
		serviceRepo,
		categoryRepo,
		priceRepo,
		dbWrapper,
		logger,
	)

	// ----- Super admin seed -----
	if err := authService.EnsureSuperAdmin(ctx, s.cfg.SuperAdminEmail, s.cfg.SuperAdminPassword); err != nil {
		logger.Error("failed to seed super admin", zap.Error(err))
	}

	// ----- Handlers -----
	handlers := &Handlers{
		Auth:           authHandler.NewHandler(authService, logger),
		Subscription:   subscriptionHandler.NewHandler(lifecycleService),
		Plan:           planHandler.NewHandler(planService),
		Catalog:        catalogHandler.NewHandler(catalogService),
		Feed:           feedHandler.NewHandler(hub, logger),
		AuthMiddleware: middleware.NewAuthMiddleware(authService),
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	SetupRouter(s.engine, handlers)

	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}
