package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartfix/config"
	"smartfix/cron"
	"smartfix/database"
	"smartfix/database/repository"
	"smartfix/handlers"
	"smartfix/middleware"
	"smartfix/routes"
	"smartfix/services/lifecycle"
	"smartfix/services/matching"
	"smartfix/services/media"
	"smartfix/services/notification"
	"smartfix/services/rating"
	"smartfix/services/request"
	"smartfix/services/review"
	"smartfix/services/tasks"
	"smartfix/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	if cfg.JWTSecret == "" {
		logger.Fatal("main: JWT_SECRET must be set")
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	client, err := database.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
	}
	db := client.Database(cfg.DatabaseName)

	// repositories.
	requestRepo, err := repository.NewMongoRequestRepo(db)
	if err != nil {
		logger.Fatal("main: request repository", zap.Error(err))
	}
	providerRepo, err := repository.NewMongoProviderRepo(db)
	if err != nil {
		logger.Fatal("main: provider repository", zap.Error(err))
	}
	reviewRepo, err := repository.NewMongoReviewRepo(db)
	if err != nil {
		logger.Fatal("main: review repository", zap.Error(err))
	}
	userRepo, err := repository.NewMongoUserRepo(db)
	if err != nil {
		logger.Fatal("main: user repository", zap.Error(err))
	}

	// caches are optional; without them matching and auth hit Mongo directly.
	var matchCache matching.Cache
	cacheClient, err := utils.NewCacheClient(ctx, cfg)
	if err != nil {
		logger.Warn("main: match cache disabled", zap.Error(err))
	} else {
		matchCache = matching.NewRedisCache(cacheClient)
	}
	var authCache *redis.Client
	if authCache, err = utils.NewAuthCacheClient(ctx, cfg); err != nil {
		logger.Warn("main: auth cache disabled", zap.Error(err))
		authCache = nil
	}

	// integrations.
	var notifier notification.NotificationService = notification.NoopNotificationService{}
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := utils.NewMessagingClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("main: firebase", zap.Error(err))
		}
		if notifier, err = notification.NewDefaultNotificationService(fcm, userRepo, logger); err != nil {
			logger.Fatal("main: notification service", zap.Error(err))
		}
	}

	var mediaSvc media.MediaService
	cld, err := utils.NewCloudinary(cfg)
	if err != nil {
		logger.Fatal("main: cloudinary", zap.Error(err))
	}
	if cld != nil {
		mediaSvc = media.NewCloudinaryMediaService(cld, "smartfix", logger)
	}

	queue := asynq.NewClient(cron.RedisOpt(cfg))
	defer queue.Close()
	worker := cron.NewReminderWorker(cron.RedisOpt(cfg), notifier, logger)
	if err := worker.Start(); err != nil {
		logger.Fatal("main: reminder worker", zap.Error(err))
	}
	defer worker.Shutdown()

	// services.
	aggregator := rating.NewAggregator(reviewRepo, providerRepo, cfg.RatingMaxRetries, logger)
	engine := matching.NewEngine(providerRepo, matchCache, matching.Defaults{
		MaxDistanceKm: cfg.MatchMaxDistanceKm,
		MinRating:     cfg.MatchMinRating,
		MaxProviders:  cfg.MatchMaxProviders,
		CacheTTL:      cfg.MatchCacheTTL,
	}, logger)

	requestService := &request.DefaultRequestService{
		Requests:  requestRepo,
		Providers: providerRepo,
		Users:     userRepo,
		Lifecycle: lifecycle.NewMachine(requestRepo, logger),
		Matcher:   engine,
		Ratings:   aggregator,
		Notifier:  notifier,
		Reminders: tasks.NewReminderScheduler(queue, cfg.ReminderLeadTime, logger),
		Media:     mediaSvc,
		Logger:    logger,
	}
	reviewService := &review.DefaultReviewService{
		Reviews:   reviewRepo,
		Requests:  requestRepo,
		Providers: providerRepo,
		Ratings:   aggregator,
		Logger:    logger,
	}

	handlerBundle := &handlers.HandlerBundle{
		UserRepo:  userRepo,
		AuthCache: authCache,
		JWTSecret: []byte(cfg.JWTSecret),
		Requests:  handlers.NewRequestHandler(requestService, logger),
		Reviews:   handlers.NewReviewHandler(reviewService, logger),
		Users:     handlers.NewUserHandler(userRepo, logger),
	}

	router := gin.New()
	router.Use(utils.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin, logger))
	routes.RegisterRoutes(router, handlerBundle, logger)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		logger.Error("main: mongo disconnect", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}
