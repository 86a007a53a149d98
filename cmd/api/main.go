package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopify-workspace-connector/internal/application"
	"shopify-workspace-connector/internal/application/webhook_handlers"
	"shopify-workspace-connector/internal/config"
	"shopify-workspace-connector/internal/infrastructure/api"
	"shopify-workspace-connector/internal/infrastructure/encryption"
	"shopify-workspace-connector/internal/infrastructure/lock"
	"shopify-workspace-connector/internal/infrastructure/metrics"
	"shopify-workspace-connector/internal/infrastructure/queue"
	"shopify-workspace-connector/internal/infrastructure/repository"
	"shopify-workspace-connector/internal/infrastructure/repository/memory"
	shopifyinfra "shopify-workspace-connector/internal/infrastructure/shopify"
	"shopify-workspace-connector/internal/ports"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const shutdownTimeout = 10 * time.Second

// stores groups the persistence adapters selected by STORE_DRIVER
type stores struct {
	states  ports.OAuthStateRepository
	tenants ports.TenantRepository
	jobs    ports.SyncJobRepository
	members ports.MembershipOracle
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("No .env file found, using the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx := context.Background()

	encryptionService, err := encryption.NewService(cfg.Shopify.EncryptionKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}

	st, closeStore := openStores(ctx, cfg, logger)
	defer closeStore()

	var locker ports.Locker = lock.NewMemoryLocker()
	if cfg.Redis.Addr != "" {
		redisClient, err := lock.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, logger)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, sync admission lock is process-local")
	}

	var publisher ports.SyncJobPublisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		publisher = queue.NewRabbitPublisher(cfg.RabbitMQURL, logger)
	} else {
		logger.Warn().Msg("RABBITMQ_URL not set, sync jobs are recorded without being announced")
	}

	m := metrics.New()

	shopifyClient := shopifyinfra.NewOAuthClient(
		cfg.Shopify.APIKey,
		cfg.Shopify.APISecret,
		logger,
		shopifyinfra.WithHTTPClient(shopifyinfra.NewHTTPClient()),
		shopifyinfra.WithObserver(m),
	)
	verifier := shopifyinfra.NewVerifier(cfg.Shopify.APISecret)
	tokenManager := shopifyinfra.NewTokenManager(encryptionService, shopifyClient, logger)

	oauthService := application.NewOAuthService(
		st.states,
		st.tenants,
		st.members,
		shopifyClient,
		verifier,
		encryptionService,
		m,
		cfg.AppURL,
		logger,
	)
	tenantService := application.NewTenantService(st.tenants, st.members, tokenManager, logger)
	syncService := application.NewSyncService(st.tenants, st.jobs, st.members, locker, publisher, m, logger)

	webhookDispatcher := application.NewWebhookDispatcher(m, logger)
	webhookDispatcher.RegisterHandler(webhook_handlers.NewAppUninstalledHandler(logger, st.tenants))
	webhookDispatcher.RegisterHandler(webhook_handlers.NewResourceSyncHandler(logger, st.tenants, syncService))

	router := api.NewRouter(api.RouterConfig{
		Shopify:     api.NewShopifyHandler(oauthService, tenantService, syncService, webhookDispatcher, verifier, logger),
		Metrics:     m.Handler(),
		CORSOrigins: cfg.CORSAllowOrigins,
		SwaggerFile: "./docs/swagger.json",
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("store", cfg.Store.Driver).
			Str("callback", oauthService.RedirectURI()).
			Msg("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exited")
}

// openStores connects the configured persistence and returns a cleanup func
func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (stores, func()) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		logger.Warn().Msg("Using in-memory store, data is lost on restart")
		return stores{
			states:  memory.NewOAuthStateRepository(),
			tenants: memory.NewTenantRepository(),
			jobs:    memory.NewSyncJobRepository(),
			members: memory.NewMembershipOracle(),
		}, func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Store.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping MongoDB")
	}

	db := client.Database(cfg.Store.MongoDatabase)
	if err := repository.EnsureIndexes(connectCtx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure MongoDB indexes")
	}

	st := stores{
		states:  repository.NewMongoOAuthStateRepository(db),
		tenants: repository.NewMongoTenantRepository(db),
		jobs:    repository.NewMongoSyncJobRepository(db),
		members: repository.NewMongoMemberRepository(db),
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Failed to disconnect from MongoDB")
		}
	}
	return st, closeFn
}
