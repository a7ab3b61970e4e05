package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/upro/upro-api/internal/config"
	"github.com/upro/upro-api/internal/domain/account"
	"github.com/upro/upro-api/internal/domain/catalog"
	"github.com/upro/upro-api/internal/domain/profile"
	"github.com/upro/upro-api/internal/domain/store"
	"github.com/upro/upro-api/internal/jobs"
	"github.com/upro/upro-api/internal/live"
	"github.com/upro/upro-api/internal/pkg/database"
	"github.com/upro/upro-api/internal/pkg/events"
	"github.com/upro/upro-api/internal/pkg/imaging"
	"github.com/upro/upro-api/internal/pkg/jwt"
	"github.com/upro/upro-api/internal/pkg/logger"
	"github.com/upro/upro-api/internal/pkg/password"
	"github.com/upro/upro-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env, LogFile: cfg.LogFile}); err != nil {
		log.Fatal().Err(err).Msg("Failed to init logger")
	}

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting U-Pro API")

	if err := password.SetCost(cfg.BcryptCost); err != nil {
		log.Fatal().Err(err).Msg("Invalid BCRYPT_COST")
	}

	db, err := database.NewPostgres(database.PostgresConfig{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}

	redisClient, err := database.NewRedis(database.RedisConfig{
		URL:        cfg.RedisURL,
		PoolSize:   cfg.RedisPoolSize,
		ClientName: "upro-api",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	objectStorage := newObjectStorage(cfg)
	publisher := newPublisher(cfg)
	defer publisher.Close()

	// ---------- Live updates ----------
	hub := live.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Services ----------
	accountService := account.NewService(account.NewRepository(db), jwtService, cfg.AdminEmails)
	profileService := profile.NewService(profile.NewRepository(db))
	catalogService := catalog.NewService(
		catalog.NewRepository(db),
		catalog.NewRedisCache(redisClient, cfg.CatalogCacheTTL),
		objectStorage,
		imaging.NewProcessor(imaging.DefaultConfig()),
		cfg.MaxImageSize,
	)

	storeCfg := store.DefaultConfig()
	storeCfg.MaxAttempts = cfg.PurchaseMaxAttempts
	storeService := store.NewService(
		store.NewRepository(db),
		catalogService,
		publisher,
		live.NewNotifier(hub, profileService),
		storeCfg,
	)

	// ---------- Jobs ----------
	jobsCtx, stopJobs := context.WithCancel(context.Background())
	defer stopJobs()
	scheduler := jobs.NewScheduler(catalogService, cfg.CatalogRefreshSpec)
	if err := scheduler.Start(jobsCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer scheduler.Stop()

	// ---------- Router ----------
	r := newRouter(handlers{
		account: account.NewHandler(accountService),
		profile: profile.NewHandler(profileService),
		catalog: catalog.NewHandler(catalogService),
		store:   store.NewHandler(storeService),
		live:    live.NewHandler(hub, jwtService, cfg.AllowedOrigins),
	}, jwtService, cfg.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// newObjectStorage returns nil when no S3 endpoint is configured
func newObjectStorage(cfg *config.Config) storage.Storage {
	if cfg.S3Endpoint == "" || cfg.S3Bucket == "" {
		log.Warn().Msg("S3 storage not configured, catalog image uploads disabled")
		return nil
	}

	s3, err := storage.NewS3Storage(context.Background(), storage.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init S3 storage")
	}
	return s3
}

func newPublisher(cfg *config.Config) events.Publisher {
	if cfg.NatsURL == "" {
		log.Warn().Msg("NATS_URL not set, store events are not published")
		return events.Nop{}
	}

	publisher, err := events.NewNATSPublisher(events.Config{
		URL:            cfg.NatsURL,
		ConnectionName: cfg.NatsConnectionName,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	return publisher
}
