package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/userhub/identity-api/internal/api"
	"github.com/userhub/identity-api/internal/core/ports"
	"github.com/userhub/identity-api/internal/core/service"
	"github.com/userhub/identity-api/internal/infrastructure/db/memory"
	mongostore "github.com/userhub/identity-api/internal/infrastructure/db/mongo"
	redisstore "github.com/userhub/identity-api/internal/infrastructure/db/redis"
	"github.com/userhub/identity-api/internal/infrastructure/queue"
	"github.com/userhub/identity-api/internal/pkg/config"
	"github.com/userhub/identity-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		userRepo  ports.UserRepository
		auditRepo ports.AuditRepository
		mongoDB   *mongodriver.Database
	)

	switch cfg.Store {
	case "memory":
		log.Warn().Msg("using in-memory store, data will not survive a restart")
		userRepo = memory.NewUserRepository()
		auditRepo = memory.NewAuditRepository()
	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connection failed")
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()

		repo := mongostore.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("index bootstrap failed")
		}
		userRepo = repo
		auditRepo = mongostore.NewAuditRepository(db)
		mongoDB = db
	}

	var (
		redisClient *goredis.Client
		statsCache  ports.StatsCache
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			// Cache only; the service runs without it.
			log.Warn().Err(err).Msg("redis unavailable, stats cache disabled")
		} else {
			defer rdb.Close()
			redisClient = rdb
			statsCache = redisstore.NewStatsCache(rdb)
		}
	}

	dispatcher := queue.NewDispatcher(0, auditRepo, log)
	dispatcher.Start(ctx)

	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(userRepo, hasher, tokens, dispatcher)
	userService := service.NewUserService(userRepo, hasher, dispatcher, statsCache)

	if err := authService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatal().Err(err).Msg("admin seed failed")
	}

	e := api.NewRouter(api.RouterDeps{
		Auth:   authService,
		Users:  userService,
		Tokens: tokens,
		Mongo:  mongoDB,
		Redis:  redisClient,
		Log:    log,
		Env:    cfg.Env,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("server stopped")
}
