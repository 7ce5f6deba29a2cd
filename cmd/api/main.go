package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/neuradash/account-system/internal/api"
	"github.com/neuradash/account-system/internal/core/bus"
	"github.com/neuradash/account-system/internal/core/ports"
	"github.com/neuradash/account-system/internal/core/service"
	"github.com/neuradash/account-system/internal/infrastructure/broadcast"
	"github.com/neuradash/account-system/internal/infrastructure/config"
	appmongo "github.com/neuradash/account-system/internal/infrastructure/db/mongo"
	"github.com/neuradash/account-system/internal/infrastructure/gateway"
	"github.com/neuradash/account-system/internal/infrastructure/queue"
	"github.com/neuradash/account-system/internal/infrastructure/store"
	"github.com/neuradash/account-system/pkg/logger"

	"github.com/neuradash/account-system/internal/api/metrics"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "account-system",
		Pretty:  cfg.Env == "development",
	})

	// Key-value store: Redis when reachable, in-memory otherwise. The
	// service stays usable without Redis, it just loses durability and
	// cross-instance sync.
	var (
		kv          ports.Store
		broadcaster ports.SyncBroadcaster
	)
	redisClient, err := store.Connect(ctx, store.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-memory store")
		metrics.StoreFallbacksTotal.Inc()
		kv = store.NewMemoryStore(log)
		broadcaster = broadcast.LocalBroadcaster{}
	} else {
		defer func() { _ = redisClient.Close() }()
		kv = store.NewRedisStore(redisClient, cfg.StoragePrefix, log)
		broadcaster = broadcast.NewRedisBroadcaster(redisClient, cfg.Redis.Channel, log)
	}

	// Activity archive: optional. Without Mongo the capped in-store log
	// still works; only long-term archival is lost.
	var (
		mongoDB  *mongodrv.Database
		archiver ports.ActivityArchiver
	)
	mongoClient, db, err := appmongo.Connect(ctx, appmongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Warn().Err(err).Msg("mongo unavailable, activity archival disabled")
	} else {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
		mongoDB = db
		if err := appmongo.EnsureIndexes(ctx, db); err != nil {
			log.Warn().Err(err).Msg("activity index creation failed")
		}
		dispatcher := queue.NewDispatcher(0, appmongo.NewActivityRepository(db), log)
		dispatcher.Start(ctx)
		archiver = dispatcher
	}

	events := bus.New(log)
	manager := service.NewAccountManager(kv, events, broadcaster, archiver, cfg.SyncInterval, log)
	manager.Start(ctx)

	gw := gateway.NewSimulatedGateway(cfg.GatewayDelay, log)

	e := api.NewRouter(api.RouterDeps{
		Service:    manager,
		Gateway:    gw,
		Store:      kv,
		Mongo:      mongoDB,
		JWTSecret:  cfg.JWTSecret,
		SessionTTL: cfg.SessionTTL,
		Log:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("instance", manager.InstanceID()).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
