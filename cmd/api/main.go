package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hydrochain/hydrochain-api/internal/api"
	"github.com/hydrochain/hydrochain-api/internal/core/ports"
	"github.com/hydrochain/hydrochain-api/internal/infrastructure/audit"
	mongodb "github.com/hydrochain/hydrochain-api/internal/infrastructure/db/mongo"
	redisdb "github.com/hydrochain/hydrochain-api/internal/infrastructure/db/redis"
	"github.com/hydrochain/hydrochain-api/internal/infrastructure/settlement"
	"github.com/hydrochain/hydrochain-api/internal/pkg/config"
	"github.com/hydrochain/hydrochain-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	// --- Settlement providers ---
	chainCfg := settlement.Config{
		RPCURL:          cfg.Chain.RPCURL,
		SigningKey:      cfg.Chain.SigningKey,
		ContractAddress: cfg.Chain.ContractAddress,
		Timeout:         cfg.Chain.CallTimeout,
	}
	var onchain ports.SettlementProvider
	if chainCfg.Configured() {
		onchain = settlement.NewClient(chainCfg)
		log.Info().Str("rpc_url", chainCfg.RPCURL).Msg("on-chain settlement enabled")
	} else {
		log.Warn().Msg("chain not configured, all settlements will be simulated")
	}

	// --- Audit recorder ---
	recorder := audit.NewRecorder(0, mongodb.NewTransactionRepository(db), log)
	recorder.Start(ctx)

	e := api.NewRouter(api.Deps{
		Mongo:      db,
		Redis:      rdb,
		JWTSecret:  cfg.JWTSecret,
		Settlement: onchain,
		Fallback:   settlement.NewSimulator(),
		Audit:      recorder,
		SettleWait: cfg.Chain.CallTimeout,
		Logger:     log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting HTTP server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewCreditRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongodb.NewTransactionRepository(db).EnsureIndexes(ctx)
}
