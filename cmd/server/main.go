package main

import (
	"context"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"go.uber.org/zap"

	"studybud/internal/server"
	"studybud/internal/storage"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("zap.NewDevelopment: %v", err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()
	sugar.Info("Application is starting")

	cfg := server.EnvConfig{}
	if err := env.Parse(&cfg); err != nil {
		sugar.Fatalf("Cannot parse env config: %v", err)
	}

	dbCfg := storage.Config{}
	if err := env.Parse(&dbCfg); err != nil {
		sugar.Fatalf("Cannot parse database config: %v", err)
	}

	store, err := storage.New(context.Background(), sugar, dbCfg, storage.ConnectionTimeout(30*time.Second))
	if err != nil {
		sugar.Fatalf("Cannot create Store instance: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		sugar.Fatalf("Cannot apply database schema: %v", err)
	}

	if cfg.SessionKey == "" {
		sugar.Warn("SESSION_KEY is not set, sessions will not survive a restart")
	}

	serverOpts := []server.Option{
		server.WithEnvConfig(cfg),
		server.ReadTimeout(5 * time.Second),
		server.WriteTimeout(10 * time.Second),
		server.TimeoutHandler(8*time.Second, "Request timed out"),
		server.RegisterAfterShutdown(store.Close),
	}

	srv, err := server.NewServer(sugar, store, serverOpts...)
	if err != nil {
		sugar.Fatalf("Cannot create Server instance: %v", err)
	}

	if err := srv.Start(); err != nil {
		sugar.Fatalf("Cannot start http srv: %v", err)
	}
}
