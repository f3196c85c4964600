package main

import (
	"flag"
	"log"
	"os"

	"FinLiquidity/internal/di"
	"FinLiquidity/pkg/config"
	"FinLiquidity/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// .env is optional; real environment variables win
	_ = godotenv.Load()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	l, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	l.Info("config loaded",
		logger.String("env", cfg.Environment),
		logger.String("source", cfg.Source.Type),
		logger.Int("catalog", len(cfg.Catalog)),
	)

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(cfg, l)
	if err != nil {
		l.Error("app initialization failed", logger.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		l.Error("app error", logger.Error(err))
		cleanup()
		os.Exit(1)
	}
}
