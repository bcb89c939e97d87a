package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tycoon/internal/config"
	"tycoon/internal/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	balance, err := config.LoadBalance(cfg.BalanceFile)
	if err != nil {
		logger.Error("balance load failed", "err", err)
		os.Exit(1)
	}
	if _, ok := balance.Industries[cfg.Industry]; !ok {
		logger.Error("unknown industry", "industry", cfg.Industry)
		os.Exit(1)
	}

	saves, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Error("save store open failed", "err", err)
		os.Exit(1)
	}
	defer saves.Close()

	w := &worker{cfg: cfg, log: logger, saves: saves, balance: balance, now: time.Now}

	if cfg.RunOnce {
		if _, err := w.runBatch(ctx, 0); err != nil {
			logger.Error("batch failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.RunEvery)
	defer ticker.Stop()

	logger.Info("worker started", "run_every", cfg.RunEvery.String(), "games", cfg.Games, "concurrency", cfg.Concurrency)
	batch := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if _, err := w.runBatch(ctx, batch); err != nil {
				logger.Error("batch failed", "batch", batch, "err", err)
			}
			batch++
		}
	}
}
