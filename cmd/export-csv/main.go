package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"gamehub/internal/export"
	"gamehub/internal/upstream"
	"gamehub/pkg/logging"
	"gamehub/pkg/utils"
)

func main() {
	outPath := flag.String("out", "data/games.csv", "output CSV path")
	flag.Parse()

	utils.LoadDotEnv()
	cfg, cfgErr := utils.Load()

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfgErr != nil {
		logger.Fatal("configuration invalid", zap.Error(cfgErr))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := upstream.NewClient(cfg.Catalog.APIURL, cfg.Catalog.HTTPTimeout, logger)
	games := client.FetchAllPages(ctx, cfg.Catalog.PageSize, cfg.Catalog.MaxPages)

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		logger.Fatal("mkdir failed", zap.Error(err))
	}
	f, err := os.Create(*outPath)
	if err != nil {
		logger.Fatal("create failed", zap.String("out", *outPath), zap.Error(err))
	}
	defer f.Close()

	if err := export.WriteCSV(f, games); err != nil {
		logger.Fatal("export games failed", zap.Error(err))
	}
	logger.Info("exported games", zap.Int("games", len(games)), zap.String("out", *outPath))
}
