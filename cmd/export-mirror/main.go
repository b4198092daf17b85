package main

import (
	"context"
	"flag"
	"time"

	"go.uber.org/zap"

	"gamehub/internal/export"
	"gamehub/internal/mirror"
	"gamehub/internal/session"
	"gamehub/internal/upstream"
	"gamehub/pkg/logging"
	"gamehub/pkg/utils"
)

func main() {
	var (
		outPath     = flag.String("out", "data/mirror.json", "output JSON path")
		limit       = flag.Int("limit", 200, "how many games to export (0 for all)")
		withDetails = flag.Bool("details", true, "fetch the full detail of every game")
		parallel    = flag.Int("parallel", 4, "concurrent detail requests")
	)
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := upstream.NewClient(cfg.Catalog.APIURL, cfg.Catalog.HTTPTimeout, logger)
	games := client.FetchAllPages(ctx, cfg.Catalog.PageSize, cfg.Catalog.MaxPages)
	if *limit > 0 && len(games) > *limit {
		games = games[:*limit]
	}

	var details session.DetailFetcher
	if *withDetails {
		details = client
	}
	records, err := export.Records(ctx, games, details, *parallel)
	if err != nil {
		logger.Fatal("export failed", zap.Error(err))
	}

	if err := mirror.Write(*outPath, records); err != nil {
		logger.Fatal("write failed", zap.String("out", *outPath), zap.Error(err))
	}
	logger.Info("exported mirror", zap.Int("records", len(records)), zap.String("out", *outPath))
}
