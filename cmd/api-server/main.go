package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gamehub/internal/catalog"
	"gamehub/internal/session"
	"gamehub/internal/upstream"
	"gamehub/internal/web"
	"gamehub/pkg/logging"
	"gamehub/pkg/utils"
)

func main() {
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

	client := upstream.NewClient(cfg.Catalog.APIURL, cfg.Catalog.HTTPTimeout, logger)
	cat := web.NewCatalog(catalog.NewStore(client, catalog.Options{
		Step:     cfg.Catalog.Step,
		PageSize: cfg.Catalog.PageSize,
		MaxPages: cfg.Catalog.MaxPages,
	}, logger))
	hub := session.NewHub()

	handler := web.NewHandler(cat, client, hub, cfg.Catalog.Debounce, logger)
	httpSrv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           web.NewEngine(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// Sessions opened before this finishes wait on the same fetch.
	g.Go(func() error {
		n := cat.Load(gctx)
		logger.Info("shared catalog loaded", zap.Int("games", n))
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", zap.Int("sessions", hub.Count()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
