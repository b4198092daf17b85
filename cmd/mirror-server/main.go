package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gamehub/internal/mirror"
	"gamehub/internal/web"
	"gamehub/pkg/logging"
)

func main() {
	var (
		dataPath = flag.String("data", "data/mirror.json", "mirror file written by export-mirror")
		addr     = flag.String("addr", ":9000", "listen address")
		key      = flag.String("key", "", "API key required as ?key= (empty disables the check)")
		level    = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	logger, err := logging.New(*level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	records, err := mirror.Load(*dataPath)
	if err != nil {
		logger.Fatal("cannot load mirror", zap.String("path", *dataPath), zap.Error(err))
	}
	m := mirror.New(records, *key, logger)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), web.RequestLogger(logger))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "records": m.Len()})
	})
	m.RegisterRoutes(r.Group("/api/games"))

	srv := &http.Server{Addr: *addr, Handler: r}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("mirror-server listening", zap.String("addr", *addr), zap.String("data", *dataPath))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("mirror-server failed", zap.Error(err))
	}
}
