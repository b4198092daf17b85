package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"gamehub/internal/catalog"
	"gamehub/internal/grpcserver"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n := cat.Load(ctx)
	logger.Info("catalog loaded", zap.Int("games", n))

	listener, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Fatal("grpc listen failed", zap.String("addr", cfg.Server.GRPCAddr), zap.Error(err))
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(grpcserver.UnaryLogger(logger)))
	grpcserver.Register(srv, grpcserver.NewServer(cat, client))

	go func() {
		<-ctx.Done()
		logger.Info("shutting down gRPC server")
		srv.GracefulStop()
	}()

	logger.Info("gRPC server listening", zap.String("addr", cfg.Server.GRPCAddr))
	if err := srv.Serve(listener); err != nil {
		logger.Fatal("grpc server stopped", zap.Error(err))
	}
}
