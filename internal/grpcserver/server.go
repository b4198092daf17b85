package grpcserver

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"gamehub/internal/catalog"
	"gamehub/internal/session"
	"gamehub/pkg/logging"
	"gamehub/pkg/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Source is the shared catalog the service reads from.
type Source interface {
	Ready() bool
	Fork() *catalog.Store
}

type Server struct {
	Catalog Source
	Details session.DetailFetcher
}

func NewServer(cat Source, details session.DetailFetcher) *Server {
	return &Server{Catalog: cat, Details: details}
}

// Register installs the catalog service and a health service that reports
// SERVING for it.
func Register(s *grpc.Server, srv CatalogServiceServer) *health.Server {
	s.RegisterService(&ServiceDesc, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

func (s *Server) ListGames(ctx context.Context, req *ListGamesRequest) (*ListGamesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	if req.Offset < 0 || req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "offset and limit must be >= 0")
	}
	if !s.Catalog.Ready() {
		return nil, status.Error(codes.Unavailable, "catalog not loaded")
	}

	limit := int(req.Limit)
	if limit == 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)
	offset := int(req.Offset)

	store := s.Catalog.Fork()
	items := store.Window(offset, limit)
	total := store.Len()

	if q := strings.TrimSpace(req.Query); q != "" {
		res := store.Search(q)
		total = len(res.Games)
		items = page(res.Games, offset, limit)
	}

	return &ListGamesResponse{
		Total:  int32(total),
		Offset: int32(offset),
		Limit:  int32(limit),
		Items:  items,
	}, nil
}

func (s *Server) GetGame(ctx context.Context, req *GetGameRequest) (*GetGameResponse, error) {
	if req == nil || strings.TrimSpace(req.Slug) == "" {
		return nil, status.Error(codes.InvalidArgument, "slug required")
	}
	slug := strings.TrimSpace(req.Slug)

	g, found := s.Catalog.Fork().FindBySlug(slug)
	key := slug
	if found && g.ID != "" {
		key = g.ID
	}

	if s.Details != nil {
		if d := s.Details.FetchDetail(ctx, key); d != nil {
			return &GetGameResponse{Game: d}, nil
		}
	}
	if !found {
		return nil, status.Error(codes.NotFound, "not found")
	}
	d := models.DetailFromGame(g)
	return &GetGameResponse{Game: &d, Partial: true}, nil
}

func page(games []models.Game, offset, limit int) []models.Game {
	if offset >= len(games) {
		return []models.Game{}
	}
	end := min(offset+limit, len(games))
	return games[offset:end:end]
}

// UnaryLogger logs each call with its status code.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	logger = logging.OrNop(logger).Named("grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Stringer("code", code),
			zap.Duration("latency", time.Since(start)),
		}
		switch code {
		case codes.OK, codes.NotFound, codes.InvalidArgument:
			logger.Info("rpc completed", fields...)
		default:
			logger.Warn("rpc completed", append(fields, zap.Error(err))...)
		}
		return resp, err
	}
}
