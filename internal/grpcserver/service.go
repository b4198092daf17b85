package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"gamehub/pkg/models"
)

const (
	ServiceName     = "gamehub.CatalogService"
	ListGamesMethod = "/gamehub.CatalogService/ListGames"
	GetGameMethod   = "/gamehub.CatalogService/GetGame"
)

type ListGamesRequest struct {
	Query  string `json:"query,omitempty"`
	Offset int32  `json:"offset"`
	Limit  int32  `json:"limit"`
}

type ListGamesResponse struct {
	Total  int32         `json:"total"`
	Offset int32         `json:"offset"`
	Limit  int32         `json:"limit"`
	Items  []models.Game `json:"items"`
}

type GetGameRequest struct {
	Slug string `json:"slug"`
}

type GetGameResponse struct {
	Game    *models.GameDetail `json:"game"`
	Partial bool               `json:"partial"`
}

type CatalogServiceServer interface {
	ListGames(context.Context, *ListGamesRequest) (*ListGamesResponse, error)
	GetGame(context.Context, *GetGameRequest) (*GetGameResponse, error)
}

// ServiceDesc is registered by hand; the messages are JSON, not protobuf.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListGames", Handler: listGamesHandler},
		{MethodName: "GetGame", Handler: getGameHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gamehub/catalog",
}

func listGamesHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListGamesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).ListGames(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ListGamesMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).ListGames(ctx, req.(*ListGamesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getGameHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetGameRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServiceServer).GetGame(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetGameMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServiceServer).GetGame(ctx, req.(*GetGameRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls the catalog service with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) ListGames(ctx context.Context, in *ListGamesRequest, opts ...grpc.CallOption) (*ListGamesResponse, error) {
	out := new(ListGamesResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, ListGamesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetGame(ctx context.Context, in *GetGameRequest, opts ...grpc.CallOption) (*GetGameResponse, error) {
	out := new(GetGameResponse)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, GetGameMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
