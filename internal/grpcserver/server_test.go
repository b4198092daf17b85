package grpcserver

import (
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"gamehub/internal/catalog"
	"gamehub/pkg/models"
)

type staticLoader []models.Game

func (l staticLoader) FetchAllPages(context.Context, int, int) []models.Game { return l }

type fixedSource struct {
	store *catalog.Store
}

func (f fixedSource) Ready() bool          { return f.store.Loaded() }
func (f fixedSource) Fork() *catalog.Store { return f.store.Fork() }

type fakeDetails map[string]*models.GameDetail

func (f fakeDetails) FetchDetail(_ context.Context, key string) *models.GameDetail { return f[key] }

func makeGames(n int) []models.Game {
	out := make([]models.Game, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Game{
			ID:     fmt.Sprint(i),
			Slug:   fmt.Sprintf("game-%d", i),
			Title:  fmt.Sprintf("Game %d", i),
			Genres: []string{"Puzzle"},
		})
	}
	return out
}

func dial(t *testing.T, n int, load bool, details fakeDetails) *grpc.ClientConn {
	t.Helper()
	store := catalog.NewStore(staticLoader(makeGames(n)), catalog.Options{}, nil)
	if load {
		store.Load(context.Background())
	}

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer(grpc.UnaryInterceptor(UnaryLogger(nil)))
	Register(s, NewServer(fixedSource{store: store}, details))
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestListGames(t *testing.T) {
	c := NewClient(dial(t, 45, true, nil))
	ctx := context.Background()

	resp, err := c.ListGames(ctx, &ListGamesRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 45, resp.Total)
	assert.EqualValues(t, 20, resp.Limit)
	assert.Len(t, resp.Items, 20)

	resp, err = c.ListGames(ctx, &ListGamesRequest{Offset: 36, Limit: 500})
	require.NoError(t, err)
	assert.EqualValues(t, 100, resp.Limit)
	require.Len(t, resp.Items, 9)
	assert.Equal(t, "game-37", resp.Items[0].Slug)

	resp, err = c.ListGames(ctx, &ListGamesRequest{Query: "game 4", Offset: 1, Limit: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 7, resp.Total) // 4, 40..45
	require.Len(t, resp.Items, 3)
	assert.Equal(t, "game-40", resp.Items[0].Slug)

	_, err = c.ListGames(ctx, &ListGamesRequest{Offset: -1})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListGamesBeforeLoad(t *testing.T) {
	c := NewClient(dial(t, 5, false, nil))
	_, err := c.ListGames(context.Background(), &ListGamesRequest{})
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestGetGame(t *testing.T) {
	details := fakeDetails{"2": {Game: models.Game{ID: "2", Slug: "game-2", Title: "Game 2"}, Description: "Rich"}}
	c := NewClient(dial(t, 5, true, details))
	ctx := context.Background()

	resp, err := c.GetGame(ctx, &GetGameRequest{Slug: "game-2"})
	require.NoError(t, err)
	assert.False(t, resp.Partial)
	assert.Equal(t, "Rich", resp.Game.Description)

	resp, err = c.GetGame(ctx, &GetGameRequest{Slug: " game-3 "})
	require.NoError(t, err)
	assert.True(t, resp.Partial)
	assert.Equal(t, "Game 3", resp.Game.Title)

	_, err = c.GetGame(ctx, &GetGameRequest{Slug: "nope"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = c.GetGame(ctx, &GetGameRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealth(t *testing.T) {
	conn := dial(t, 1, true, nil)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
