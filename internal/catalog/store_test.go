package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/pkg/models"
)

type staticLoader struct {
	games    []models.Game
	pageSize int
	maxPages int
	calls    int
}

func (l *staticLoader) FetchAllPages(_ context.Context, pageSize, maxPages int) []models.Game {
	l.calls++
	l.pageSize = pageSize
	l.maxPages = maxPages
	return l.games
}

func makeGames(n int) []models.Game {
	out := make([]models.Game, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, models.Game{
			ID:        fmt.Sprint(i),
			Slug:      fmt.Sprintf("game-%d", i),
			Title:     fmt.Sprintf("Game %d", i),
			Platforms: []string{"PC"},
			Genres:    []string{"Action"},
		})
	}
	return out
}

func loadedStore(t *testing.T, games []models.Game) *Store {
	t.Helper()
	s := NewStore(&staticLoader{games: games}, Options{Step: 9}, nil)
	s.Load(context.Background())
	return s
}

func TestLoadUsesOptions(t *testing.T) {
	loader := &staticLoader{games: makeGames(3)}
	s := NewStore(loader, Options{}, nil)

	assert.False(t, s.Loaded())
	assert.Equal(t, 3, s.Load(context.Background()))
	assert.True(t, s.Loaded())
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, DefaultPageSize, loader.pageSize)
	assert.Equal(t, DefaultMaxPages, loader.maxPages)
	assert.Equal(t, 3, s.Snapshot().WindowEnd)
}

func TestGrowWindowScenario(t *testing.T) {
	s := loadedStore(t, makeGames(45))
	assert.Equal(t, 9, s.Snapshot().WindowEnd)
	assert.Len(t, s.Visible(), 9)

	for _, want := range []int{18, 27, 36, 45} {
		g := s.GrowWindow()
		assert.Len(t, g.Added, 9)
		assert.Equal(t, want, g.WindowEnd)
		assert.Equal(t, want, s.Snapshot().WindowEnd)
	}

	last := s.GrowWindow()
	assert.Empty(t, last.Added)
	assert.True(t, last.Exhausted)
	assert.Equal(t, 45, s.Snapshot().WindowEnd)
}

func TestGrowWindowReturnsDeltaOnly(t *testing.T) {
	s := loadedStore(t, makeGames(20))

	g := s.GrowWindow()
	require.Len(t, g.Added, 9)
	assert.Equal(t, "game-10", g.Added[0].Slug)
	assert.False(t, g.Exhausted)

	g = s.GrowWindow()
	require.Len(t, g.Added, 2)
	assert.Equal(t, "game-19", g.Added[0].Slug)
	assert.True(t, g.Exhausted)
}

func TestGrowWindowIdempotentAtSaturation(t *testing.T) {
	s := loadedStore(t, makeGames(5))
	assert.True(t, s.Exhausted())

	for i := 0; i < 3; i++ {
		g := s.GrowWindow()
		assert.Empty(t, g.Added)
		assert.Equal(t, 5, g.WindowEnd)
		assert.True(t, g.Exhausted)
	}
}

func TestGrowWindowDuringSearchIsNoop(t *testing.T) {
	s := loadedStore(t, makeGames(30))
	s.Search("game 1")

	g := s.GrowWindow()
	assert.Empty(t, g.Added)
	assert.Equal(t, 9, s.Snapshot().WindowEnd)
}

func TestEmptyCatalog(t *testing.T) {
	s := loadedStore(t, nil)

	assert.Equal(t, 0, s.Snapshot().WindowEnd)
	assert.Empty(t, s.Visible())
	assert.Empty(t, s.GrowWindow().Added)
	assert.Equal(t, OutcomeNoResults, s.Search("anything").Outcome)
	assert.Equal(t, OutcomeHome, s.Search("").Outcome)
	_, ok := s.FindBySlug("game-1")
	assert.False(t, ok)
	assert.Empty(t, s.Window(0, 10))
}

func TestSearchMatchesFields(t *testing.T) {
	games := []models.Game{
		{ID: "1", Slug: "witcher-3", Title: "The Witcher 3", Genres: []string{"RPG"}, Platforms: []string{"PC"}},
		{ID: "2", Slug: "forza", Title: "Forza Horizon", Genres: []string{"Racing"}, Platforms: []string{"Xbox One"}},
		{ID: "3", Slug: "stardew", Title: "Stardew Valley", Genres: []string{"Simulation"}, Tags: []string{"Farming", "Co-op"}},
		{ID: "4", Slug: "okami", Title: "Ōkami", Genres: []string{"Action"}},
	}

	tests := []struct {
		term string
		want []string
	}{
		{term: "rpg", want: []string{"witcher-3"}},
		{term: "WITCH", want: []string{"witcher-3"}},
		{term: "xbox", want: []string{"forza"}},
		{term: "farm", want: []string{"stardew"}},
		{term: "ōkami", want: []string{"okami"}},
		{term: "ŌKAMI", want: []string{"okami"}},
		{term: "  co-op ", want: []string{"stardew"}},
		{term: "o", want: []string{"forza", "stardew", "okami"}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			s := loadedStore(t, games)
			res := s.Search(tt.term)
			require.Equal(t, OutcomeMatches, res.Outcome)

			var got []string
			for _, g := range res.Games {
				got = append(got, g.Slug)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, res.Games, s.Visible())
			assert.True(t, s.Snapshot().SearchActive)
		})
	}
}

func TestSearchNoResultsIsDistinct(t *testing.T) {
	s := NewStore(&staticLoader{games: makeGames(10)}, Options{}, nil)
	assert.Equal(t, OutcomeNotLoaded, s.Search("zelda").Outcome)

	s.Load(context.Background())
	res := s.Search("zelda")
	assert.Equal(t, OutcomeNoResults, res.Outcome)
	assert.Empty(t, res.Games)
	assert.Equal(t, "zelda", res.Term)
	assert.True(t, s.Snapshot().SearchActive)
	assert.Empty(t, s.Visible())
}

func TestSearchReplacesFilterWholesale(t *testing.T) {
	s := loadedStore(t, makeGames(30))

	first := s.Search("game 1")
	assert.Len(t, first.Games, 11) // 1, 10..19

	second := s.Search("game 2")
	assert.Len(t, second.Games, 11) // 2, 20..29
	assert.Equal(t, second.Games, s.Snapshot().Filtered)
}

func TestClearSearchRestoresWindow(t *testing.T) {
	s := loadedStore(t, makeGames(45))
	s.GrowWindow()
	s.GrowWindow()
	s.Search("game 4")

	res := s.Search("   ")
	assert.Equal(t, OutcomeHome, res.Outcome)
	assert.Len(t, res.Games, 9)

	st := s.Snapshot()
	assert.False(t, st.SearchActive)
	assert.Nil(t, st.Filtered)
	assert.Equal(t, "", st.Term)
	assert.Equal(t, 9, st.WindowEnd)
}

func TestFindBySlug(t *testing.T) {
	s := loadedStore(t, makeGames(12))

	g, ok := s.FindBySlug("game-12")
	require.True(t, ok)
	assert.Equal(t, "Game 12", g.Title)

	_, ok = s.FindBySlug("nope")
	assert.False(t, ok)
	_, ok = s.FindBySlug("")
	assert.False(t, ok)
}

func TestForkIsIndependent(t *testing.T) {
	root := loadedStore(t, makeGames(30))
	a := root.Fork()
	b := root.Fork()

	a.GrowWindow()
	b.Search("game 3")

	assert.Equal(t, 18, a.Snapshot().WindowEnd)
	assert.False(t, a.Snapshot().SearchActive)
	assert.Equal(t, 9, b.Snapshot().WindowEnd)
	assert.True(t, b.Snapshot().SearchActive)
	assert.Equal(t, 9, root.Snapshot().WindowEnd)
	assert.Equal(t, 30, a.Len())

	unloaded := NewStore(nil, Options{}, nil).Fork()
	assert.False(t, unloaded.Loaded())
}

func TestForkWithLoader(t *testing.T) {
	original := &staticLoader{games: makeGames(3)}
	replacement := &staticLoader{games: makeGames(12)}
	root := NewStore(original, Options{PageSize: 20, MaxPages: 2}, nil)

	f := root.ForkWithLoader(replacement)
	require.False(t, f.Loaded())
	assert.Equal(t, 12, f.Load(context.Background()))
	assert.Equal(t, 0, original.calls)
	assert.Equal(t, 1, replacement.calls)
	assert.Equal(t, 20, replacement.pageSize, "options carry over")
	assert.False(t, root.Loaded())
}

func TestWindow(t *testing.T) {
	s := loadedStore(t, makeGames(10))

	assert.Len(t, s.Window(0, 4), 4)
	assert.Equal(t, "game-9", s.Window(8, 4)[0].Slug)
	assert.Len(t, s.Window(8, 4), 2)
	assert.Empty(t, s.Window(10, 4))
	assert.Len(t, s.Window(-5, 3), 3)
}

func TestGrowAppendDoesNotClobberCatalog(t *testing.T) {
	s := loadedStore(t, makeGames(20))
	g := s.GrowWindow()
	_ = append(g.Added, models.Game{Slug: "intruder"})

	next := s.GrowWindow()
	assert.Equal(t, "game-19", next.Added[0].Slug)
}
