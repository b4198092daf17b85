package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamehub/internal/upstream"
	"gamehub/pkg/models"
)

var games = []models.Game{
	{ID: "1", Slug: "portal-2", Title: "Portal 2", ReleaseDate: "2011-04-18", Rating: 4.6, Genres: []string{"Puzzle", "Shooter"}, Platforms: []string{"PC"}, Summary: "Think, with portals."},
	{ID: "2", Slug: "hades", Title: "Hades", Genres: []string{"Roguelike"}},
	{Slug: "celeste", Title: "Celeste, Deluxe"},
}

type countingDetails struct {
	details map[string]*models.GameDetail
	calls   atomic.Int32
}

func (c *countingDetails) FetchDetail(_ context.Context, key string) *models.GameDetail {
	c.calls.Add(1)
	return c.details[key]
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, games))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"1", "portal-2", "Portal 2", "2011-04-18", "4.60", "Puzzle|Shooter", "PC", "", "", "Think, with portals."}, rows[1])
	assert.Equal(t, "Celeste, Deluxe", rows[3][2])
}

func TestRecordsSummaryOnly(t *testing.T) {
	records, err := Records(context.Background(), games, nil, 4)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, upstream.ID("1"), records[0].ID)
	assert.Equal(t, "Think, with portals.", records[0].DescriptionRaw)
	require.NotNil(t, records[0].Released)
	assert.Equal(t, "2011-04-18", *records[0].Released)
	assert.Nil(t, records[1].Released)
}

func TestRecordsWithDetails(t *testing.T) {
	details := &countingDetails{details: map[string]*models.GameDetail{
		"1":       {Game: games[0], Description: "Full text", Developers: []string{"Valve"}},
		"celeste": {Game: games[2], Description: "Climb"},
	}}

	records, err := Records(context.Background(), games, details, 2)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.EqualValues(t, 3, details.calls.Load())
	assert.Equal(t, "Full text", records[0].DescriptionRaw)
	require.Len(t, records[0].Developers, 1)
	assert.Equal(t, "Valve", records[0].Developers[0].Name)
	assert.Equal(t, "hades", records[1].Slug, "missing detail keeps the summary")
	assert.Equal(t, "Climb", records[2].DescriptionRaw, "games without an id are fetched by slug")
}

func TestRecordsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Records(ctx, games, &countingDetails{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
