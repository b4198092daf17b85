// Package export turns a loaded catalog into files: CSV for spreadsheets
// and mirror records for offline serving.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"gamehub/internal/session"
	"gamehub/internal/upstream"
	"gamehub/pkg/models"
)

var csvHeader = []string{"id", "slug", "title", "release_date", "rating", "genres", "platforms", "tags", "poster_url", "summary"}

// listSep joins multi-valued columns.
const listSep = "|"

func WriteCSV(w io.Writer, games []models.Game) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, g := range games {
		row := []string{
			g.ID,
			g.Slug,
			g.Title,
			g.ReleaseDate,
			strconv.FormatFloat(g.Rating, 'f', 2, 64),
			strings.Join(g.Genres, listSep),
			strings.Join(g.Platforms, listSep),
			strings.Join(g.Tags, listSep),
			g.PosterURL,
			g.Summary,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", g.Slug, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Records builds mirror records for games. With a fetcher, each record is
// enriched with its detail, at most concurrency requests at a time; games
// whose detail is unavailable keep their summary.
func Records(ctx context.Context, games []models.Game, details session.DetailFetcher, concurrency int) ([]upstream.Record, error) {
	out := make([]upstream.Record, len(games))
	if details == nil {
		for i, g := range games {
			out[i] = upstream.RecordFromDetail(models.DetailFromGame(g))
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))
	for i, game := range games {
		i, game := i, game
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			key := game.ID
			if key == "" {
				key = game.Slug
			}
			d := details.FetchDetail(gctx, key)
			if d == nil {
				summary := models.DetailFromGame(game)
				d = &summary
			}
			out[i] = upstream.RecordFromDetail(*d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
