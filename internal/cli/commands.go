package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"gamehub/internal/catalog"
	"gamehub/internal/session"
	"gamehub/internal/tui"
	"gamehub/pkg/models"
)

var ErrNotFound = errors.New("game not found")

func (a *app) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [path]",
		Short: "Open the interactive terminal browser",
		Long: `Open the interactive browser. An optional path such as /game/portal-2
opens straight onto that game, the way a deep link would.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, b, err := a.store(a.logger)
			if err != nil {
				return err
			}
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			app := tui.New(store, b.Details, session.Config{
				Debounce:    a.cfg.Catalog.Debounce,
				InitialPath: path,
			}, a.logger)
			return app.Run(cmd.Context())
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var offset, limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games from the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := a.store(a.logger)
			if err != nil {
				return err
			}
			store.Load(cmd.Context())
			if limit <= 0 {
				limit = store.Step()
			}
			games := store.Window(offset, limit)
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"total": store.Len(), "offset": offset, "limit": limit, "items": games,
				})
			}
			writeTable(cmd.OutOrStdout(), games)
			fmt.Fprintf(cmd.OutOrStdout(), "showing %d of %d (offset %d)\n", len(games), store.Len(), offset)
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many games")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of games to show (default: one page step)")
	cmd.Flags().BoolVar(&a.jsonOut, "json", false, "print JSON")
	return cmd
}

func (a *app) searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search titles, genres, platforms and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := a.store(a.logger)
			if err != nil {
				return err
			}
			store.Load(cmd.Context())
			res := store.Search(strings.Join(args, " "))
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"term": res.Term, "outcome": res.Outcome.String(), "items": res.Games,
				})
			}
			if res.Outcome == catalog.OutcomeNoResults {
				fmt.Fprintf(cmd.OutOrStdout(), "No games match %q.\n", res.Term)
				return nil
			}
			writeTable(cmd.OutOrStdout(), res.Games)
			fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", len(res.Games))
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.jsonOut, "json", false, "print JSON")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one game in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, b, err := a.store(a.logger)
			if err != nil {
				return err
			}
			slug := strings.TrimSpace(args[0])
			store.Load(cmd.Context())

			g, found := store.FindBySlug(slug)
			key := slug
			if found && g.ID != "" {
				key = g.ID
			}
			var d *models.GameDetail
			if b.Details != nil {
				d = b.Details.FetchDetail(cmd.Context(), key)
			}
			if d == nil {
				if !found {
					return fmt.Errorf("%w: %s", ErrNotFound, slug)
				}
				summary := models.DetailFromGame(g)
				d = &summary
			}

			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), d)
			}
			writeDetail(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().BoolVar(&a.jsonOut, "json", false, "print JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, games []models.Game) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SLUG", "TITLE", "RELEASED", "RATING", "GENRES", "PLATFORMS")
	for _, g := range games {
		t.Row(g.Slug, g.Title, g.ReleaseDate, fmt.Sprintf("%.1f", g.Rating),
			strings.Join(g.Genres, ", "), strings.Join(g.Platforms, ", "))
	}
	fmt.Fprintln(w, t.Render())
}

func writeDetail(w io.Writer, d *models.GameDetail) {
	fmt.Fprintln(w, d.Title)
	fmt.Fprintln(w, strings.Repeat("─", max(len([]rune(d.Title)), 10)))
	for _, row := range [][2]string{
		{"Slug", d.Slug},
		{"Released", d.ReleaseDate},
		{"Rating", fmt.Sprintf("%.1f", d.Rating)},
		{"Platforms", strings.Join(d.Platforms, ", ")},
		{"Genres", strings.Join(d.Genres, ", ")},
		{"Tags", strings.Join(d.Tags, ", ")},
		{"Developers", strings.Join(d.Developers, ", ")},
		{"Publishers", strings.Join(d.Publishers, ", ")},
		{"Website", d.Website},
	} {
		if row[1] != "" {
			fmt.Fprintf(w, "%-11s %s\n", row[0]+":", row[1])
		}
	}
	if d.Metacritic > 0 {
		fmt.Fprintf(w, "%-11s %d\n", "Metacritic:", d.Metacritic)
	}
	if text := d.Description; text != "" {
		fmt.Fprintf(w, "\n%s\n", text)
	}
}
