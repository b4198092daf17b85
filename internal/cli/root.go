// Package cli holds the gamehub command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gamehub/internal/catalog"
	"gamehub/internal/session"
	"gamehub/internal/upstream"
	"gamehub/pkg/logging"
	"gamehub/pkg/utils"
)

// Backend is what the commands need from the outside world.
type Backend struct {
	Loader  catalog.Loader
	Details session.DetailFetcher
}

// BackendFunc builds the backend once configuration is known. Tests swap
// it for an in-memory one.
type BackendFunc func(cfg utils.Config, logger *zap.Logger) (Backend, error)

// UpstreamBackend talks to the configured game database.
func UpstreamBackend(cfg utils.Config, logger *zap.Logger) (Backend, error) {
	if cfg.Catalog.APIURL == "" {
		return Backend{}, utils.ErrMissingAPIURL
	}
	c := upstream.NewClient(cfg.Catalog.APIURL, cfg.Catalog.HTTPTimeout, logger)
	return Backend{Loader: c, Details: c}, nil
}

type app struct {
	backend  BackendFunc
	apiURL   string
	logLevel string
	logFile  string
	jsonOut  bool

	cfg    utils.Config
	logger *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd(backend BackendFunc) *cobra.Command {
	if backend == nil {
		backend = UpstreamBackend
	}
	a := &app{backend: backend}

	root := &cobra.Command{
		Use:   "gamehub",
		Short: "Browse a remote game catalog",
		Long: `gamehub loads a game catalog from a RAWG-style API and lets you browse it:
an interactive terminal browser, or one-shot list, search and show commands.

The API URL, key included, comes from GAMEHUB_API_URL (or API_URL), a .env
file, or --api-url.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.apiURL, "api-url", "", "upstream listing URL including the key (overrides GAMEHUB_API_URL)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.logFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(
		a.browseCmd(),
		a.listCmd(),
		a.searchCmd(),
		a.showCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	utils.LoadDotEnv()
	a.cfg = utils.LoadWithoutAPI()
	if a.apiURL != "" {
		a.cfg.Catalog.APIURL = a.apiURL
	}
	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}
	if a.logFile != "" {
		a.cfg.Log.File = a.logFile
	}

	out := "stderr"
	if a.cfg.Log.File != "" {
		out = a.cfg.Log.File
	} else if cmd.Name() == "browse" {
		// The terminal UI owns the screen.
		out = "gamehub.log"
	}
	logger, err := logging.New(a.cfg.Log.Level, out)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) store(logger *zap.Logger) (*catalog.Store, Backend, error) {
	b, err := a.backend(a.cfg, logger)
	if err != nil {
		return nil, Backend{}, err
	}
	s := catalog.NewStore(b.Loader, catalog.Options{
		Step:     a.cfg.Catalog.Step,
		PageSize: a.cfg.Catalog.PageSize,
		MaxPages: a.cfg.Catalog.MaxPages,
	}, logger)
	return s, b, nil
}
