package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIURL is returned when no upstream base URL was injected.
var ErrMissingAPIURL = errors.New("GAMEHUB_API_URL (or API_URL) is not set")

type CatalogConfig struct {
	// APIURL is the full upstream base query URL, API key included,
	// e.g. https://api.rawg.io/api/games?key=...
	APIURL      string
	PageSize    int
	MaxPages    int
	Step        int
	Debounce    time.Duration
	HTTPTimeout time.Duration
}

type ServerConfig struct {
	HTTPAddr string
	GRPCAddr string
}

type LogConfig struct {
	Level string
	File  string // empty means stdout
}

type Config struct {
	Catalog CatalogConfig
	Server  ServerConfig
	Log     LogConfig
}

// envPaths are tried in order; the first .env found wins.
var envPaths = []string{".env", "../.env"}

// LoadDotEnv loads the first .env file it finds. A missing file is fine:
// the process environment is used as is.
func LoadDotEnv(paths ...string) string {
	if len(paths) == 0 {
		paths = envPaths
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return p
		}
	}
	return ""
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GAMEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("catalog.page_size", 40)
	v.SetDefault("catalog.max_pages", 5)
	v.SetDefault("catalog.step", 9)
	v.SetDefault("catalog.debounce", 300*time.Millisecond)
	v.SetDefault("catalog.http_timeout", 12*time.Second)
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.grpc_addr", ":7071")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	// API_URL is the variable name the browser build used.
	_ = v.BindEnv("api_url", "GAMEHUB_API_URL", "API_URL")
	_ = v.BindEnv("log.level", "GAMEHUB_LOG_LEVEL", "LOG_LEVEL")
	return v
}

// Load reads configuration from the environment. The upstream URL is
// required; everything else has a default.
func Load() (Config, error) {
	cfg := LoadWithoutAPI()
	if cfg.Catalog.APIURL == "" {
		return cfg, ErrMissingAPIURL
	}
	return cfg, nil
}

// LoadWithoutAPI is Load for tools that never talk to the upstream
// (mirror server, gRPC clients).
func LoadWithoutAPI() Config {
	v := newViper()

	cfg := Config{
		Catalog: CatalogConfig{
			APIURL:      strings.TrimSpace(v.GetString("api_url")),
			PageSize:    positive(v.GetInt("catalog.page_size"), 40),
			MaxPages:    positive(v.GetInt("catalog.max_pages"), 5),
			Step:        positive(v.GetInt("catalog.step"), 9),
			Debounce:    v.GetDuration("catalog.debounce"),
			HTTPTimeout: v.GetDuration("catalog.http_timeout"),
		},
		Server: ServerConfig{
			HTTPAddr: v.GetString("server.http_addr"),
			GRPCAddr: v.GetString("server.grpc_addr"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
	}
	if cfg.Catalog.Debounce <= 0 {
		cfg.Catalog.Debounce = 300 * time.Millisecond
	}
	if cfg.Catalog.HTTPTimeout <= 0 {
		cfg.Catalog.HTTPTimeout = 12 * time.Second
	}
	return cfg
}

// positive falls back to def when a value is unset or nonsensical.
func positive(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
