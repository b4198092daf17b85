package mirror

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gamehub/internal/upstream"
	"gamehub/pkg/logging"
)

const (
	defaultPageSize = 20
	maxPageSize     = 40
)

// Mirror serves a fixed set of records with the upstream API's listing and
// detail routes, so the browser can run offline.
type Mirror struct {
	records []upstream.Record
	index   map[string]int // id and slug -> position
	key     string
	logger  *zap.Logger
}

// New builds a mirror. When key is set, requests must carry ?key=<key>.
func New(records []upstream.Record, key string, logger *zap.Logger) *Mirror {
	m := &Mirror{
		records: records,
		index:   make(map[string]int, len(records)*2),
		key:     key,
		logger:  logging.OrNop(logger).Named("mirror"),
	}
	for i, r := range records {
		if id := string(r.ID); id != "" {
			if _, dup := m.index[id]; !dup {
				m.index[id] = i
			}
		}
		if r.Slug != "" {
			if _, dup := m.index[r.Slug]; !dup {
				m.index[r.Slug] = i
			}
		}
	}
	m.logger.Info("mirror ready", zap.Int("records", len(records)), zap.Bool("key_required", key != ""))
	return m
}

// Load reads a mirror file written by Write.
func Load(path string) ([]upstream.Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mirror: %w", err)
	}
	var records []upstream.Record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("mirror %s is not valid JSON: %w", path, err)
	}
	return records, nil
}

func Write(path string, records []upstream.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return os.WriteFile(path, b, 0o644)
}

func (m *Mirror) Len() int { return len(m.records) }

func (m *Mirror) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(m.requireKey)
	rg.GET("", m.list)    // GET /api/games?page=&page_size=
	rg.GET("/:id", m.get) // GET /api/games/:id-or-slug
}

func (m *Mirror) requireKey(c *gin.Context) {
	if m.key != "" && c.Query("key") != m.key {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "The key parameter is not provided or invalid"})
		return
	}
	c.Next()
}

func (m *Mirror) list(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)
	size := parseInt(c.Query("page_size"), defaultPageSize)
	if page < 1 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
		return
	}
	size = min(max(size, 1), maxPageSize)

	start := (page - 1) * size
	if start >= len(m.records) && !(page == 1 && len(m.records) == 0) {
		// Upstream answers 404 past the last page; the client treats it as
		// the end of the listing.
		c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
		return
	}
	end := min(start+size, len(m.records))

	resp := upstream.PageResponse{
		Count:   len(m.records),
		Results: m.records[start:end],
	}
	if end < len(m.records) {
		next := pageLink(c.Request, page+1)
		resp.Next = &next
	}
	if page > 1 {
		prev := pageLink(c.Request, page-1)
		resp.Previous = &prev
	}
	c.JSON(http.StatusOK, resp)
}

func (m *Mirror) get(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	i, ok := m.index[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, m.records[i])
}

// pageLink rebuilds the request URL pointing at another page.
func pageLink(r *http.Request, page int) string {
	u := url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path}
	if r.TLS != nil {
		u.Scheme = "https"
	}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
