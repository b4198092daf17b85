package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gamehub/internal/session"
	"gamehub/pkg/logging"
	"gamehub/pkg/models"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Handler struct {
	Catalog  *Catalog
	Details  session.DetailFetcher
	Hub      *session.Hub
	Debounce time.Duration
	Logger   *zap.Logger
}

func NewHandler(cat *Catalog, details session.DetailFetcher, hub *session.Hub, debounce time.Duration, logger *zap.Logger) *Handler {
	if hub == nil {
		hub = session.NewHub()
	}
	return &Handler{
		Catalog:  cat,
		Details:  details,
		Hub:      hub,
		Debounce: debounce,
		Logger:   logging.OrNop(logger).Named("web"),
	}
}

// NewEngine builds the gin engine with every route registered.
func NewEngine(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.Logger))
	_ = r.SetTrustedProxies([]string{"127.0.0.1"})
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.health)
	r.GET("/ready", h.ready)

	api := r.Group("/api")
	api.GET("/games", h.list)      // GET /api/games?offset=&limit=
	api.GET("/games/:slug", h.get) // GET /api/games/:slug
	api.GET("/search", h.search)   // GET /api/search?q=

	r.GET("/ws", h.ws)

	r.GET("/", h.index)
	r.GET("/game/:slug", h.index)
	r.GET("/static/*file", h.static)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ready(c *gin.Context) {
	if !h.Catalog.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not_ready",
			"sessions": h.Hub.Count(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"games":    h.Catalog.Len(),
		"sessions": h.Hub.Count(),
	})
}

func (h *Handler) list(c *gin.Context) {
	if !h.Catalog.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not loaded"})
		return
	}
	limit := parseInt(c.Query("limit"), defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := max(parseInt(c.Query("offset"), 0), 0)

	store := h.Catalog.Fork()
	c.JSON(http.StatusOK, gin.H{
		"total":  store.Len(),
		"limit":  limit,
		"offset": offset,
		"items":  store.Window(offset, limit),
	})
}

// get answers with the richest record available: the upstream detail when
// it resolves, otherwise the catalog summary.
func (h *Handler) get(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}

	g, found := h.Catalog.Fork().FindBySlug(slug)
	key := slug
	if found && g.ID != "" {
		key = g.ID
	}

	var d *models.GameDetail
	if h.Details != nil {
		d = h.Details.FetchDetail(c.Request.Context(), key)
	}
	if d != nil {
		c.JSON(http.StatusOK, gin.H{"partial": false, "game": d})
		return
	}
	if found {
		summary := models.DetailFromGame(g)
		c.JSON(http.StatusOK, gin.H{"partial": true, "game": summary})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

func (h *Handler) search(c *gin.Context) {
	if !h.Catalog.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog not loaded"})
		return
	}
	res := h.Catalog.Fork().Search(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"term":    res.Term,
		"outcome": res.Outcome.String(),
		"count":   len(res.Games),
		"items":   res.Games,
	})
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
