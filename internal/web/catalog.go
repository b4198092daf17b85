package web

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"gamehub/internal/catalog"
	"gamehub/pkg/models"
)

const loadKey = "catalog"

// Catalog is the process-wide catalog that HTTP requests read and every
// browser session forks from. It is fetched from upstream once; sessions
// that start before that completes wait for the same fetch.
type Catalog struct {
	mu     sync.RWMutex
	store  *catalog.Store
	games  []models.Game
	loaded bool

	group singleflight.Group
}

func NewCatalog(store *catalog.Store) *Catalog {
	return &Catalog{store: store}
}

// Load fetches the catalog unless it is already installed, joining a fetch
// that is in flight. It returns the number of games. Requests are served
// from the unloaded store until the fetch completes.
func (c *Catalog) Load(ctx context.Context) int {
	return len(c.shared(ctx))
}

// shared returns the installed catalog, running at most one upstream fetch
// at a time. A caller whose ctx ends stops waiting; the fetch itself runs
// on to completion for the other waiters, bounded by the client's timeouts.
func (c *Catalog) shared(ctx context.Context) []models.Game {
	if games, ok := c.installed(); ok {
		return games
	}

	ch := c.group.DoChan(loadKey, func() (any, error) {
		if games, ok := c.installed(); ok {
			return games, nil
		}
		games := c.store.Fetch(context.WithoutCancel(ctx))

		c.mu.Lock()
		c.store.Replace(games)
		c.games = games
		c.loaded = true
		c.mu.Unlock()
		return games, nil
	})

	select {
	case res := <-ch:
		games, _ := res.Val.([]models.Game)
		return games
	case <-ctx.Done():
		return nil
	}
}

func (c *Catalog) installed() ([]models.Game, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.games, c.loaded
}

func (c *Catalog) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.Len()
}

// Fork returns a private store over the current contents. A fork taken
// before the catalog is installed loads through the shared fetch.
func (c *Catalog) Fork() *catalog.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.loaded {
		return c.store.Fork()
	}
	return c.store.ForkWithLoader(sharedLoader{c})
}

// sharedLoader satisfies catalog.Loader with the catalog's single fetch;
// page parameters are the shared store's.
type sharedLoader struct {
	c *Catalog
}

func (l sharedLoader) FetchAllPages(ctx context.Context, _, _ int) []models.Game {
	return l.c.shared(ctx)
}
