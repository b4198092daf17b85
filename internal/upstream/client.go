package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"gamehub/pkg/logging"
	"gamehub/pkg/models"
)

var (
	ErrNetwork  = errors.New("upstream request failed")
	ErrNotFound = errors.New("upstream record not found")
	ErrDecode   = errors.New("upstream response malformed")
)

const (
	defaultTimeout  = 12 * time.Second
	defaultPageSize = 40
	maxErrorBody    = 512
)

// Client talks to the upstream game database. BaseURL is the full listing
// URL with the API key already embedded, e.g.
// https://api.rawg.io/api/games?key=XXXX.
//
// Every public method is fail-soft: failures are logged and turned into
// empty results, never returned.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Logger:  logging.OrNop(logger).Named("upstream"),
	}
}

// Page is one listing page mapped into catalog entries.
type Page struct {
	Items    []models.Game
	Received int // raw results, before unroutable records were dropped
	HasNext  bool
	Count    int // upstream total, informational
}

// FetchPage fetches a single listing page. Any failure yields an empty
// page with HasNext=false.
func (c *Client) FetchPage(ctx context.Context, page, pageSize int) Page {
	p, err := c.fetchPage(ctx, page, pageSize)
	if err != nil {
		c.log().Warn("page fetch failed",
			zap.Int("page", page),
			zap.Int("page_size", pageSize),
			zap.Error(err),
		)
		return Page{}
	}
	return p
}

// FetchAllPages fetches pages 1..maxPages in order and concatenates them.
// It stops at the first page with no results (counted before unroutable
// records are dropped) or the first page without a next link,
// so the result never exceeds pageSize*maxPages entries.
func (c *Client) FetchAllPages(ctx context.Context, pageSize, maxPages int) []models.Game {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var all []models.Game
	seenID := make(map[string]struct{})
	seenSlug := make(map[string]struct{})

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			c.log().Warn("catalog fetch interrupted", zap.Int("page", page), zap.Error(err))
			break
		}

		p := c.FetchPage(ctx, page, pageSize)
		if p.Received == 0 {
			c.log().Debug("empty page, stopping", zap.Int("page", page))
			break
		}

		for _, g := range p.Items {
			if _, dup := seenID[g.ID]; dup {
				c.log().Debug("duplicate id dropped", zap.String("id", g.ID))
				continue
			}
			if _, dup := seenSlug[g.Slug]; dup {
				c.log().Debug("duplicate slug dropped", zap.String("slug", g.Slug))
				continue
			}
			seenID[g.ID] = struct{}{}
			seenSlug[g.Slug] = struct{}{}
			all = append(all, g)
		}

		if !p.HasNext {
			c.log().Debug("no more pages", zap.Int("page", page))
			break
		}
	}

	c.log().Info("catalog fetched", zap.Int("games", len(all)))
	return all
}

// FetchDetail fetches one record by id or slug. It returns nil when the
// record is missing or the request fails; callers fall back to the
// summary they already hold.
func (c *Client) FetchDetail(ctx context.Context, idOrSlug string) *models.GameDetail {
	d, err := c.fetchDetail(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.log().Info("detail not found", zap.String("id", idOrSlug))
		} else {
			c.log().Warn("detail fetch failed", zap.String("id", idOrSlug), zap.Error(err))
		}
		return nil
	}
	return d
}

func (c *Client) fetchPage(ctx context.Context, page, pageSize int) (Page, error) {
	u, err := c.pageURL(page, pageSize)
	if err != nil {
		return Page{}, err
	}

	var resp PageResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return Page{}, err
	}

	results := resp.Results
	if len(results) > pageSize {
		results = results[:pageSize]
	}

	out := Page{
		Items:    make([]models.Game, 0, len(results)),
		Received: len(results),
		HasNext:  resp.Next != nil && *resp.Next != "",
		Count:    resp.Count,
	}
	for _, r := range results {
		g, ok := toGame(r)
		if !ok {
			c.log().Warn("record without routing key dropped", zap.String("id", string(r.ID)))
			continue
		}
		out.Items = append(out.Items, g)
	}
	return out, nil
}

func (c *Client) fetchDetail(ctx context.Context, idOrSlug string) (*models.GameDetail, error) {
	if idOrSlug == "" {
		return nil, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	u, err := c.detailURL(idOrSlug)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := c.getJSON(ctx, u, &rec); err != nil {
		return nil, err
	}
	d, ok := toDetail(rec)
	if !ok {
		return nil, fmt.Errorf("%w: record has no slug or name", ErrDecode)
	}
	return &d, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrNetwork, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

func (c *Client) pageURL(page, pageSize int) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: bad base url: %v", ErrNetwork, err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// detailURL is <base path>/<id>?key=<key>; listing params are dropped.
func (c *Client) detailURL(idOrSlug string) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("%w: bad base url: %v", ErrNetwork, err)
	}
	key := u.Query().Get("key")
	u = u.JoinPath(idOrSlug)

	q := url.Values{}
	if key != "" {
		q.Set("key", key)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP == nil {
		return &http.Client{Timeout: defaultTimeout}
	}
	return c.HTTP
}

func (c *Client) log() *zap.Logger {
	return logging.OrNop(c.Logger)
}
