package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DBravy/connected-chatbot-sub000/app/config"

	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/do"
	"github.com/samber/oops"
	"golang.org/x/sync/singleflight"
)

// Source is the catalog lookup contract the conversation engine consumes.
type Source interface {
	Search(ctx context.Context, city, category, keyword string) ([]Service, error)
}

type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	cache      *gocache.Cache
	group      singleflight.Group
}

var _ Source = (*Client)(nil)

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		cache: gocache.New(cfg.Catalog.CacheTTL, 2*cfg.Catalog.CacheTTL),
	}, nil
}

// Search returns priced bookable items for a city, optionally narrowed by
// category and keyword. Results are cached per query; concurrent identical
// queries across conversations collapse into one upstream call.
func (c *Client) Search(ctx context.Context, city, category, keyword string) ([]Service, error) {
	key := cacheKey(city, category, keyword)

	if cached, ok := c.cache.Get(key); ok {
		return cached.([]Service), nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		services, err := c.fetch(ctx, city, category, keyword)
		if err != nil {
			return nil, err
		}

		c.cache.SetDefault(key, services)

		return services, nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	return result.([]Service), nil
}

func (c *Client) fetch(ctx context.Context, city, category, keyword string) ([]Service, error) {
	query := url.Values{}
	query.Set("city", city)
	if category != "" {
		query.Set("category", category)
	}
	if keyword != "" {
		query.Set("q", keyword)
	}

	endpoint := strings.TrimRight(c.cfg.Catalog.BaseURL, "/") + "/services?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, oops.Errorf("failed to build catalog request: %w", err)
	}
	if c.cfg.Catalog.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Catalog.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, oops.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, oops.Errorf("catalog returned %s: %s", resp.Status, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.Errorf("failed to read catalog response: %w", err)
	}

	// The search service answers either a wrapped object or a bare array.
	var wrapped searchResponse
	if err = json.Unmarshal(data, &wrapped); err == nil && wrapped.Services != nil {
		return wrapped.Services, nil
	}

	var services []Service
	if err = json.Unmarshal(data, &services); err != nil {
		return nil, oops.Errorf("failed to parse catalog response: %w", err)
	}

	return services, nil
}

// RunRefreshLoop keeps the supported city's full catalog warm so entering
// the planning phase does not pay the first-search latency.
func (c *Client) RunRefreshLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Catalog.RefreshInterval)
	defer ticker.Stop()

	for {
		c.cache.Delete(cacheKey(c.cfg.Trip.SupportedCity, "", ""))

		if _, err := c.Search(ctx, c.cfg.Trip.SupportedCity, "", ""); err != nil {
			slog.Warn("Catalog refresh failed", "city", c.cfg.Trip.SupportedCity, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func cacheKey(city, category, keyword string) string {
	return strings.ToLower(city + "|" + category + "|" + keyword)
}
