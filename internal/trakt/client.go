// Package trakt fetches trending titles from the Trakt API.
package trakt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/javi11/trendarr/internal/config"
	"github.com/javi11/trendarr/internal/trending"
)

const apiVersion = "2"

// Client is a Trakt API client for the public trending endpoints.
type Client struct {
	baseURL           string
	clientID          string
	trendingMoviesURL string
	trendingTVURL     string
	httpClient        *http.Client
	logger            *slog.Logger
}

// NewClient creates a Trakt client from configuration.
func NewClient(cfg config.TraktConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:           strings.TrimRight(cfg.BaseURL, "/"),
		clientID:          cfg.ClientID,
		trendingMoviesURL: cfg.TrendingMoviesURL,
		trendingTVURL:     cfg.TrendingTVURL,
		httpClient:        &http.Client{Timeout: 30 * time.Second},
		logger:            logger,
	}
}

type ids struct {
	TMDB *int64 `json:"tmdb"`
	TVDB *int64 `json:"tvdb"`
}

type item struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   ids    `json:"ids"`
}

type trendingItem struct {
	Movie *item `json:"movie"`
	Show  *item `json:"show"`
}

// Trending returns the ranked trending entries for a category. Fetch or
// decode failures are logged and yield an empty list; a run without
// trending data is not fatal.
func (c *Client) Trending(ctx context.Context, category trending.Category) []trending.Entry {
	path := c.trendingTVURL
	if category == trending.CategoryMovies {
		path = c.trendingMoviesURL
	}
	url := c.baseURL + path

	items, err := c.fetch(ctx, url)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to fetch trending data", "url", url, "err", err)
		return nil
	}
	c.logger.InfoContext(ctx, "fetched trending data", "url", url, "items", len(items))

	entries := make([]trending.Entry, 0, len(items))
	for _, it := range items {
		media := it.Movie
		if media == nil {
			media = it.Show
		}
		if media == nil {
			continue
		}

		entry := trending.Entry{Title: media.Title, Year: media.Year}
		switch category {
		case trending.CategoryMovies:
			if media.IDs.TMDB != nil {
				entry.ExternalID = strconv.FormatInt(*media.IDs.TMDB, 10)
			}
		default:
			if media.IDs.TVDB != nil {
				entry.ExternalID = strconv.FormatInt(*media.IDs.TVDB, 10)
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func (c *Client) fetch(ctx context.Context, url string) ([]trendingItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trakt returned status %d", resp.StatusCode)
	}

	var items []trendingItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode trending response: %w", err)
	}
	return items, nil
}
