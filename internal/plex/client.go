// Package plex talks to a Plex Media Server over its HTTP API.
package plex

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/javi11/trendarr/internal/config"
)

const userAgent = "trendarr"

// Entry is a single item of a Plex library section.
type Entry struct {
	RatingKey string
	Title     string
	SortTitle string
	GUIDs     []string
}

// SearchCriteria selects entries by exactly one of title or external id.
type SearchCriteria struct {
	Title      string
	ExternalID string
}

// Client queries and edits Plex library sections.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger

	mu       sync.Mutex
	sections map[string]section
}

type section struct {
	key  string
	kind string
}

// NewClient creates a Plex client from configuration. The section name to
// key mapping is resolved lazily on first use and cached for the client's
// lifetime.
func NewClient(cfg config.PlexConfig, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if cfg.InsecureSkipTLS {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		token:   strings.TrimSpace(cfg.Token),
		client:  httpClient,
		logger:  logger,
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, params)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build plex request: %w", err)
	}
	req.Header.Set("X-Plex-Token", c.token)
	req.Header.Set("Accept", "application/xml")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("plex request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		resp.Body.Close()
		return nil, fmt.Errorf("plex returned %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

func (c *Client) ensureSections(ctx context.Context) (map[string]section, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sections != nil {
		return c.sections, nil
	}

	resp, err := c.get(ctx, "/library/sections", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch plex sections: %w", err)
	}
	defer resp.Body.Close()

	type directory struct {
		Key   string `xml:"key,attr"`
		Type  string `xml:"type,attr"`
		Title string `xml:"title,attr"`
	}
	type mediaContainer struct {
		Directories []directory `xml:"Directory"`
	}

	var container mediaContainer
	if err := xml.NewDecoder(resp.Body).Decode(&container); err != nil {
		return nil, fmt.Errorf("decode plex sections: %w", err)
	}

	sections := make(map[string]section, len(container.Directories))
	for _, dir := range container.Directories {
		sections[strings.ToLower(dir.Title)] = section{key: dir.Key, kind: dir.Type}
	}
	c.sections = sections
	return sections, nil
}

func (c *Client) sectionFor(ctx context.Context, library string) (section, error) {
	sections, err := c.ensureSections(ctx)
	if err != nil {
		return section{}, err
	}
	sec, ok := sections[strings.ToLower(library)]
	if !ok {
		return section{}, fmt.Errorf("plex library %q not found", library)
	}
	return sec, nil
}

type entryXML struct {
	RatingKey string `xml:"ratingKey,attr"`
	Title     string `xml:"title,attr"`
	TitleSort string `xml:"titleSort,attr"`
	GUIDs     []struct {
		ID string `xml:"id,attr"`
	} `xml:"Guid"`
}

// Movies arrive as Video elements, shows as Directory elements.
type entriesContainer struct {
	Videos      []entryXML `xml:"Video"`
	Directories []entryXML `xml:"Directory"`
}

func (c *Client) decodeEntries(body io.Reader) ([]Entry, error) {
	var container entriesContainer
	if err := xml.NewDecoder(body).Decode(&container); err != nil {
		return nil, fmt.Errorf("decode plex entries: %w", err)
	}

	raw := append(container.Videos, container.Directories...)
	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		entry := Entry{RatingKey: e.RatingKey, Title: e.Title, SortTitle: e.TitleSort}
		for _, g := range e.GUIDs {
			entry.GUIDs = append(entry.GUIDs, g.ID)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Entries lists every entry of the named library section.
func (c *Client) Entries(ctx context.Context, library string) ([]Entry, error) {
	sec, err := c.sectionFor(ctx, library)
	if err != nil {
		return nil, err
	}

	params := url.Values{"includeGuids": {"1"}}
	resp, err := c.get(ctx, "/library/sections/"+sec.key+"/all", params)
	if err != nil {
		return nil, fmt.Errorf("fetch plex entries: %w", err)
	}
	defer resp.Body.Close()

	return c.decodeEntries(resp.Body)
}

// Search returns the entries of a library section matching the criteria.
// Title criteria use the server-side title filter; external id criteria
// match against the entry guids (tmdb://<id>, tvdb://<id>).
func (c *Client) Search(ctx context.Context, library string, criteria SearchCriteria) ([]Entry, error) {
	switch {
	case criteria.Title != "" && criteria.ExternalID != "":
		return nil, fmt.Errorf("search criteria must set exactly one of title or external id")
	case criteria.Title != "":
		return c.searchByTitle(ctx, library, criteria.Title)
	case criteria.ExternalID != "":
		return c.searchByExternalID(ctx, library, criteria.ExternalID)
	default:
		return nil, fmt.Errorf("empty search criteria")
	}
}

func (c *Client) searchByTitle(ctx context.Context, library, title string) ([]Entry, error) {
	sec, err := c.sectionFor(ctx, library)
	if err != nil {
		return nil, err
	}

	params := url.Values{"title": {title}, "includeGuids": {"1"}}
	resp, err := c.get(ctx, "/library/sections/"+sec.key+"/all", params)
	if err != nil {
		return nil, fmt.Errorf("search plex by title: %w", err)
	}
	defer resp.Body.Close()

	return c.decodeEntries(resp.Body)
}

func (c *Client) searchByExternalID(ctx context.Context, library, externalID string) ([]Entry, error) {
	entries, err := c.Entries(ctx, library)
	if err != nil {
		return nil, err
	}

	suffix := "://" + externalID
	var out []Entry
	for _, entry := range entries {
		for _, guid := range entry.GUIDs {
			if strings.HasSuffix(guid, suffix) {
				out = append(out, entry)
				break
			}
		}
	}
	return out, nil
}

func typeCode(kind string) string {
	if kind == "show" {
		return "2"
	}
	return "1"
}

// UpdateRank rewrites the display title and sort title of an entry, locking
// both fields so Plex metadata refreshes do not undo the edit. The write is
// confirmed by re-reading the entry; a sort title that did not stick is an
// error.
func (c *Client) UpdateRank(ctx context.Context, library, ratingKey, title, sortTitle string) error {
	sec, err := c.sectionFor(ctx, library)
	if err != nil {
		return err
	}

	params := url.Values{
		"type":             {typeCode(sec.kind)},
		"id":               {ratingKey},
		"title.value":      {title},
		"title.locked":     {"1"},
		"titleSort.value":  {sortTitle},
		"titleSort.locked": {"1"},
	}
	resp, err := c.do(ctx, http.MethodPut, "/library/sections/"+sec.key+"/all", params)
	if err != nil {
		return fmt.Errorf("update plex entry %s: %w", ratingKey, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	updated, err := c.metadata(ctx, ratingKey)
	if err != nil {
		return fmt.Errorf("confirm plex update for %s: %w", ratingKey, err)
	}
	if updated.SortTitle != sortTitle {
		return fmt.Errorf("plex update for %s did not apply: sort title is %q", ratingKey, updated.SortTitle)
	}

	c.logger.Debug("updated plex entry", "rating_key", ratingKey, "title", title, "sort_title", sortTitle)
	return nil
}

func (c *Client) metadata(ctx context.Context, ratingKey string) (Entry, error) {
	resp, err := c.get(ctx, "/library/metadata/"+ratingKey, nil)
	if err != nil {
		return Entry{}, err
	}
	defer resp.Body.Close()

	entries, err := c.decodeEntries(resp.Body)
	if err != nil {
		return Entry{}, err
	}
	if len(entries) == 0 {
		return Entry{}, fmt.Errorf("plex metadata for %s is empty", ratingKey)
	}
	return entries[0], nil
}

// TriggerRescan asks Plex to rescan the named library section. The scan
// runs asynchronously on the server.
func (c *Client) TriggerRescan(ctx context.Context, library string) error {
	sec, err := c.sectionFor(ctx, library)
	if err != nil {
		return err
	}

	resp, err := c.get(ctx, "/library/sections/"+sec.key+"/refresh", nil)
	if err != nil {
		return fmt.Errorf("trigger plex rescan: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	c.logger.Info("triggered plex library rescan", "library", library)
	return nil
}
