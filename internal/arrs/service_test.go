package arrs

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javi11/trendarr/internal/config"
	"github.com/javi11/trendarr/internal/trending"
)

func boolPtr(v bool) *bool { return &v }

func commandServer(t *testing.T, commands *[]string, keys *[]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/command" {
			http.NotFound(w, r)
			return
		}
		var body struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*commands = append(*commands, body.Name)
		*keys = append(*keys, r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 1, "name": "` + body.Name + `"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRefreshMoviesHitsEnabledRadarrOnly(t *testing.T) {
	var commands, keys []string
	server := commandServer(t, &commands, &keys)

	cfg := config.DefaultConfig()
	cfg.Arrs.RadarrInstances = []config.ArrInstanceConfig{
		{Name: "main", URL: server.URL, APIKey: "radarr-key", Enabled: boolPtr(true)},
		{Name: "disabled", URL: "http://127.0.0.1:1", APIKey: "unused", Enabled: boolPtr(false)},
	}
	cfg.Arrs.SonarrInstances = []config.ArrInstanceConfig{
		{Name: "tv", URL: "http://127.0.0.1:1", APIKey: "unused", Enabled: boolPtr(true)},
	}

	s := NewService(func() *config.Config { return cfg }, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Refresh(context.Background(), trending.CategoryMovies)

	assert.Equal(t, []string{"RefreshMovie"}, commands)
	assert.Equal(t, []string{"radarr-key"}, keys)
}

func TestRefreshTVHitsSonarr(t *testing.T) {
	var commands, keys []string
	server := commandServer(t, &commands, &keys)

	cfg := config.DefaultConfig()
	cfg.Arrs.SonarrInstances = []config.ArrInstanceConfig{
		{Name: "tv", URL: server.URL, APIKey: "sonarr-key", Enabled: boolPtr(true)},
	}

	s := NewService(func() *config.Config { return cfg }, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Refresh(context.Background(), trending.CategoryTV)

	assert.Equal(t, []string{"RefreshSeries"}, commands)
}

func TestRefreshInstanceFailureIsNotFatal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Arrs.RadarrInstances = []config.ArrInstanceConfig{
		{Name: "down", URL: "http://127.0.0.1:1", APIKey: "key", Enabled: boolPtr(true)},
	}

	s := NewService(func() *config.Config { return cfg }, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Refresh(context.Background(), trending.CategoryMovies)
}
