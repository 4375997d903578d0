// Package arrs triggers library refreshes on configured Radarr and Sonarr
// instances after the symlink directories change.
package arrs

import (
	"context"
	"log/slog"
	"sync"

	"golift.io/starr"
	"golift.io/starr/radarr"
	"golift.io/starr/sonarr"

	"github.com/javi11/trendarr/internal/config"
	"github.com/javi11/trendarr/internal/trending"
)

// Service manages clients for the configured Radarr and Sonarr instances.
type Service struct {
	configGetter config.ConfigGetter
	logger       *slog.Logger

	mu            sync.Mutex
	radarrClients map[string]*radarr.Radarr
	sonarrClients map[string]*sonarr.Sonarr
}

func NewService(configGetter config.ConfigGetter, logger *slog.Logger) *Service {
	return &Service{
		configGetter:  configGetter,
		logger:        logger,
		radarrClients: make(map[string]*radarr.Radarr),
		sonarrClients: make(map[string]*sonarr.Sonarr),
	}
}

func (s *Service) radarrClient(instance config.ArrInstanceConfig) *radarr.Radarr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.radarrClients[instance.Name]; ok {
		return client
	}
	client := radarr.New(&starr.Config{URL: instance.URL, APIKey: instance.APIKey})
	s.radarrClients[instance.Name] = client
	return client
}

func (s *Service) sonarrClient(instance config.ArrInstanceConfig) *sonarr.Sonarr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client, ok := s.sonarrClients[instance.Name]; ok {
		return client
	}
	client := sonarr.New(&starr.Config{URL: instance.URL, APIKey: instance.APIKey})
	s.sonarrClients[instance.Name] = client
	return client
}

// Refresh asks every enabled instance of the category's type to rescan its
// library. Failures are logged per instance and never abort the run.
func (s *Service) Refresh(ctx context.Context, category trending.Category) {
	cfg := s.configGetter()

	if category == trending.CategoryMovies {
		for _, instance := range cfg.Arrs.RadarrInstances {
			if instance.Enabled == nil || !*instance.Enabled {
				continue
			}
			client := s.radarrClient(instance)
			if _, err := client.SendCommandContext(ctx, &radarr.CommandRequest{Name: "RefreshMovie"}); err != nil {
				s.logger.Warn("radarr refresh failed", "instance", instance.Name, "error", err)
				continue
			}
			s.logger.Info("triggered radarr refresh", "instance", instance.Name)
		}
		return
	}

	for _, instance := range cfg.Arrs.SonarrInstances {
		if instance.Enabled == nil || !*instance.Enabled {
			continue
		}
		client := s.sonarrClient(instance)
		if _, err := client.SendCommandContext(ctx, &sonarr.CommandRequest{Name: "RefreshSeries"}); err != nil {
			s.logger.Warn("sonarr refresh failed", "instance", instance.Name, "error", err)
			continue
		}
		s.logger.Info("triggered sonarr refresh", "instance", instance.Name)
	}
}
