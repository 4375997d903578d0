package cmd

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/javi11/trendarr/internal/arrs"
	"github.com/javi11/trendarr/internal/config"
	"github.com/javi11/trendarr/internal/discord"
	"github.com/javi11/trendarr/internal/plex"
	"github.com/javi11/trendarr/internal/slogutil"
	"github.com/javi11/trendarr/internal/state"
	"github.com/javi11/trendarr/internal/syncer"
	"github.com/javi11/trendarr/internal/trakt"
)

// loadAndSetup loads configuration, wires log rotation, and builds the
// sync service all commands share.
func loadAndSetup() (*config.Config, *syncer.Service, *slog.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		slog.Default().Error("failed to load config", "err", err)
		return nil, nil, nil, err
	}

	logger := slogutil.SetupLogRotation(cfg.Log)
	slog.SetDefault(logger)

	configGetter := func() *config.Config { return cfg }
	fs := afero.NewOsFs()

	service := syncer.NewService(
		configGetter,
		trakt.NewClient(cfg.Trakt, logger),
		plex.NewClient(cfg.Plex, logger),
		discord.NewNotifier(cfg.Discord.WebhookURL, logger),
		state.NewStore(fs, cfg.Paths.StateDir, logger),
		arrs.NewService(configGetter, logger),
		fs,
		logger,
	)

	return cfg, service, logger, nil
}
