package cmd

import (
	"os/signal"
	"sync"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var syncOnStart bool

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run trending syncs on the configured schedules",
		Long:  `Run as a daemon, executing a trending sync on every configured cron schedule.`,
		RunE:  runServe,
	}
	serveCmd.Flags().BoolVar(&syncOnStart, "sync-on-start", true, "run one sync immediately on startup")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, service, logger, err := loadAndSetup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A schedule firing while a sync is still running is skipped.
	var running sync.Mutex
	runSync := func() {
		if !running.TryLock() {
			logger.Warn("previous sync still running, skipping this schedule")
			return
		}
		defer running.Unlock()

		if err := service.SyncAll(ctx); err != nil {
			logger.Error("trending sync failed", "err", err)
		}
	}

	scheduler := cron.New()
	for _, schedule := range cfg.Sync.Schedules {
		if _, err := scheduler.AddFunc(schedule, runSync); err != nil {
			logger.Error("invalid schedule", "schedule", schedule, "err", err)
			return err
		}
		logger.Info("registered sync schedule", "schedule", schedule)
	}

	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
	}()

	if syncOnStart {
		runSync()
	}

	logger.Info("trendarr daemon started", "schedules", len(cfg.Sync.Schedules))
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
