package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javi11/trendarr/internal/trending"
)

var runCategory string

func init() {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single trending sync and exit",
		RunE:  runOnce,
	}
	runCmd.Flags().StringVar(&runCategory, "category", "", "limit the sync to one category (movies or tv)")

	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	_, service, logger, err := loadAndSetup()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	switch runCategory {
	case "":
		if err := service.SyncAll(ctx); err != nil {
			return err
		}
	case "movies":
		if err := service.SyncCategory(ctx, trending.CategoryMovies); err != nil {
			return err
		}
	case "tv":
		if err := service.SyncCategory(ctx, trending.CategoryTV); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown category %q (expected movies or tv)", runCategory)
	}

	logger.Info("trending sync finished")
	return nil
}
