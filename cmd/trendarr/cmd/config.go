package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/javi11/trendarr/internal/config"
)

func init() {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Write a default configuration file",
		Long:  `Write a default configuration file to the --config path, ready to be filled in.`,
		RunE:  runConfig,
	}

	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file %s already exists, refusing to overwrite", configFile)
	}

	if err := config.SaveConfig(config.DefaultConfig(), configFile); err != nil {
		return err
	}

	fmt.Printf("Wrote default configuration to %s\n", configFile)
	return nil
}
