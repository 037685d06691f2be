package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rpattn/testplan/internal/config"
	"github.com/rpattn/testplan/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "testplan",
	Short: "testplan - test cases and test runs with workspace defined properties",
	Long: `testplan stores test cases and test runs annotated with a per-workspace
schema of typed properties (text, number, single select) and serves a JSON API
to filter, edit and group them.

Examples:
  # Run the API against PostgreSQL
  testplan serve --config ./deploy

  # Try it without a database
  testplan serve --memory

  # Load property definitions into a workspace
  testplan schema import 123e4567-e89b-12d3-a456-426614174000 properties.yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	configPath string

	cfg    config.Config
	logger *zap.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "Directory holding config.yaml and .env")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newWorkspaceCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(newExportCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
