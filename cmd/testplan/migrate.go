package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rpattn/testplan/internal/db"
)

func newMigrateCmd() *cobra.Command {
	var down bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.NewConnection(cmd.Context(), cfg.Database, logger)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer conn.Close()

			if down {
				if err := db.RollbackMigrations(conn.Pool); err != nil {
					return err
				}
				logger.Info("migrations rolled back")
				return nil
			}
			if err := db.RunMigrations(conn.Pool); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "Roll back every migration")
	return cmd
}
