package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rpattn/testplan/internal/schema"
)

func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces",
	}

	var description string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a workspace and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			defer b.close()

			workspace, err := b.service.CreateWorkspace(cmd.Context(), args[0], description)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), workspace.ID)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "Workspace description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(cmd.Context(), false, false)
			if err != nil {
				return err
			}
			defer b.close()

			workspaces, err := b.service.ListWorkspaces(cmd.Context())
			if err != nil {
				return err
			}
			for _, workspace := range workspaces {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", workspace.ID, workspace.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage workspace property schemas",
	}

	importCmd := &cobra.Command{
		Use:   "import <workspaceId> <file.yaml>",
		Short: "Add the properties declared in a YAML file to a workspace",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspaceID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid workspace id: %w", err)
			}

			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			configs, err := schema.LoadSeed(f, workspaceID)
			if err != nil {
				return err
			}

			b, err := openBackend(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			defer b.close()

			if _, err := b.service.GetWorkspace(cmd.Context(), workspaceID); err != nil {
				return err
			}
			for _, property := range configs {
				created, err := b.service.AddProperty(cmd.Context(), property)
				if err != nil {
					return fmt.Errorf("failed to add property %q: %w", property.Title, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", created.ID, created.Type, created.Title)
			}
			logger.Info("schema imported", zap.Stringer("workspace_id", workspaceID), zap.Int("properties", len(configs)))
			return nil
		},
	}
	cmd.AddCommand(importCmd)
	return cmd
}
