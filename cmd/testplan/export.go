package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpattn/testplan/internal/domain"
	"github.com/rpattn/testplan/internal/export"
)

func newExportCmd() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "export <workspaceId> <out.xlsx|out.csv>",
		Short: "Write the workspace test cases to a spreadsheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workspaceID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid workspace id: %w", err)
			}
			format, err := export.ParseFormat(args[1])
			if err != nil {
				return err
			}

			b, err := openBackend(cmd.Context(), false, false)
			if err != nil {
				return err
			}
			defer b.close()

			sch, err := b.service.LoadSchema(cmd.Context(), workspaceID)
			if err != nil {
				return err
			}
			list, err := b.service.ListTestCases(cmd.Context(), workspaceID, domain.NewFilterSet().WithSearchQuery(query), domain.DefaultTestCaseSort())
			if err != nil {
				return err
			}

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			if err := export.Write(out, format, sch, list.Items); err != nil {
				_ = out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d of %d test cases to %s\n", len(list.Items), list.Total, args[1])
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only export test cases whose title or description contains this text")
	return cmd
}
