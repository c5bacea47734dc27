package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/caltechlibrary/distillery-sub000/internal/report"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect recorded ingest runs",
	}

	reportCmd.AddCommand(newReportRunsCommand(ctx))
	reportCmd.AddCommand(newReportOutcomesCommand(ctx))

	return reportCmd
}

func newReportRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent ingest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReportStore(func(store *report.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}

				rows := make([]table.Row, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, table.Row{
						run.ID,
						run.Collection,
						run.Status,
						run.StartedAt.Local().Format(time.RFC3339),
						formatFinished(run),
						strconv.Itoa(run.FoldersProcessed),
						strconv.Itoa(run.FoldersSkipped),
						strconv.Itoa(run.FilesProcessed),
						strconv.Itoa(run.FilesSkipped),
					})
				}
				rendered := renderTable(
					table.Row{"Run", "Collection", "Status", "Started", "Finished", "Folders", "F-Skip", "Files", "Skip"},
					rows,
					6, 7, 8, 9,
				)
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func newReportOutcomesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outcomes <run-id>",
		Short: "List per-file outcomes for a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReportStore(func(store *report.Store) error {
				outcomes, err := store.ListOutcomes(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(outcomes) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No outcomes recorded for run "+args[0])
					return nil
				}

				rows := make([]table.Row, 0, len(outcomes))
				for _, outcome := range outcomes {
					detail := outcome.StorageKey
					if outcome.Status == report.OutcomeSkipped {
						detail = outcome.Reason
					}
					rows = append(rows, table.Row{
						outcome.Folder,
						outcome.SourcePath,
						outcome.ComponentID,
						outcome.Status,
						detail,
					})
				}
				rendered := renderTable(
					table.Row{"Folder", "Source", "Component", "Status", "Key / Reason"},
					rows,
				)
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return nil
			})
		},
	}
	return cmd
}

func formatFinished(run *report.Run) string {
	if run.FinishedAt == nil {
		return "-"
	}
	return run.FinishedAt.Local().Format(time.RFC3339)
}
