package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/caltechlibrary/distillery-sub000/internal/catalog"
	"github.com/caltechlibrary/distillery-sub000/internal/config"
	"github.com/caltechlibrary/distillery-sub000/internal/deps"
	"github.com/caltechlibrary/distillery-sub000/internal/logging"
	"github.com/caltechlibrary/distillery-sub000/internal/storage"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and service connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([]table.Row, 0, len(statuses))
			for _, status := range statuses {
				detail := status.Detail
				if status.Available {
					detail = "ok"
				}
				rows = append(rows, table.Row{status.Name, status.Command, yesNo(status.Available), detail})
			}
			rendered := renderTable(table.Row{"Tool", "Command", "Available", "Detail"}, rows)
			fmt.Fprintln(out, rendered)

			missing := deps.MissingRequired(statuses)

			if remote {
				if err := checkRemote(cmd, cfg, out); err != nil {
					return err
				}
			}
			return missing
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Also check catalog and bucket connectivity")
	return cmd
}

func checkRemote(cmd *cobra.Command, cfg *config.Config, out io.Writer) error {
	client := catalog.NewClient(cfg)
	if err := client.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("catalog unreachable: %w", err)
	}
	fmt.Fprintln(out, "Catalog reachable")

	gateway, err := storage.NewGateway(cfg.Storage, logging.NewNop())
	if err != nil {
		return fmt.Errorf("init storage gateway: %w", err)
	}
	if err := gateway.CheckBucket(cmd.Context()); err != nil {
		return fmt.Errorf("bucket %s unreachable: %w", gateway.Bucket(), err)
	}
	fmt.Fprintf(out, "Bucket %s reachable\n", gateway.Bucket())
	return nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
