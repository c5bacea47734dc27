package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caltechlibrary/distillery-sub000/internal/catalog"
	"github.com/caltechlibrary/distillery-sub000/internal/deps"
	"github.com/caltechlibrary/distillery-sub000/internal/derivative"
	"github.com/caltechlibrary/distillery-sub000/internal/logging"
	"github.com/caltechlibrary/distillery-sub000/internal/notifications"
	"github.com/caltechlibrary/distillery-sub000/internal/pipeline"
	"github.com/caltechlibrary/distillery-sub000/internal/registrar"
	"github.com/caltechlibrary/distillery-sub000/internal/report"
	"github.com/caltechlibrary/distillery-sub000/internal/services/exiftool"
	"github.com/caltechlibrary/distillery-sub000/internal/services/magick"
	"github.com/caltechlibrary/distillery-sub000/internal/storage"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <collection-id>",
		Short: "Ingest one collection from the source folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			if err := deps.MissingRequired(statuses); err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			catalogClient := catalog.NewClient(cfg)
			gateway, err := storage.NewGateway(cfg.Storage, logger)
			if err != nil {
				return fmt.Errorf("init storage gateway: %w", err)
			}
			verifier := derivative.NewVerifier(
				magick.NewCLI(magick.WithBinary(cfg.Tools.MagickBinary)),
				exiftool.NewCLI(exiftool.WithBinary(cfg.Tools.ExifToolBinary)),
				logger,
			)
			reg := registrar.New(catalogClient, cfg.Ingest.UseStatement, logger)

			reports, err := report.Open(cfg)
			if err != nil {
				return fmt.Errorf("open report store: %w", err)
			}
			defer reports.Close()

			notifier := notifications.NewService(cfg)

			pipe := pipeline.New(cfg, catalogClient, gateway, verifier, reg, reports, notifier, logger)
			result, err := pipe.Run(signalCtx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s complete for collection %s\n", result.RunID, result.Collection)
			fmt.Fprintf(out, "Folders: %d processed, %d skipped\n", result.FoldersProcessed, result.FoldersSkipped)
			fmt.Fprintf(out, "Files:   %d processed, %d skipped\n", result.FilesProcessed, result.FilesSkipped)
			return nil
		},
	}
}
