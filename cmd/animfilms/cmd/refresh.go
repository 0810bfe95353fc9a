package cmd

import (
	"animfilms-backend/cmd/animfilms/utils"
	internaltel "animfilms-backend/internal/telemetry"
	"animfilms-backend/lib/serviceutil"
	"animfilms-backend/services/films"
	"context"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(refreshCmd)
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Runs a single refresh of the snapshot and prints its outcome.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config, err := loadConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		db, err := config.OpenDB()
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer db.Close()

		store := films.NewSqlStore(db)
		job, err := films.NewJob(films.JobOptions{
			SourceUrl: config.Source.Url,
			Selector:  config.Source.Selector,
			Fetcher:   config.NewFetcher(verbose),
			Store:     store,
			Telemetry: internaltel.NewSlogAPI(slog.Default()),
			Notifier:  config.Notifier(),
		})
		if err != nil {
			serviceutil.Fatal("failed to create refresh job", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		outcome, err := job.Run(ctx)
		if err != nil {
			serviceutil.Fatal("refresh failed", err)
		}

		total, err := store.Count(ctx)
		if err != nil {
			serviceutil.Fatal("failed to count films", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Rows", "Stored", "Duplicates", "Skipped", "Malformed", "Failed", "Total films", "Took"})
		t.AppendRow(table.Row{
			outcome.Rows,
			outcome.Reconcile.Upserted,
			outcome.Reconcile.Duplicates,
			outcome.Skipped,
			outcome.Discarded,
			len(outcome.Reconcile.Failed),
			total,
			outcome.Duration.String(),
		})
		t.Render()

		if len(outcome.Skips) > 0 {
			skips := utils.NewTable()
			skips.AppendHeader(table.Row{"Row", "Field", "Reason"})
			for _, skip := range outcome.Skips {
				skips.AppendRow(table.Row{skip.Ordinal, skip.Field, skip.Reason})
			}
			skips.Render()
		}
	},
}
