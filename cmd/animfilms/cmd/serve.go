package cmd

import (
	"animfilms-backend/internal/chrono"
	internaltel "animfilms-backend/internal/telemetry"
	"animfilms-backend/lib/serviceutil"
	"animfilms-backend/lib/telemetry"
	"animfilms-backend/services/films"
	"context"
	"log/slog"

	"github.com/spf13/cobra"
)

var port int

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "port to serve http on, overrides http.port")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refreshes the snapshot on an interval and serves it over http.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := serviceutil.SignalContext()

		config, err := loadConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		if port > 0 {
			config.Http.Port = port
		}

		t, err := telemetry.SetupFromEnv(ctx, "animfilms")
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
		defer t.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)

		db, err := config.OpenDB()
		if err != nil {
			serviceutil.Fatal("failed to open database", err)
		}
		defer db.Close()
		store := films.NewSqlStore(db)

		tel := internaltel.NewSlogAPI(slog.Default())
		job, err := films.NewJob(films.JobOptions{
			SourceUrl: config.Source.Url,
			Selector:  config.Source.Selector,
			Fetcher:   config.NewFetcher(verbose),
			Store:     store,
			Telemetry: tel,
			Notifier:  config.Notifier(),
		})
		if err != nil {
			serviceutil.Fatal("failed to create refresh job", err)
		}

		daemon := films.NewDaemon(job, chrono.NewStandardCron(tel), config.RefreshInterval())
		err = daemon.Start(ctx)
		if err != nil {
			serviceutil.Fatal("failed to schedule refresh", err)
		}
		defer daemon.Stop()

		server := films.NewServer(store, daemon)
		err = serviceutil.StartHttpServer(ctx, config.Http.Port, server.Handler())
		if err != nil {
			slog.Error("http server stopped", "err", err)
		}
	},
}
