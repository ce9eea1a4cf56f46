package commands

import (
	"errors"
	"log/slog"

	"boxoffice-backend/lib/restyutil"
	"boxoffice-backend/lib/scrapers/mojo"
	"boxoffice-backend/lib/serviceutil"
	"boxoffice-backend/services/batch"

	"github.com/spf13/cobra"
)

var (
	collectStart     *string
	collectEnd       *string
	collectStrategy  *string
	collectDb        *string
	collectDebugHttp *bool
)

func init() {
	collectStart = collectCmd.Flags().String("start", "", "First date of the range, YYYY-MM-DD.")
	collectEnd = collectCmd.Flags().String("end", "", "Last date of the range, YYYY-MM-DD.")
	collectStrategy = collectCmd.Flags().String("strategy", "", "Date selection: daily, weekly, biweekly or smart.")
	collectDb = collectCmd.Flags().String("db", "", "Listing database path, overrides the config.")
	collectDebugHttp = collectCmd.Flags().Bool("debug-http", false, "Write request/response transcripts to .dev/resty/mojo.")
	collectCmd.MarkFlagRequired("start")
	collectCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(collectCmd)
}

var collectCmd = &cobra.Command{
	Use:   "collect --start <date> --end <date> [--strategy <name>]",
	Short: "Scrapes daily listing pages across a date range into the listing database.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		start, err := parseDay(*collectStart)
		if err != nil {
			serviceutil.Fatal("invalid --start date", err)
		}
		end, err := parseDay(*collectEnd)
		if err != nil {
			serviceutil.Fatal("invalid --end date", err)
		}

		strategyName := *collectStrategy
		if strategyName == "" {
			strategyName = cfg.Strategy
		}
		strategy, err := batch.ParseStrategy(strategyName)
		if err != nil {
			serviceutil.Fatal("invalid --strategy", err)
		}

		dbPath := *collectDb
		if dbPath == "" {
			dbPath = cfg.BatchDbPath
		}
		store, err := batch.OpenStore(dbPath)
		if err != nil {
			serviceutil.Fatal("failed to open listing database", err)
		}
		defer store.Close()

		fetcher := mojo.NewClient(mojo.ClientOptions{})
		if *collectDebugHttp {
			fetcher.SetInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/mojo"))
		}

		collector := batch.Collector{
			Fetcher:  fetcher,
			Store:    store,
			Strategy: strategy,
		}

		summary, err := collector.Run(ctx, start, end)
		if errors.Is(err, batch.ErrRateLimited) {
			slog.Warn("provider rate limited, completed dates are saved, re-run later to resume")
		} else if err != nil {
			serviceutil.Fatal("collection failed", err)
		}

		slog.Info("collection finished",
			"planned", summary.Planned,
			"skipped", summary.Skipped,
			"collected", summary.Collected,
			"empty", summary.Empty,
			"failed", summary.Failed,
			"records", summary.Records,
		)
	},
}
