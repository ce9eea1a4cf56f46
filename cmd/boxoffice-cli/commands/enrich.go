package commands

import (
	"log/slog"

	"boxoffice-backend/lib/serviceutil"
	"boxoffice-backend/services/batch"
	"boxoffice-backend/services/dataset"
	"boxoffice-backend/services/features"

	"github.com/spf13/cobra"
	"gopkg.in/guregu/null.v3"
)

var (
	enrichDb        *string
	enrichThreshold *float64
)

func init() {
	enrichDb = enrichCmd.Flags().String("db", "", "Listing database path, overrides the config.")
	enrichThreshold = enrichCmd.Flags().Float64("threshold", 0, "Title similarity threshold, overrides the config.")
	rootCmd.AddCommand(enrichCmd)
}

var enrichCmd = &cobra.Command{
	Use:   "enrich [--db <path>] [--threshold <0..1>]",
	Short: "Computes first-week features from the listing batch and merges them into the dataset.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		rows, err := dataset.Load(cfg.DatasetPath)
		if err != nil {
			serviceutil.Fatal("failed to load dataset", err)
		}
		if len(rows) == 0 {
			slog.Info("dataset is empty, run discover first")
			return
		}

		dbPath := *enrichDb
		if dbPath == "" {
			dbPath = cfg.BatchDbPath
		}
		store, err := batch.OpenStore(dbPath)
		if err != nil {
			serviceutil.Fatal("failed to open listing database", err)
		}
		defer store.Close()

		records, err := store.LoadAll(ctx)
		if err != nil {
			serviceutil.Fatal("failed to load listing batch", err)
		}
		slog.Info("loaded listing batch", "records", len(records))

		threshold := *enrichThreshold
		if threshold == 0 {
			threshold = cfg.MatchThreshold
		}
		matcher := features.Matcher{Threshold: threshold}

		var updates []dataset.MovieRow
		matched, skipped := 0, 0
		for _, row := range rows {
			if !row.ReleaseDate.Valid {
				skipped++
				continue
			}
			release, err := parseDay(row.ReleaseDate.String)
			if err != nil {
				skipped++
				continue
			}

			feature, ok := features.BuildRow(records, features.Movie{
				TmdbID:      row.TmdbID,
				Title:       row.Title,
				ReleaseDate: release,
			}, matcher)
			if !ok {
				skipped++
				continue
			}
			matched++
			updates = append(updates, featureUpdate(feature))
		}
		slog.Info("feature pass finished", "matched", matched, "skipped", skipped)

		merged := dataset.Merge(rows, updates)
		if err := dataset.Save(cfg.DatasetPath, merged); err != nil {
			serviceutil.Fatal("failed to save dataset", err)
		}
		slog.Info("dataset updated", "path", cfg.DatasetPath, "rows", len(merged))
	},
}

func featureUpdate(row features.FeatureRow) dataset.MovieRow {
	return dataset.MovieRow{
		TmdbID:               row.TmdbID,
		Title:                row.Title,
		MatchMethod:          null.StringFrom(row.MatchMethod),
		OpeningTheaters:      row.OpeningTheaters,
		OpeningGross:         row.OpeningGross,
		FirstWeekGross:       row.FirstWeekGross,
		FirstWeekDaysTracked: null.IntFrom(int64(row.FirstWeekDaysTracked)),
		DailyGrossMean:       row.DailyGrossMean,
		TheatersMean:         row.TheatersMean,
		PeakTheatersWk1:      row.PeakTheatersWk1,
		TheatersMin:          row.TheatersMin,
		PerTheaterMean:       row.PerTheaterMean,
		PerTheaterMax:        row.PerTheaterMax,
		PerTheaterMin:        row.PerTheaterMin,
		YDChangeMean:         row.YDChangeMean,
		YDChangeMax:          row.YDChangeMax,
		YDChangeMin:          row.YDChangeMin,
		LWChangeMean:         row.LWChangeMean,
		LWChangeMax:          row.LWChangeMax,
		LWChangeMin:          row.LWChangeMin,
		TheaterExpansion:     row.TheaterExpansion,
		PerTheaterDrift:      row.PerTheaterDrift,
	}
}
