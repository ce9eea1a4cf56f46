package commands

import (
	"errors"
	"log/slog"

	"boxoffice-backend/lib/keypool"
	"boxoffice-backend/lib/scrapers/youtube"
	"boxoffice-backend/lib/serviceutil"
	"boxoffice-backend/services/dataset"
	"boxoffice-backend/services/trailers"

	"github.com/spf13/cobra"
)

var trailersRefresh *bool

func init() {
	trailersRefresh = trailersCmd.Flags().Bool("refresh", false, "Re-fetch stats for movies that already have a trailer.")
	rootCmd.AddCommand(trailersCmd)
}

var trailersCmd = &cobra.Command{
	Use:   "trailers [--refresh]",
	Short: "Looks up trailer video ids and engagement counts for dataset movies.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		secrets := loadSecrets()

		keys, err := keypool.New(secrets.YoutubeApiKeys)
		if err != nil {
			serviceutil.Fatal("no video platform api keys in the environment", err)
		}
		client, err := youtube.NewClient(youtube.ClientOptions{Keys: keys})
		if err != nil {
			serviceutil.Fatal("failed to initialize video client", err)
		}

		rows, err := dataset.Load(cfg.DatasetPath)
		if err != nil {
			serviceutil.Fatal("failed to load dataset", err)
		}
		if len(rows) == 0 {
			slog.Info("dataset is empty, run discover first")
			return
		}

		var targets []trailers.Target
		for _, row := range rows {
			if row.TrailerViews.Valid && !*trailersRefresh {
				continue
			}
			targets = append(targets, trailers.Target{
				TmdbID:  row.TmdbID,
				Title:   row.Title,
				Year:    releaseYear(row.ReleaseDate),
				VideoID: row.TrailerVideoID,
			})
		}
		slog.Info("looking up trailers", "movies", len(targets))

		enricher := trailers.Enricher{Client: client, Workers: cfg.TrailerWorkers}
		results, summary, err := enricher.Run(ctx, targets)
		exhausted := errors.Is(err, keypool.ErrExhausted)
		if err != nil && !exhausted {
			serviceutil.Fatal("trailer enrichment failed", err)
		}

		var updates []dataset.MovieRow
		for _, info := range results {
			updates = append(updates, dataset.MovieRow{
				TmdbID:          info.TmdbID,
				TrailerVideoID:  info.VideoID,
				TrailerViews:    info.Views,
				TrailerLikes:    info.Likes,
				TrailerComments: info.Comments,
			})
		}
		merged := dataset.Merge(rows, updates)
		if err := dataset.Save(cfg.DatasetPath, merged); err != nil {
			serviceutil.Fatal("failed to save dataset", err)
		}

		slog.Info("trailer pass finished",
			"processed", summary.Processed,
			"found", summary.Found,
			"failed", summary.Failed,
		)
		if exhausted {
			slog.Warn("api quota exhausted, partial results saved, re-run later to resume")
		}
	},
}
