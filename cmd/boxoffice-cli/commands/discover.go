package commands

import (
	"log/slog"
	"strings"

	"boxoffice-backend/lib/scrapers/tmdb"
	"boxoffice-backend/lib/serviceutil"
	"boxoffice-backend/services/dataset"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/guregu/null.v3"
)

var (
	discoverFromYear *int
	discoverToYear   *int
	discoverLimit    *int
	discoverMinVotes *int
	discoverDetails  *bool
)

func init() {
	discoverFromYear = discoverCmd.Flags().Int("from-year", 2020, "Earliest primary release year to include.")
	discoverToYear = discoverCmd.Flags().Int("to-year", 2024, "Latest primary release year to include.")
	discoverLimit = discoverCmd.Flags().Int("limit", 200, "Maximum number of movies to pull.")
	discoverMinVotes = discoverCmd.Flags().Int("min-votes", 100, "Minimum vote count, filters out obscure entries.")
	discoverDetails = discoverCmd.Flags().Bool("details", true, "Fetch per-movie details (budget, revenue, runtime, genres).")
	rootCmd.AddCommand(discoverCmd)
}

var discoverCmd = &cobra.Command{
	Use:   "discover [--from-year <y>] [--to-year <y>] [--limit <n>]",
	Short: "Pulls movie identities from the catalog into the dataset.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()
		secrets := loadSecrets()

		client, err := tmdb.NewClient(tmdb.ClientOptions{ApiKey: secrets.TmdbApiKey})
		if err != nil {
			serviceutil.Fatal("failed to initialize catalog client", err)
		}

		movies, err := client.Discover(ctx, tmdb.DiscoverQuery{
			MinYear:      *discoverFromYear,
			MaxYear:      *discoverToYear,
			MinVoteCount: *discoverMinVotes,
			Limit:        *discoverLimit,
		})
		if err != nil {
			serviceutil.Fatal("discovery failed", err)
		}
		slog.Info("discovered movies", "count", len(movies))

		var updates []dataset.MovieRow
		for i, movie := range movies {
			row := dataset.MovieRow{
				TmdbID:     movie.ID,
				Title:      movie.Title,
				Popularity: null.FloatFrom(movie.Popularity),
			}
			if movie.ReleaseDate != "" {
				row.ReleaseDate = null.StringFrom(movie.ReleaseDate)
			}

			if *discoverDetails {
				details, err := client.Details(ctx, movie.ID)
				if err != nil {
					slog.Warn("detail fetch failed, keeping identity only",
						"movie_id", movie.ID,
						"title", movie.Title,
						"err", err,
					)
				} else {
					row.Budget = details.NullableBudget()
					row.Revenue = details.NullableRevenue()
					row.Runtime = details.NullableRuntime()
					if len(details.Genres) > 0 {
						names := lo.Map(details.Genres, func(g tmdb.Genre, _ int) string {
							return g.Name
						})
						row.Genres = null.StringFrom(strings.Join(names, "|"))
					}
				}
			}

			updates = append(updates, row)
			if (i+1)%25 == 0 {
				slog.Info("discovery progress", "done", i+1, "total", len(movies))
			}
		}

		existing, err := dataset.Load(cfg.DatasetPath)
		if err != nil {
			serviceutil.Fatal("failed to load dataset", err)
		}
		merged := dataset.Merge(existing, updates)
		if err := dataset.Save(cfg.DatasetPath, merged); err != nil {
			serviceutil.Fatal("failed to save dataset", err)
		}
		slog.Info("dataset updated", "path", cfg.DatasetPath, "rows", len(merged))
	},
}
