package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"boxoffice-backend/lib/configutil"
	"boxoffice-backend/lib/serviceutil"
	"boxoffice-backend/lib/timezone"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"gopkg.in/guregu/null.v3"
)

var rootCmd = &cobra.Command{
	Use:   "boxoffice-cli",
	Short: "boxoffice-cli collects box office listings and builds a per-movie first-week dataset.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	DatasetPath    string  `json:"dataset_path"`
	BatchDbPath    string  `json:"batch_db_path"`
	Strategy       string  `json:"strategy"`
	MatchThreshold float64 `json:"match_threshold"`
	TrailerWorkers int     `json:"trailer_workers"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("boxoffice.json5")
	if err != nil {
		slog.Debug("no boxoffice.json5, using defaults", "err", err)
	}
	if cfg.DatasetPath == "" {
		cfg.DatasetPath = "movies.csv"
	}
	if cfg.BatchDbPath == "" {
		cfg.BatchDbPath = "listings.db"
	}
	if cfg.Strategy == "" {
		cfg.Strategy = "smart"
	}
	if cfg.TrailerWorkers == 0 {
		cfg.TrailerWorkers = 4
	}
	return cfg
}

// Secrets only ever come from the environment (or a .env file loaded
// at startup), never from config files or flags.
type Secrets struct {
	TmdbApiKey     string   `envconfig:"TMDB_API_KEY"`
	YoutubeApiKeys []string `envconfig:"YOUTUBE_API_KEYS"`
}

func loadSecrets() Secrets {
	var secrets Secrets
	if err := envconfig.Process("", &secrets); err != nil {
		serviceutil.Fatal("failed to read environment", err)
	}
	return secrets
}

func parseDay(text string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, text, timezone.Location)
}

func releaseYear(date null.String) int {
	if !date.Valid {
		return 0
	}
	parsed, err := parseDay(date.String)
	if err != nil {
		return 0
	}
	return parsed.Year()
}
