package commands

import (
	"os"
	"time"

	"boxoffice-backend/lib/serviceutil"
	"boxoffice-backend/services/batch"
	"boxoffice-backend/services/dataset"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prints dataset and listing database progress.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		rows, err := dataset.Load(cfg.DatasetPath)
		if err != nil {
			serviceutil.Fatal("failed to load dataset", err)
		}

		withRelease, withFeatures, withTrailers := 0, 0, 0
		for _, row := range rows {
			if row.ReleaseDate.Valid {
				withRelease++
			}
			if row.FirstWeekGross.Valid {
				withFeatures++
			}
			if row.TrailerViews.Valid {
				withTrailers++
			}
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Dataset", cfg.DatasetPath})
		t.AppendRow(table.Row{"movies", len(rows)})
		t.AppendRow(table.Row{"with release date", withRelease})
		t.AppendRow(table.Row{"with first-week features", withFeatures})
		t.AppendRow(table.Row{"with trailer stats", withTrailers})
		t.SetStyle(table.StyleRounded)
		t.Render()

		store, err := batch.OpenStore(cfg.BatchDbPath)
		if err != nil {
			serviceutil.Fatal("failed to open listing database", err)
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to read listing stats", err)
		}

		t = table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Listings", cfg.BatchDbPath})
		t.AppendRow(table.Row{"dates scraped", stats.Dates})
		t.AppendRow(table.Row{"records", stats.Records})
		if !stats.LastScraped.IsZero() {
			t.AppendRow(table.Row{"last scraped", stats.LastScraped.Format(time.DateTime)})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
