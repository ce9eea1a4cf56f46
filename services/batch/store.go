package batch

import (
	"context"
	"database/sql"
	"time"

	"boxoffice-backend/lib/scrapers/mojo"
	"boxoffice-backend/lib/timezone"
	"boxoffice-backend/services/batch/db"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Store persists the raw daily batch: every DailyRecord ever scraped,
// plus one marker row per completed date. The markers are the
// checkpoint unit; a resumed collection skips any date that has one,
// including dates that yielded zero records.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) (Store, error) {
	_, err := database.Exec(db.Schema)
	if err != nil {
		return Store{}, err
	}
	return Store{db: database}, nil
}

func OpenStore(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	return NewStore(database)
}

func (s Store) Close() error {
	return s.db.Close()
}

// HasDate reports whether date was already scraped successfully.
func (s Store) HasDate(ctx context.Context, date time.Time) (bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM scraped_dates WHERE date = ?`,
		date.Format(time.DateOnly),
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordDay checkpoints one scraped date: its records and its marker
// row commit in the same transaction, so an interrupted run never sees
// a marker without rows or rows without a marker.
func (s Store) RecordDay(ctx context.Context, date time.Time, records []mojo.DailyRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	dateStr := date.Format(time.DateOnly)
	_, err = tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO scraped_dates (date, record_count, scraped_at) VALUES (?, ?, ?)`,
		dateStr, len(records), timezone.Now().Unix(),
	)
	if err != nil {
		return err
	}

	for _, record := range records {
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO daily_records (
				date, rank, title, url, daily_gross, yd_change_pct, lw_change_pct,
				theaters, per_theater_avg, to_date_gross, days_in_release, distributor
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			dateStr,
			record.Rank,
			record.Title,
			record.URL,
			record.DailyGross,
			record.YDChangePct,
			record.LWChangePct,
			record.Theaters,
			record.PerTheaterAvg,
			record.ToDateGross,
			record.DaysInRelease,
			record.Distributor,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadAll returns every record in the batch ordered by date. The
// aggregator re-sorts per movie anyway, but a stable order makes the
// output reproducible.
func (s Store) LoadAll(ctx context.Context) ([]mojo.DailyRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT date, rank, title, url, daily_gross, yd_change_pct, lw_change_pct,
			theaters, per_theater_avg, to_date_gross, days_in_release, distributor
		FROM daily_records ORDER BY date, rank`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []mojo.DailyRecord
	for rows.Next() {
		var dateStr string
		var record mojo.DailyRecord
		err := rows.Scan(
			&dateStr,
			&record.Rank,
			&record.Title,
			&record.URL,
			&record.DailyGross,
			&record.YDChangePct,
			&record.LWChangePct,
			&record.Theaters,
			&record.PerTheaterAvg,
			&record.ToDateGross,
			&record.DaysInRelease,
			&record.Distributor,
		)
		if err != nil {
			return nil, err
		}
		record.Date, err = time.ParseInLocation(time.DateOnly, dateStr, timezone.Location)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type StoreStats struct {
	Dates   int
	Records int
	// zero time when the store is empty
	LastScraped time.Time
}

func (s Store) Stats(ctx context.Context) (StoreStats, error) {
	var stats StoreStats

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*), COALESCE(MAX(scraped_at), 0) FROM scraped_dates`,
	)
	var lastScraped int64
	if err := row.Scan(&stats.Dates, &lastScraped); err != nil {
		return stats, err
	}
	if lastScraped > 0 {
		stats.LastScraped = time.Unix(lastScraped, 0).In(timezone.Location)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM daily_records`)
	if err := row.Scan(&stats.Records); err != nil {
		return stats, err
	}
	return stats, nil
}
