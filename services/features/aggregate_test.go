package features

import (
	"fmt"
	"testing"
	"time"

	"boxoffice-backend/lib/scrapers/mojo"
	"boxoffice-backend/services/batch"

	"github.com/mazen160/go-random"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

func dailyRow(date time.Time, title string, theaters, gross int64) mojo.DailyRecord {
	return mojo.DailyRecord{
		Date:       date,
		Title:      title,
		Theaters:   null.IntFrom(theaters),
		DailyGross: null.IntFrom(gross),
	}
}

func TestAggregateFirstWeekScenario(t *testing.T) {
	release := day(2024, 7, 19)
	matched := MatchResult{
		Method: MatchContains,
		Records: []mojo.DailyRecord{
			// out of order on purpose, the reducer re-sorts
			dailyRow(release.AddDate(0, 0, 3), "Test Movie", 2500, 800000),
			dailyRow(release, "Test Movie", 2000, 1000000),
		},
	}

	row, ok := Aggregate(matched, Movie{TmdbID: 42, Title: "Test Movie", ReleaseDate: release})
	require.True(t, ok)

	require.Equal(t, null.IntFrom(2000), row.OpeningTheaters)
	require.Equal(t, null.IntFrom(1000000), row.OpeningGross)
	require.Equal(t, null.IntFrom(2500), row.PeakTheatersWk1)
	require.Equal(t, null.IntFrom(1800000), row.FirstWeekGross)
	require.Equal(t, 2, row.FirstWeekDaysTracked)
	require.Equal(t, null.FloatFrom(900000), row.DailyGrossMean)
	require.Equal(t, null.FloatFrom(1.25), row.TheaterExpansion)
}

func TestAggregateWindowIsSevenDaysInclusive(t *testing.T) {
	release := day(2024, 7, 19)
	matched := MatchResult{
		Method: MatchContains,
		Records: []mojo.DailyRecord{
			dailyRow(release.AddDate(0, 0, -1), "Test Movie", 100, 100),
			dailyRow(release.AddDate(0, 0, 6), "Test Movie", 2000, 500000),
			dailyRow(release.AddDate(0, 0, 7), "Test Movie", 3000, 900000),
		},
	}

	row, ok := Aggregate(matched, Movie{Title: "Test Movie", ReleaseDate: release})
	require.True(t, ok)

	// only day six survives: the preview day and day seven are outside
	require.Equal(t, 1, row.FirstWeekDaysTracked)
	require.Equal(t, null.IntFrom(500000), row.FirstWeekGross)
	require.Equal(t, null.IntFrom(2000), row.OpeningTheaters)
}

func TestAggregateNoWindowedRecordsNoRow(t *testing.T) {
	release := day(2024, 7, 19)
	matched := MatchResult{
		Method: MatchContains,
		Records: []mojo.DailyRecord{
			dailyRow(release.AddDate(0, 0, 30), "Test Movie", 2000, 500000),
		},
	}

	_, ok := Aggregate(matched, Movie{Title: "Test Movie", ReleaseDate: release})
	require.False(t, ok)
}

func TestAggregateNullsStayNull(t *testing.T) {
	release := day(2024, 7, 19)
	matched := MatchResult{
		Method: MatchContains,
		Records: []mojo.DailyRecord{
			{Date: release, Title: "Test Movie"},
		},
	}

	row, ok := Aggregate(matched, Movie{Title: "Test Movie", ReleaseDate: release})
	require.True(t, ok)

	require.False(t, row.OpeningGross.Valid)
	require.False(t, row.FirstWeekGross.Valid)
	require.False(t, row.TheatersMean.Valid)
	require.False(t, row.TheaterExpansion.Valid)
	require.False(t, row.PerTheaterDrift.Valid)
	require.Equal(t, 1, row.FirstWeekDaysTracked)
}

// any sampling interval of at most seven days lands at least one sample
// inside every first-week window, so every movie with full listing
// coverage gets a feature row regardless of release date or sampling
// offset
func TestSamplingIntervalCoversEveryWindow(t *testing.T) {
	for trial := 0; trial < 50; trial++ {
		interval, err := random.IntRange(1, 8)
		require.NoError(t, err)
		offset, err := random.IntRange(0, 14)
		require.NoError(t, err)
		releaseOffset, err := random.IntRange(0, 300)
		require.NoError(t, err)

		release := day(2024, 1, 1).AddDate(0, 0, releaseOffset)
		title := fmt.Sprintf("Test Movie %d", trial)

		rangeStart := day(2024, 1, 1).AddDate(0, 0, offset)
		rangeEnd := day(2024, 12, 31)
		sampled := batch.IntervalStrategy{Days: interval}.Dates(rangeStart, rangeEnd)

		// the movie runs every day of its first week; the batch only
		// holds the sampled subset of those days
		var records []mojo.DailyRecord
		for _, date := range sampled {
			if date.Before(release) || date.After(release.AddDate(0, 0, 6)) {
				continue
			}
			records = append(records, dailyRow(date, title, 2000, 1000000))
		}

		_, ok := BuildRow(records, Movie{Title: title, ReleaseDate: release}, Matcher{})
		require.True(t, ok,
			"interval=%d offset=%d release=%s", interval, offset, release.Format(time.DateOnly))
	}
}
