package batch

import (
	"context"
	"errors"
	"testing"
	"time"

	"boxoffice-backend/lib/scrapers/mojo"

	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

type fakeFetcher struct {
	results map[string]mojo.DailyResult
	calls   map[string]int
}

func (f *fakeFetcher) FetchDaily(ctx context.Context, date time.Time) (mojo.DailyResult, error) {
	key := date.Format(time.DateOnly)
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[key]++
	result, ok := f.results[key]
	if !ok {
		return mojo.DailyResult{Date: date, Outcome: mojo.OutcomeNoData}, nil
	}
	result.Date = date
	return result, nil
}

func okResult(records ...mojo.DailyRecord) mojo.DailyResult {
	return mojo.DailyResult{Outcome: mojo.OutcomeOK, Records: records}
}

func record(date time.Time, rank int64, title string) mojo.DailyRecord {
	return mojo.DailyRecord{
		Date:       date,
		Rank:       null.IntFrom(rank),
		Title:      title,
		DailyGross: null.IntFrom(1000000 * rank),
	}
}

func TestCollectorRun(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	start := day(2024, 7, 15)
	end := day(2024, 7, 18)

	fetcher := &fakeFetcher{results: map[string]mojo.DailyResult{
		"2024-07-15": okResult(
			record(day(2024, 7, 15), 1, "Twisters"),
			record(day(2024, 7, 15), 2, "Longlegs"),
		),
		"2024-07-16": {Outcome: mojo.OutcomeNoData},
		"2024-07-17": okResult(record(day(2024, 7, 17), 1, "Twisters")),
		"2024-07-18": {Outcome: mojo.OutcomeTransient, Err: errors.New("tls handshake timeout")},
	}}

	collector := Collector{
		Fetcher:  fetcher,
		Store:    store,
		Strategy: IntervalStrategy{Days: 1},
		Attempts: 1,
	}

	summary, err := collector.Run(ctx, start, end)
	require.NoError(t, err)
	require.Equal(t, Summary{
		Planned:   4,
		Collected: 2,
		Empty:     1,
		Failed:    1,
		Records:   3,
	}, summary)

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
}

func TestCollectorSkipsCheckpointedDates(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	done := day(2024, 7, 15)
	require.NoError(t, store.RecordDay(ctx, done, []mojo.DailyRecord{
		record(done, 1, "Twisters"),
	}))

	fetcher := &fakeFetcher{results: map[string]mojo.DailyResult{
		"2024-07-16": okResult(record(day(2024, 7, 16), 1, "Twisters")),
	}}

	collector := Collector{
		Fetcher:  fetcher,
		Store:    store,
		Strategy: IntervalStrategy{Days: 1},
		Attempts: 1,
	}

	summary, err := collector.Run(ctx, done, day(2024, 7, 16))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 1, summary.Collected)
	require.Zero(t, fetcher.calls["2024-07-15"])
}

func TestCollectorHaltsOnRateLimit(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	fetcher := &fakeFetcher{results: map[string]mojo.DailyResult{
		"2024-07-15": okResult(record(day(2024, 7, 15), 1, "Twisters")),
		"2024-07-16": {Outcome: mojo.OutcomeRateLimited},
		"2024-07-17": okResult(record(day(2024, 7, 17), 1, "Twisters")),
	}}

	collector := Collector{
		Fetcher:  fetcher,
		Store:    store,
		Strategy: IntervalStrategy{Days: 1},
		Attempts: 1,
	}

	summary, err := collector.Run(ctx, day(2024, 7, 15), day(2024, 7, 17))
	require.ErrorIs(t, err, ErrRateLimited)
	require.Equal(t, 1, summary.Collected)
	require.Zero(t, fetcher.calls["2024-07-17"])

	// completed work survives the halt and is skipped on resume
	has, err := store.HasDate(ctx, day(2024, 7, 15))
	require.NoError(t, err)
	require.True(t, has)
}

func TestCollectorRetriesTransientFailures(t *testing.T) {
	store := setupStore(t)

	fetcher := &fakeFetcher{results: map[string]mojo.DailyResult{
		"2024-07-15": {Outcome: mojo.OutcomeTransient, Err: errors.New("connection reset")},
	}}

	collector := Collector{
		Fetcher:  fetcher,
		Store:    store,
		Strategy: IntervalStrategy{Days: 1},
		Attempts: 2,
	}

	summary, err := collector.Run(context.Background(), day(2024, 7, 15), day(2024, 7, 15))
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)
	require.Equal(t, 2, fetcher.calls["2024-07-15"])

	// no checkpoint marker, the next run tries again
	has, err := store.HasDate(context.Background(), day(2024, 7, 15))
	require.NoError(t, err)
	require.False(t, has)
}
