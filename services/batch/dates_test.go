package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIntervalStrategyDates(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 1, 31)

	daily := IntervalStrategy{Days: 1}.Dates(start, end)
	require.Len(t, daily, 31)
	require.Equal(t, start, daily[0])
	require.Equal(t, end, daily[30])

	weekly := IntervalStrategy{Days: 7}.Dates(start, end)
	require.Len(t, weekly, 5)
	require.Equal(t, day(2024, 1, 29), weekly[4])

	biweekly := IntervalStrategy{Days: 14}.Dates(start, end)
	require.Len(t, biweekly, 3)
}

func TestSmartStrategyDates(t *testing.T) {
	start := day(2024, 1, 1)
	end := day(2024, 12, 31)

	dates := SmartStrategy{}.Dates(start, end)

	fridays := 0
	for _, date := range dates {
		if date.Weekday() == time.Friday {
			fridays++
		}
	}
	// 2024 has 52 fridays
	require.Equal(t, 52, fridays)

	// holidays included exactly once even when they collide with a friday
	require.Contains(t, dates, day(2024, 12, 25))
	require.Contains(t, dates, day(2024, 7, 4))
	seen := map[time.Time]int{}
	for _, date := range dates {
		seen[date]++
	}
	for date, count := range seen {
		require.Equal(t, 1, count, "date appears twice: %s", date)
	}

	// sorted ascending
	for i := 1; i < len(dates); i++ {
		require.True(t, dates[i].After(dates[i-1]))
	}
}

func TestSmartStrategyRespectsBounds(t *testing.T) {
	start := day(2024, 6, 1)
	end := day(2024, 6, 30)

	dates := SmartStrategy{}.Dates(start, end)
	require.NotEmpty(t, dates)
	for _, date := range dates {
		require.False(t, date.Before(start))
		require.False(t, date.After(end))
	}
}

func TestParseStrategy(t *testing.T) {
	for name, gap := range map[string]int{
		"daily":    1,
		"weekly":   7,
		"biweekly": 14,
		"smart":    7,
	} {
		strategy, err := ParseStrategy(name)
		require.NoError(t, err)
		require.Equal(t, name, strategy.Name())
		require.Equal(t, gap, strategy.MaxGapDays())
	}

	_, err := ParseStrategy("hourly")
	require.Error(t, err)
}
