package batch

import (
	"fmt"
	"slices"
	"time"

	"boxoffice-backend/lib/timezone"
)

// Strategy selects which calendar dates within a range get scraped.
// Denser sampling captures more of each movie's first-week window at a
// proportional fetch cost. Any strategy whose MaxGapDays is at most 7
// is guaranteed to land at least one sample inside every first-week
// window it overlaps.
type Strategy interface {
	Name() string
	Dates(start, end time.Time) []time.Time
	// the largest possible gap, in days, between consecutive samples
	MaxGapDays() int
}

// IntervalStrategy samples every Nth day starting at the range start.
type IntervalStrategy struct {
	Days int
}

func (s IntervalStrategy) Name() string {
	switch s.Days {
	case 1:
		return "daily"
	case 7:
		return "weekly"
	case 14:
		return "biweekly"
	}
	return fmt.Sprintf("every-%d-days", s.Days)
}

func (s IntervalStrategy) MaxGapDays() int {
	return s.Days
}

func (s IntervalStrategy) Dates(start, end time.Time) []time.Time {
	start = timezone.Midnight(start)
	end = timezone.Midnight(end)

	var dates []time.Time
	for current := start; !current.After(end); current = current.AddDate(0, 0, s.Days) {
		dates = append(dates, current)
	}
	return dates
}

// SmartStrategy samples every Friday plus known high-traffic holiday
// dates. Theatrical releases cluster on Fridays, so this captures most
// first-week windows at a fraction of daily sampling's cost.
type SmartStrategy struct{}

func (SmartStrategy) Name() string {
	return "smart"
}

func (SmartStrategy) MaxGapDays() int {
	return 7
}

// month/day pairs of the high-traffic calendar dates added on top of
// the Friday schedule
var holidayDates = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},
	{time.February, 14},
	{time.March, 29},
	{time.May, 24},
	{time.July, 4},
	{time.November, 28},
	{time.December, 25},
}

func (SmartStrategy) Dates(start, end time.Time) []time.Time {
	start = timezone.Midnight(start)
	end = timezone.Midnight(end)

	included := map[time.Time]bool{}
	var dates []time.Time
	add := func(date time.Time) {
		if date.Before(start) || date.After(end) || included[date] {
			return
		}
		included[date] = true
		dates = append(dates, date)
	}

	firstFriday := start
	for firstFriday.Weekday() != time.Friday {
		firstFriday = firstFriday.AddDate(0, 0, 1)
	}
	for current := firstFriday; !current.After(end); current = current.AddDate(0, 0, 7) {
		add(current)
	}

	for year := start.Year(); year <= end.Year(); year++ {
		for _, holiday := range holidayDates {
			add(time.Date(year, holiday.month, holiday.day, 0, 0, 0, 0, timezone.Location))
		}
	}

	slices.SortFunc(dates, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return dates
}

// ParseStrategy maps a CLI name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "daily":
		return IntervalStrategy{Days: 1}, nil
	case "weekly":
		return IntervalStrategy{Days: 7}, nil
	case "biweekly":
		return IntervalStrategy{Days: 14}, nil
	case "smart":
		return SmartStrategy{}, nil
	}
	return nil, fmt.Errorf("unknown strategy: %s", name)
}
