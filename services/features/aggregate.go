package features

import (
	"slices"
	"time"

	"boxoffice-backend/lib/scrapers/mojo"
	"boxoffice-backend/lib/timezone"

	"gopkg.in/guregu/null.v3"
)

// FeatureRow is one movie's first-week statistics reduced from the raw
// daily batch. Every field except the identity columns is nullable; an
// aggregate over zero reported values stays null rather than becoming
// zero.
type FeatureRow struct {
	TmdbID      int64
	Title       string
	ReleaseDate time.Time
	MatchMethod string

	OpeningTheaters null.Int
	OpeningGross    null.Int

	FirstWeekGross       null.Int
	FirstWeekDaysTracked int
	DailyGrossMean       null.Float

	TheatersMean     null.Float
	PeakTheatersWk1  null.Int
	TheatersMin      null.Int
	PerTheaterMean   null.Float
	PerTheaterMax    null.Int
	PerTheaterMin    null.Int
	YDChangeMean     null.Float
	YDChangeMax      null.Float
	YDChangeMin      null.Float
	LWChangeMean     null.Float
	LWChangeMax      null.Float
	LWChangeMin      null.Float
	TheaterExpansion null.Float
	PerTheaterDrift  null.Float
}

// Aggregate windows the matched records to the movie's first week and
// reduces them to a FeatureRow. The window is [release, release+6days]
// inclusive. A movie with no windowed records yields ok=false and no
// row at all; absence of data is not a row of zeros.
//
// Pure over its inputs, safe to fan out across movies.
func Aggregate(matched MatchResult, movie Movie) (row FeatureRow, ok bool) {
	windowStart := timezone.Midnight(movie.ReleaseDate)
	windowEnd := windowStart.AddDate(0, 0, 6)

	var windowed []mojo.DailyRecord
	for _, record := range matched.Records {
		date := timezone.Midnight(record.Date)
		if date.Before(windowStart) || date.After(windowEnd) {
			continue
		}
		windowed = append(windowed, record)
	}
	if len(windowed) == 0 {
		return FeatureRow{}, false
	}

	// workers deliver dates in whatever order they finish
	slices.SortFunc(windowed, func(a, b mojo.DailyRecord) int {
		return a.Date.Compare(b.Date)
	})

	opening := windowed[0]
	row = FeatureRow{
		TmdbID:      movie.TmdbID,
		Title:       movie.Title,
		ReleaseDate: windowStart,
		MatchMethod: matched.Method.String(),

		OpeningTheaters: opening.Theaters,
		OpeningGross:    opening.DailyGross,

		FirstWeekGross:       sumInts(windowed, grossOf),
		FirstWeekDaysTracked: distinctDays(windowed),
		DailyGrossMean:       meanInts(windowed, grossOf),

		TheatersMean:    meanInts(windowed, theatersOf),
		PeakTheatersWk1: maxInts(windowed, theatersOf),
		TheatersMin:     minInts(windowed, theatersOf),
		PerTheaterMean:  meanInts(windowed, perTheaterOf),
		PerTheaterMax:   maxInts(windowed, perTheaterOf),
		PerTheaterMin:   minInts(windowed, perTheaterOf),
		YDChangeMean:    meanFloats(windowed, ydOf),
		YDChangeMax:     maxFloats(windowed, ydOf),
		YDChangeMin:     minFloats(windowed, ydOf),
		LWChangeMean:    meanFloats(windowed, lwOf),
		LWChangeMax:     maxFloats(windowed, lwOf),
		LWChangeMin:     minFloats(windowed, lwOf),
	}
	row.TheaterExpansion = ratio(row.PeakTheatersWk1, row.OpeningTheaters)
	row.PerTheaterDrift = drift(row.PerTheaterMean, opening.PerTheaterAvg)
	return row, true
}

// BuildRow matches a movie against the full batch and aggregates the
// result in one step.
func BuildRow(batch []mojo.DailyRecord, movie Movie, matcher Matcher) (FeatureRow, bool) {
	matched := matcher.Match(batch, movie)
	if matched.Method == MatchNone {
		return FeatureRow{}, false
	}
	return Aggregate(matched, movie)
}

func grossOf(r mojo.DailyRecord) null.Int      { return r.DailyGross }
func theatersOf(r mojo.DailyRecord) null.Int   { return r.Theaters }
func perTheaterOf(r mojo.DailyRecord) null.Int { return r.PerTheaterAvg }
func ydOf(r mojo.DailyRecord) null.Float       { return r.YDChangePct }
func lwOf(r mojo.DailyRecord) null.Float       { return r.LWChangePct }

func distinctDays(records []mojo.DailyRecord) int {
	days := map[time.Time]bool{}
	for _, record := range records {
		days[timezone.Midnight(record.Date)] = true
	}
	return len(days)
}

func sumInts(records []mojo.DailyRecord, value func(mojo.DailyRecord) null.Int) null.Int {
	total, seen := int64(0), false
	for _, record := range records {
		if v := value(record); v.Valid {
			total += v.Int64
			seen = true
		}
	}
	if !seen {
		return null.Int{}
	}
	return null.IntFrom(total)
}

func meanInts(records []mojo.DailyRecord, value func(mojo.DailyRecord) null.Int) null.Float {
	total, count := int64(0), 0
	for _, record := range records {
		if v := value(record); v.Valid {
			total += v.Int64
			count++
		}
	}
	if count == 0 {
		return null.Float{}
	}
	return null.FloatFrom(float64(total) / float64(count))
}

func maxInts(records []mojo.DailyRecord, value func(mojo.DailyRecord) null.Int) null.Int {
	var out null.Int
	for _, record := range records {
		if v := value(record); v.Valid && (!out.Valid || v.Int64 > out.Int64) {
			out = v
		}
	}
	return out
}

func minInts(records []mojo.DailyRecord, value func(mojo.DailyRecord) null.Int) null.Int {
	var out null.Int
	for _, record := range records {
		if v := value(record); v.Valid && (!out.Valid || v.Int64 < out.Int64) {
			out = v
		}
	}
	return out
}

func meanFloats(records []mojo.DailyRecord, value func(mojo.DailyRecord) null.Float) null.Float {
	total, count := 0.0, 0
	for _, record := range records {
		if v := value(record); v.Valid {
			total += v.Float64
			count++
		}
	}
	if count == 0 {
		return null.Float{}
	}
	return null.FloatFrom(total / float64(count))
}

func maxFloats(records []mojo.DailyRecord, value func(mojo.DailyRecord) null.Float) null.Float {
	var out null.Float
	for _, record := range records {
		if v := value(record); v.Valid && (!out.Valid || v.Float64 > out.Float64) {
			out = v
		}
	}
	return out
}

func minFloats(records []mojo.DailyRecord, value func(mojo.DailyRecord) null.Float) null.Float {
	var out null.Float
	for _, record := range records {
		if v := value(record); v.Valid && (!out.Valid || v.Float64 < out.Float64) {
			out = v
		}
	}
	return out
}

// peak over opening, null when either side is null or opening is zero
func ratio(peak, opening null.Int) null.Float {
	if !peak.Valid || !opening.Valid || opening.Int64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(float64(peak.Int64) / float64(opening.Int64))
}

// (mean - opening) / opening, null when either side is null or opening
// is zero
func drift(mean null.Float, opening null.Int) null.Float {
	if !mean.Valid || !opening.Valid || opening.Int64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom((mean.Float64 - float64(opening.Int64)) / float64(opening.Int64))
}
