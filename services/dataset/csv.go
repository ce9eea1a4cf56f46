package dataset

import (
	"fmt"
	"strconv"

	"gopkg.in/guregu/null.v3"
)

// column order of the persisted file, stable so downstream notebooks
// can rely on it
var header = []string{
	"tmdb_id",
	"title",
	"release_date",
	"genres",
	"popularity",
	"budget",
	"revenue",
	"runtime",
	"match_method",
	"opening_theaters",
	"opening_gross",
	"first_week_gross",
	"first_week_days_tracked",
	"daily_gross_mean",
	"theaters_mean",
	"peak_theaters_week1",
	"theaters_min",
	"per_theater_mean",
	"per_theater_max",
	"per_theater_min",
	"yd_change_mean",
	"yd_change_max",
	"yd_change_min",
	"lw_change_mean",
	"lw_change_max",
	"lw_change_min",
	"theater_expansion",
	"per_theater_drift",
	"trailer_video_id",
	"trailer_views",
	"trailer_likes",
	"trailer_comments",
}

func encodeRow(row MovieRow) []string {
	return []string{
		strconv.FormatInt(row.TmdbID, 10),
		row.Title,
		encodeString(row.ReleaseDate),
		encodeString(row.Genres),
		encodeFloat(row.Popularity),
		encodeInt(row.Budget),
		encodeInt(row.Revenue),
		encodeInt(row.Runtime),
		encodeString(row.MatchMethod),
		encodeInt(row.OpeningTheaters),
		encodeInt(row.OpeningGross),
		encodeInt(row.FirstWeekGross),
		encodeInt(row.FirstWeekDaysTracked),
		encodeFloat(row.DailyGrossMean),
		encodeFloat(row.TheatersMean),
		encodeInt(row.PeakTheatersWk1),
		encodeInt(row.TheatersMin),
		encodeFloat(row.PerTheaterMean),
		encodeInt(row.PerTheaterMax),
		encodeInt(row.PerTheaterMin),
		encodeFloat(row.YDChangeMean),
		encodeFloat(row.YDChangeMax),
		encodeFloat(row.YDChangeMin),
		encodeFloat(row.LWChangeMean),
		encodeFloat(row.LWChangeMax),
		encodeFloat(row.LWChangeMin),
		encodeFloat(row.TheaterExpansion),
		encodeFloat(row.PerTheaterDrift),
		encodeString(row.TrailerVideoID),
		encodeInt(row.TrailerViews),
		encodeInt(row.TrailerLikes),
		encodeInt(row.TrailerComments),
	}
}

func decodeRow(fields []string) (MovieRow, error) {
	if len(fields) != len(header) {
		return MovieRow{}, fmt.Errorf("expected %d columns, got %d", len(header), len(fields))
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return MovieRow{}, fmt.Errorf("parsing tmdb_id %q: %w", fields[0], err)
	}

	row := MovieRow{TmdbID: id, Title: fields[1]}
	row.ReleaseDate = decodeString(fields[2])
	row.Genres = decodeString(fields[3])

	strs := map[int]*null.String{
		8:  &row.MatchMethod,
		28: &row.TrailerVideoID,
	}
	for i, dst := range strs {
		*dst = decodeString(fields[i])
	}

	ints := map[int]*null.Int{
		5:  &row.Budget,
		6:  &row.Revenue,
		7:  &row.Runtime,
		9:  &row.OpeningTheaters,
		10: &row.OpeningGross,
		11: &row.FirstWeekGross,
		12: &row.FirstWeekDaysTracked,
		15: &row.PeakTheatersWk1,
		16: &row.TheatersMin,
		18: &row.PerTheaterMax,
		19: &row.PerTheaterMin,
		29: &row.TrailerViews,
		30: &row.TrailerLikes,
		31: &row.TrailerComments,
	}
	for i, dst := range ints {
		v, err := decodeInt(fields[i])
		if err != nil {
			return MovieRow{}, fmt.Errorf("parsing %s %q: %w", header[i], fields[i], err)
		}
		*dst = v
	}

	floats := map[int]*null.Float{
		4:  &row.Popularity,
		13: &row.DailyGrossMean,
		14: &row.TheatersMean,
		17: &row.PerTheaterMean,
		20: &row.YDChangeMean,
		21: &row.YDChangeMax,
		22: &row.YDChangeMin,
		23: &row.LWChangeMean,
		24: &row.LWChangeMax,
		25: &row.LWChangeMin,
		26: &row.TheaterExpansion,
		27: &row.PerTheaterDrift,
	}
	for i, dst := range floats {
		v, err := decodeFloat(fields[i])
		if err != nil {
			return MovieRow{}, fmt.Errorf("parsing %s %q: %w", header[i], fields[i], err)
		}
		*dst = v
	}

	return row, nil
}

func encodeString(v null.String) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

func decodeString(field string) null.String {
	if field == "" {
		return null.String{}
	}
	return null.StringFrom(field)
}

func encodeInt(v null.Int) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func decodeInt(field string) (null.Int, error) {
	if field == "" {
		return null.Int{}, nil
	}
	v, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return null.Int{}, err
	}
	return null.IntFrom(v), nil
}

func encodeFloat(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'g', -1, 64)
}

func decodeFloat(field string) (null.Float, error) {
	if field == "" {
		return null.Float{}, nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return null.Float{}, err
	}
	return null.FloatFrom(v), nil
}
