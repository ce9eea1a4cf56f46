package dataset

import (
	"gopkg.in/guregu/null.v3"
)

// MovieRow is one movie's line in the flat dataset: catalog identity,
// first-week box office features and trailer statistics. Every
// non-identity column is nullable; a null means the enrichment pass
// that produces it has not succeeded yet, which is different from a
// reported zero.
type MovieRow struct {
	TmdbID      int64
	Title       string
	ReleaseDate null.String
	Genres      null.String
	Popularity  null.Float
	Budget      null.Int
	Revenue     null.Int
	Runtime     null.Int

	MatchMethod          null.String
	OpeningTheaters      null.Int
	OpeningGross         null.Int
	FirstWeekGross       null.Int
	FirstWeekDaysTracked null.Int
	DailyGrossMean       null.Float
	TheatersMean         null.Float
	PeakTheatersWk1      null.Int
	TheatersMin          null.Int
	PerTheaterMean       null.Float
	PerTheaterMax        null.Int
	PerTheaterMin        null.Int
	YDChangeMean         null.Float
	YDChangeMax          null.Float
	YDChangeMin          null.Float
	LWChangeMean         null.Float
	LWChangeMax          null.Float
	LWChangeMin          null.Float
	TheaterExpansion     null.Float
	PerTheaterDrift      null.Float

	TrailerVideoID  null.String
	TrailerViews    null.Int
	TrailerLikes    null.Int
	TrailerComments null.Int
}
