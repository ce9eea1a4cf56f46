package dataset

import (
	"gopkg.in/guregu/null.v3"
)

// Merge left-joins updates onto the existing dataset by TMDB id.
// Existing rows keep their position; updates for unknown ids are
// appended in their incoming order. Conflicting columns coalesce: the
// newer value wins only when it is non-null, so a later enrichment
// pass that failed a lookup cannot erase an earlier success.
func Merge(existing, updates []MovieRow) []MovieRow {
	byId := map[int64]int{}
	merged := make([]MovieRow, len(existing))
	copy(merged, existing)
	for i, row := range merged {
		byId[row.TmdbID] = i
	}

	for _, update := range updates {
		i, ok := byId[update.TmdbID]
		if !ok {
			byId[update.TmdbID] = len(merged)
			merged = append(merged, update)
			continue
		}
		merged[i] = coalesce(merged[i], update)
	}
	return merged
}

// field-by-field so a valid zero still counts as a reported value;
// structural merging cannot tell "reported as zero" from "missing"
func coalesce(old, update MovieRow) MovieRow {
	row := old
	if update.Title != "" {
		row.Title = update.Title
	}
	row.ReleaseDate = coalesceString(old.ReleaseDate, update.ReleaseDate)
	row.Genres = coalesceString(old.Genres, update.Genres)
	row.Popularity = coalesceFloat(old.Popularity, update.Popularity)
	row.Budget = coalesceInt(old.Budget, update.Budget)
	row.Revenue = coalesceInt(old.Revenue, update.Revenue)
	row.Runtime = coalesceInt(old.Runtime, update.Runtime)

	row.MatchMethod = coalesceString(old.MatchMethod, update.MatchMethod)
	row.OpeningTheaters = coalesceInt(old.OpeningTheaters, update.OpeningTheaters)
	row.OpeningGross = coalesceInt(old.OpeningGross, update.OpeningGross)
	row.FirstWeekGross = coalesceInt(old.FirstWeekGross, update.FirstWeekGross)
	row.FirstWeekDaysTracked = coalesceInt(old.FirstWeekDaysTracked, update.FirstWeekDaysTracked)
	row.DailyGrossMean = coalesceFloat(old.DailyGrossMean, update.DailyGrossMean)
	row.TheatersMean = coalesceFloat(old.TheatersMean, update.TheatersMean)
	row.PeakTheatersWk1 = coalesceInt(old.PeakTheatersWk1, update.PeakTheatersWk1)
	row.TheatersMin = coalesceInt(old.TheatersMin, update.TheatersMin)
	row.PerTheaterMean = coalesceFloat(old.PerTheaterMean, update.PerTheaterMean)
	row.PerTheaterMax = coalesceInt(old.PerTheaterMax, update.PerTheaterMax)
	row.PerTheaterMin = coalesceInt(old.PerTheaterMin, update.PerTheaterMin)
	row.YDChangeMean = coalesceFloat(old.YDChangeMean, update.YDChangeMean)
	row.YDChangeMax = coalesceFloat(old.YDChangeMax, update.YDChangeMax)
	row.YDChangeMin = coalesceFloat(old.YDChangeMin, update.YDChangeMin)
	row.LWChangeMean = coalesceFloat(old.LWChangeMean, update.LWChangeMean)
	row.LWChangeMax = coalesceFloat(old.LWChangeMax, update.LWChangeMax)
	row.LWChangeMin = coalesceFloat(old.LWChangeMin, update.LWChangeMin)
	row.TheaterExpansion = coalesceFloat(old.TheaterExpansion, update.TheaterExpansion)
	row.PerTheaterDrift = coalesceFloat(old.PerTheaterDrift, update.PerTheaterDrift)

	row.TrailerVideoID = coalesceString(old.TrailerVideoID, update.TrailerVideoID)
	row.TrailerViews = coalesceInt(old.TrailerViews, update.TrailerViews)
	row.TrailerLikes = coalesceInt(old.TrailerLikes, update.TrailerLikes)
	row.TrailerComments = coalesceInt(old.TrailerComments, update.TrailerComments)
	return row
}

func coalesceInt(old, update null.Int) null.Int {
	if update.Valid {
		return update
	}
	return old
}

func coalesceFloat(old, update null.Float) null.Float {
	if update.Valid {
		return update
	}
	return old
}

func coalesceString(old, update null.String) null.String {
	if update.Valid {
		return update
	}
	return old
}
