package tmdb

import "gopkg.in/guregu/null.v3"

// Movie is one discovery result from the catalog's paged listing.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int64   `json:"vote_count"`
	OriginalLanguage string  `json:"original_language"`
}

type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the per-id detail payload. Budget and revenue are
// zero when the catalog has no figure; the dataset layer converts
// zeroes to nulls since the catalog uses 0 as its own missing marker.
type MovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Budget      int64   `json:"budget"`
	Revenue     int64   `json:"revenue"`
	Runtime     int64   `json:"runtime"`
	Genres      []Genre `json:"genres"`
	ImdbID      string  `json:"imdb_id"`
}

// NullableBudget treats the catalog's 0 as "unknown".
func (d MovieDetails) NullableBudget() null.Int {
	if d.Budget == 0 {
		return null.Int{}
	}
	return null.IntFrom(d.Budget)
}

func (d MovieDetails) NullableRevenue() null.Int {
	if d.Revenue == 0 {
		return null.Int{}
	}
	return null.IntFrom(d.Revenue)
}

func (d MovieDetails) NullableRuntime() null.Int {
	if d.Runtime == 0 {
		return null.Int{}
	}
	return null.IntFrom(d.Runtime)
}

type discoverResponse struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}
