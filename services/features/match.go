package features

import (
	"log/slog"
	"time"

	"boxoffice-backend/lib/scrapers/mojo"
	"boxoffice-backend/lib/textutil"

	"github.com/antzucaro/matchr"
	"github.com/samber/lo"
	"gopkg.in/guregu/null.v3"
)

// Movie is the canonical identity a batch of listing records is resolved
// against. MojoURL is optional; when present it removes title matching
// from the picture entirely.
type Movie struct {
	TmdbID      int64
	Title       string
	ReleaseDate time.Time
	MojoURL     null.String
}

type MatchMethod int

const (
	MatchNone MatchMethod = iota
	MatchURL
	MatchContains
	MatchSimilarity
)

func (m MatchMethod) String() string {
	switch m {
	case MatchURL:
		return "url"
	case MatchContains:
		return "contains"
	case MatchSimilarity:
		return "similarity"
	}
	return "none"
}

type MatchResult struct {
	Method  MatchMethod
	Records []mojo.DailyRecord
}

// Matcher resolves which listing records belong to a movie. Resolution
// prefers canonical URL equality, then normalized title containment,
// then Jaro-Winkler similarity above Threshold. When two distinct
// listing titles both qualify the movie is reported unmatched rather
// than guessed at.
type Matcher struct {
	// minimum Jaro-Winkler similarity for the fallback step,
	// defaults to 0.92
	Threshold float64
}

const defaultThreshold = 0.92

func (m Matcher) Match(records []mojo.DailyRecord, movie Movie) MatchResult {
	threshold := m.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}

	if movie.MojoURL.Valid {
		matched := lo.Filter(records, func(record mojo.DailyRecord, _ int) bool {
			return record.URL.Valid && record.URL.String == movie.MojoURL.String
		})
		if len(matched) > 0 {
			return MatchResult{Method: MatchURL, Records: matched}
		}
	}

	target := textutil.StripEditionSuffix(movie.Title)

	byTitle := map[string][]mojo.DailyRecord{}
	for _, record := range records {
		key := textutil.NormalizeTitle(textutil.StripEditionSuffix(record.Title))
		if key == "" {
			continue
		}
		byTitle[key] = append(byTitle[key], record)
	}

	var containing []string
	for key := range byTitle {
		if textutil.ContainsNormalized(key, target) {
			containing = append(containing, key)
		}
	}
	if len(containing) == 1 {
		return MatchResult{Method: MatchContains, Records: byTitle[containing[0]]}
	}
	if len(containing) > 1 {
		// "It" contains into both "It" and "It Chapter Two"; an exact
		// normalized hit settles it, anything else is ambiguous
		normalized := textutil.NormalizeTitle(target)
		for _, key := range containing {
			if key == normalized {
				return MatchResult{Method: MatchContains, Records: byTitle[key]}
			}
		}
		slog.Warn("ambiguous title containment, leaving unmatched",
			"title", movie.Title,
			"candidates", len(containing),
		)
		return MatchResult{}
	}

	normalized := textutil.NormalizeTitle(target)
	best, runnerUp := "", ""
	bestScore, runnerUpScore := 0.0, 0.0
	for key := range byTitle {
		score := matchr.JaroWinkler(normalized, key, true)
		if score > bestScore {
			runnerUp, runnerUpScore = best, bestScore
			best, bestScore = key, score
		} else if score > runnerUpScore {
			runnerUp, runnerUpScore = key, score
		}
	}
	if bestScore < threshold {
		return MatchResult{}
	}
	if runnerUpScore >= threshold {
		slog.Warn("two listing titles clear the similarity threshold, leaving unmatched",
			"title", movie.Title,
			"best", best,
			"runner_up", runnerUp,
		)
		return MatchResult{}
	}
	return MatchResult{Method: MatchSimilarity, Records: byTitle[best]}
}
