package trailers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"boxoffice-backend/lib/keypool"
	"boxoffice-backend/lib/scrapers/youtube"

	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

type fakeVideoClient struct {
	mutex       sync.Mutex
	videos      map[string]string // title -> video id
	stats       map[string]youtube.VideoStats
	searchCalls int
	statsCalls  int
	failAfter   int // searches before quota kicks in, 0 disables
	searchErr   error
}

func (f *fakeVideoClient) SearchTrailer(ctx context.Context, title string, year int) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.searchCalls++
	if f.failAfter > 0 && f.searchCalls > f.failAfter {
		return "", keypool.ErrExhausted
	}
	if f.searchErr != nil {
		return "", f.searchErr
	}
	return f.videos[title], nil
}

func (f *fakeVideoClient) Stats(ctx context.Context, videoIds []string) ([]youtube.VideoStats, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.statsCalls++
	var out []youtube.VideoStats
	for _, id := range videoIds {
		if s, ok := f.stats[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func TestEnricherRun(t *testing.T) {
	client := &fakeVideoClient{
		videos: map[string]string{
			"Twisters": "tw123",
			"Longlegs": "ll456",
		},
		stats: map[string]youtube.VideoStats{
			"tw123": {VideoID: "tw123", Views: null.IntFrom(24105331), Likes: null.IntFrom(180000)},
			"ll456": {VideoID: "ll456", Views: null.IntFrom(9000000)},
		},
	}

	results, summary, err := Enricher{Client: client, Workers: 2}.Run(context.Background(), []Target{
		{TmdbID: 2, Title: "Longlegs", Year: 2024},
		{TmdbID: 1, Title: "Twisters", Year: 2024},
		{TmdbID: 3, Title: "No Trailer Anywhere", Year: 2024},
	})
	require.NoError(t, err)
	require.Equal(t, Summary{Processed: 3, Found: 2}, summary)

	// sorted by id regardless of worker completion order
	require.Len(t, results, 3)
	require.Equal(t, int64(1), results[0].TmdbID)
	require.Equal(t, null.StringFrom("tw123"), results[0].VideoID)
	require.Equal(t, null.IntFrom(24105331), results[0].Views)
	require.Equal(t, null.IntFrom(180000), results[0].Likes)
	require.False(t, results[0].Comments.Valid)

	require.Equal(t, null.IntFrom(9000000), results[1].Views)
	require.False(t, results[1].Likes.Valid)

	// search came up empty, id and counts stay null
	require.False(t, results[2].VideoID.Valid)
	require.False(t, results[2].Views.Valid)
}

func TestEnricherKnownVideoIdSkipsSearch(t *testing.T) {
	client := &fakeVideoClient{
		stats: map[string]youtube.VideoStats{
			"known99": {VideoID: "known99", Views: null.IntFrom(42)},
		},
	}

	results, _, err := Enricher{Client: client}.Run(context.Background(), []Target{
		{TmdbID: 7, Title: "Twisters", VideoID: null.StringFrom("known99")},
	})
	require.NoError(t, err)
	require.Zero(t, client.searchCalls)
	require.Equal(t, null.IntFrom(42), results[0].Views)
}

func TestEnricherQuotaExhaustionHalts(t *testing.T) {
	client := &fakeVideoClient{
		videos:    map[string]string{"A": "a1", "B": "b2", "C": "c3", "D": "d4"},
		failAfter: 2,
	}

	targets := []Target{
		{TmdbID: 1, Title: "A"},
		{TmdbID: 2, Title: "B"},
		{TmdbID: 3, Title: "C"},
		{TmdbID: 4, Title: "D"},
	}

	// single worker makes the halt point deterministic
	results, summary, err := Enricher{Client: client, Workers: 1}.Run(context.Background(), targets)
	require.ErrorIs(t, err, keypool.ErrExhausted)

	// the first two searches landed before the quota hit
	require.Len(t, results, 2)
	require.Equal(t, 2, summary.Found)
	require.Less(t, client.searchCalls, len(targets))
}

func TestEnricherSearchFailureDoesNotAbort(t *testing.T) {
	client := &fakeVideoClient{
		searchErr: errors.New("http 500"),
	}

	results, summary, err := Enricher{Client: client, Workers: 2}.Run(context.Background(), []Target{
		{TmdbID: 1, Title: "A"},
		{TmdbID: 2, Title: "B"},
	})
	require.NoError(t, err)
	require.Empty(t, results)
	require.Equal(t, Summary{Processed: 2, Failed: 2}, summary)
}
