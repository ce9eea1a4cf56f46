package trailers

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"boxoffice-backend/lib/keypool"
	"boxoffice-backend/lib/scrapers/youtube"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/guregu/null.v3"
)

var tracer = otel.Tracer("services/trailers")

// Target is one movie to look a trailer up for.
type Target struct {
	TmdbID int64
	Title  string
	Year   int
	// already-known video id from a previous pass, skips the search
	VideoID null.String
}

// TrailerInfo is the result for one movie. VideoID stays null when the
// search found nothing; the counts stay null until the stats call for
// that video succeeds.
type TrailerInfo struct {
	TmdbID   int64
	VideoID  null.String
	Views    null.Int
	Likes    null.Int
	Comments null.Int
}

type Summary struct {
	Processed int
	Found     int
	Failed    int
}

// VideoClient is the slice of the video platform client the enricher
// needs.
type VideoClient interface {
	SearchTrailer(ctx context.Context, title string, year int) (string, error)
	Stats(ctx context.Context, videoIds []string) ([]youtube.VideoStats, error)
}

// Enricher resolves trailer video ids and engagement counts for a set
// of movies. Searches fan out across a bounded pool of workers; each
// worker hands its result back to the coordinating goroutine instead
// of writing shared state in place. On quota exhaustion the pool stops
// submitting new searches, lets in-flight ones finish and returns
// keypool.ErrExhausted alongside everything collected so far, so the
// caller can persist and resume later.
type Enricher struct {
	Client  VideoClient
	Workers int // defaults to 4
}

func (e Enricher) Run(ctx context.Context, targets []Target) ([]TrailerInfo, Summary, error) {
	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.Int("targets", len(targets)),
	))
	defer span.End()

	workers := e.Workers
	if workers <= 0 {
		workers = 4
	}

	var (
		mutex   sync.Mutex
		wg      sync.WaitGroup
		results []TrailerInfo
		summary Summary
		halted  bool
	)
	semaphore := make(chan struct{}, workers)

	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		mutex.Lock()
		stop := halted
		mutex.Unlock()
		if stop {
			break
		}

		semaphore <- struct{}{}
		wg.Add(1)
		go func(target Target) {
			defer wg.Done()
			defer func() { <-semaphore }()

			info, err := e.lookup(ctx, target)

			mutex.Lock()
			defer mutex.Unlock()
			summary.Processed++
			switch {
			case errors.Is(err, keypool.ErrExhausted):
				halted = true
			case err != nil:
				summary.Failed++
				slog.WarnContext(ctx, "trailer search failed",
					"title", target.Title,
					"err", err,
				)
			default:
				if info.VideoID.Valid {
					summary.Found++
				}
				results = append(results, info)
			}
			slog.InfoContext(ctx, "trailer progress",
				"processed", summary.Processed,
				"found", summary.Found,
				"failed", summary.Failed,
			)
		}(target)
	}
	wg.Wait()

	// workers finish in arbitrary order
	slices.SortFunc(results, func(a, b TrailerInfo) int {
		return int(a.TmdbID - b.TmdbID)
	})

	statsErr := e.fillStats(ctx, results)

	span.SetAttributes(
		attribute.Int("processed", summary.Processed),
		attribute.Int("found", summary.Found),
	)
	if halted || errors.Is(statsErr, keypool.ErrExhausted) {
		return results, summary, keypool.ErrExhausted
	}
	return results, summary, nil
}

func (e Enricher) lookup(ctx context.Context, target Target) (TrailerInfo, error) {
	if target.VideoID.Valid {
		return TrailerInfo{TmdbID: target.TmdbID, VideoID: target.VideoID}, nil
	}
	id, err := e.Client.SearchTrailer(ctx, target.Title, target.Year)
	if err != nil {
		return TrailerInfo{}, err
	}
	if id == "" {
		return TrailerInfo{TmdbID: target.TmdbID}, nil
	}
	return TrailerInfo{TmdbID: target.TmdbID, VideoID: null.StringFrom(id)}, nil
}

// fillStats attaches view/like/comment counts to every result with a
// known video id. A failed stats call leaves counts null rather than
// dropping the result; the video id alone is still worth persisting.
func (e Enricher) fillStats(ctx context.Context, results []TrailerInfo) error {
	var ids []string
	for _, info := range results {
		if info.VideoID.Valid {
			ids = append(ids, info.VideoID.String)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	stats, err := e.Client.Stats(ctx, ids)
	if err != nil && !errors.Is(err, keypool.ErrExhausted) {
		slog.WarnContext(ctx, "trailer stats fetch failed, counts left null", "err", err)
	}

	byVideo := map[string]youtube.VideoStats{}
	for _, s := range stats {
		byVideo[s.VideoID] = s
	}
	for i, info := range results {
		if !info.VideoID.Valid {
			continue
		}
		if s, ok := byVideo[info.VideoID.String]; ok {
			results[i].Views = s.Views
			results[i].Likes = s.Likes
			results[i].Comments = s.Comments
		}
	}
	if errors.Is(err, keypool.ErrExhausted) {
		return err
	}
	return nil
}
