package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"boxoffice-backend/lib/scrapers/mojo"

	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/batch")

// ErrRateLimited means the provider started throttling mid-run. Work
// completed so far is checkpointed; re-running later resumes where the
// run stopped.
var ErrRateLimited = errors.New("provider rate limited, run checkpointed for resume")

// DailyFetcher is the slice of the listing client the collector needs.
type DailyFetcher interface {
	FetchDaily(ctx context.Context, date time.Time) (mojo.DailyResult, error)
}

type Collector struct {
	Fetcher  DailyFetcher
	Store    Store
	Strategy Strategy
	// attempts per date on transient failure, defaults to 3
	Attempts uint
}

type Summary struct {
	Planned   int
	Skipped   int
	Collected int
	Empty     int
	Failed    int
	Records   int
}

// Run scrapes every date the strategy selects within [start, end],
// checkpointing each completed date. A transiently failing date is
// retried a few times and then skipped without a marker, so the next
// run picks it up again. A rate-limit signal halts the run with
// ErrRateLimited. A single failing date never aborts the batch.
func (c Collector) Run(ctx context.Context, start, end time.Time) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("strategy", c.Strategy.Name()),
	))
	defer span.End()

	attempts := c.Attempts
	if attempts == 0 {
		attempts = 3
	}

	dates := c.Strategy.Dates(start, end)
	summary := Summary{Planned: len(dates)}

	if c.Strategy.MaxGapDays() > 7 {
		// a movie released just after one sample and pulled before the
		// next would miss its entire first-week window
		slog.WarnContext(ctx, "sampling interval exceeds the first-week window, some releases will have no coverage",
			"strategy", c.Strategy.Name(),
			"max_gap_days", c.Strategy.MaxGapDays(),
		)
	}

	slog.InfoContext(ctx, "starting collection",
		"strategy", c.Strategy.Name(),
		"dates", len(dates),
		"start", start.Format(time.DateOnly),
		"end", end.Format(time.DateOnly),
	)

	for i, date := range dates {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		done, err := c.Store.HasDate(ctx, date)
		if err != nil {
			return summary, err
		}
		if done {
			summary.Skipped++
			continue
		}

		result, err := c.fetchWithRetry(ctx, date, attempts)
		if err != nil {
			return summary, err
		}

		switch result.Outcome {
		case mojo.OutcomeOK:
			if err := c.Store.RecordDay(ctx, date, result.Records); err != nil {
				return summary, err
			}
			summary.Collected++
			summary.Records += len(result.Records)
		case mojo.OutcomeNoData:
			// marked done: re-fetching a date the provider has nothing
			// for is wasted quota
			if err := c.Store.RecordDay(ctx, date, nil); err != nil {
				return summary, err
			}
			summary.Empty++
		case mojo.OutcomeRateLimited:
			slog.WarnContext(ctx, "rate limited, halting", "date", date.Format(time.DateOnly))
			return summary, ErrRateLimited
		case mojo.OutcomeTransient:
			slog.WarnContext(ctx, "giving up on date",
				"date", date.Format(time.DateOnly),
				"err", result.Err,
			)
			summary.Failed++
		}

		slog.InfoContext(ctx, "progress",
			"done", i+1,
			"total", len(dates),
			"date", date.Format(time.DateOnly),
			"records", len(result.Records),
		)
	}

	span.SetAttributes(
		attribute.Int("collected", summary.Collected),
		attribute.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (c Collector) fetchWithRetry(ctx context.Context, date time.Time, attempts uint) (mojo.DailyResult, error) {
	result, err := retry.DoWithData(
		func() (mojo.DailyResult, error) {
			result, err := c.Fetcher.FetchDaily(ctx, date)
			if err != nil {
				// only context cancellation escapes the fetch boundary
				return result, retry.Unrecoverable(err)
			}
			if result.Outcome == mojo.OutcomeTransient {
				return result, result.Err
			}
			return result, nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(time.Second*2),
		retry.LastErrorOnly(true),
	)
	if err != nil && result.Outcome == mojo.OutcomeTransient {
		// retries exhausted, the caller counts it and moves on
		return result, nil
	}
	return result, err
}
