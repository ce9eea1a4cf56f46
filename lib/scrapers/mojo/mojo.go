package mojo

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"boxoffice-backend/lib/restyutil"
	"boxoffice-backend/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/mojo")

const DefaultBaseUrl = "https://www.boxofficemojo.com"

// the provider tolerates roughly one request every two seconds before
// it starts serving throttle pages; treat this as a correctness
// requirement for sustained collection, not a tunable
const DefaultMinRequestInterval = 2 * time.Second

type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	baseUrl string
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// minimum delay between requests, defaults to DefaultMinRequestInterval
	MinRequestInterval time.Duration
}

func NewClient(opts ClientOptions) *Client {
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	interval := opts.MinRequestInterval
	if interval <= 0 {
		interval = DefaultMinRequestInterval
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetHeader("user-agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	client.SetTimeout(time.Second * 15)

	telemetry.InstrumentResty(client, "scrapers/mojo/http")

	return &Client{
		http:    client,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		baseUrl: baseUrl,
	}
}

func (c *Client) SetInstrumentOutput(output restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.http, output)
}

// FetchDaily fetches the listing page for a single calendar date and
// parses its table. It blocks on the politeness limiter first, so any
// loop driving it is paced automatically. Failures are folded into the
// result's Outcome; the only error that escapes is context
// cancellation while waiting on the limiter.
func (c *Client) FetchDaily(ctx context.Context, date time.Time) (DailyResult, error) {
	ctx, span := tracer.Start(ctx, "FetchDaily", trace.WithAttributes(
		attribute.String("date", date.Format(time.DateOnly)),
	))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		return DailyResult{}, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/date/%s/", date.Format(time.DateOnly)))
	if err != nil {
		span.RecordError(err)
		return DailyResult{Date: date, Outcome: OutcomeTransient, Err: err}, nil
	}

	switch {
	case res.StatusCode() == http.StatusTooManyRequests:
		return DailyResult{Date: date, Outcome: OutcomeRateLimited}, nil
	case res.StatusCode() >= 500:
		return DailyResult{
			Date:    date,
			Outcome: OutcomeTransient,
			Err:     fmt.Errorf("status %d", res.StatusCode()),
		}, nil
	case res.StatusCode() != http.StatusOK:
		return DailyResult{Date: date, Outcome: OutcomeNoData}, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		// markup is not contractually stable, unparseable is the same
		// as absent
		span.RecordError(err)
		return DailyResult{Date: date, Outcome: OutcomeNoData}, nil
	}

	records, found := parseDailyTable(doc, date, c.baseUrl)
	if !found {
		return DailyResult{Date: date, Outcome: OutcomeNoData}, nil
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return DailyResult{Date: date, Outcome: OutcomeOK, Records: records}, nil
}
