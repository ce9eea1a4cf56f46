package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"boxoffice-backend/lib/restyutil"
	"boxoffice-backend/lib/telemetry"

	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/tmdb")

const DefaultBaseUrl = "https://api.themoviedb.org/3"

type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	apiKey  string
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// required, comes from the environment only
	ApiKey string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ApiKey == "" {
		return nil, fmt.Errorf("tmdb: api key is required")
	}
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 15)

	telemetry.InstrumentResty(client, "scrapers/tmdb/http")

	return &Client{
		http: client,
		// the catalog allows a burst of requests but sustained paging
		// should stay around 4/s
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		apiKey:  opts.ApiKey,
	}, nil
}

func (c *Client) SetInstrumentOutput(output restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.http, output)
}

type DiscoverQuery struct {
	MinYear      int
	MaxYear      int
	MinVoteCount int
	// stop after this many movies, 0 means a single page
	Limit int
}

// Discover pages through the catalog's discovery endpoint sorted by
// popularity, bounded by the query's year range and vote-count floor.
func (c *Client) Discover(ctx context.Context, query DiscoverQuery) ([]Movie, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()

	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	var movies []Movie
	for page := 1; len(movies) < limit; page++ {
		var body discoverResponse
		err := c.get(ctx, "/discover/movie", map[string]string{
			"language":                 "en-US",
			"sort_by":                  "popularity.desc",
			"page":                     fmt.Sprintf("%d", page),
			"vote_count.gte":           fmt.Sprintf("%d", query.MinVoteCount),
			"primary_release_date.gte": fmt.Sprintf("%04d-01-01", query.MinYear),
			"primary_release_date.lte": fmt.Sprintf("%04d-12-31", query.MaxYear),
		}, &body)
		if err != nil {
			return movies, err
		}
		if len(body.Results) == 0 {
			break
		}

		for _, movie := range body.Results {
			if len(movies) >= limit {
				break
			}
			movies = append(movies, movie)
		}

		if page >= body.TotalPages {
			break
		}
	}

	span.SetAttributes(attribute.Int("movies", len(movies)))
	return movies, nil
}

// Details fetches the per-id detail payload.
func (c *Client) Details(ctx context.Context, id int64) (MovieDetails, error) {
	ctx, span := tracer.Start(ctx, "Details", trace.WithAttributes(
		attribute.Int64("movie_id", id),
	))
	defer span.End()

	var body MovieDetails
	err := c.get(ctx, fmt.Sprintf("/movie/%d", id), map[string]string{
		"language": "en-US",
	}, &body)
	return body, err
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	return retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}

			res, err := c.http.R().
				SetContext(ctx).
				SetQueryParam("api_key", c.apiKey).
				SetQueryParams(params).
				SetResult(out).
				Get(path)
			if err != nil {
				return err
			}
			switch {
			case res.StatusCode() == http.StatusOK:
				return nil
			case res.StatusCode() == http.StatusNotFound:
				return retry.Unrecoverable(fmt.Errorf("tmdb: %s not found", path))
			case res.StatusCode() == http.StatusUnauthorized:
				return retry.Unrecoverable(fmt.Errorf("tmdb: invalid api key"))
			default:
				return fmt.Errorf("tmdb: %s returned status %d", path, res.StatusCode())
			}
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
	)
}
