package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"boxoffice-backend/lib/keypool"
	"boxoffice-backend/lib/restyutil"
	"boxoffice-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/guregu/null.v3"
)

var tracer = otel.Tracer("scrapers/youtube")

const DefaultBaseUrl = "https://www.googleapis.com/youtube/v3"

// the stats endpoint accepts at most 50 ids per call
const maxBatchSize = 50

type Client struct {
	http    *resty.Client
	keys    *keypool.Pool
	baseUrl string
}

type ClientOptions struct {
	// defaults to DefaultBaseUrl
	BaseUrl string
	// required, at least one key
	Keys *keypool.Pool
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Keys == nil {
		return nil, fmt.Errorf("youtube: a key pool is required")
	}
	baseUrl := opts.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}

	client := resty.New()
	client.SetBaseURL(baseUrl)
	client.SetTimeout(time.Second * 15)

	telemetry.InstrumentResty(client, "scrapers/youtube/http")

	return &Client{
		http:    client,
		keys:    opts.Keys,
		baseUrl: baseUrl,
	}, nil
}

func (c *Client) SetInstrumentOutput(output restyutil.InstrumentOutput) {
	restyutil.InstrumentClient(c.http, output)
}

// SearchTrailer looks up the video id of a movie's official trailer.
// An empty id with a nil error means the search returned nothing.
// keypool.ErrExhausted means every key has hit its quota; the caller
// should checkpoint and stop.
func (c *Client) SearchTrailer(ctx context.Context, title string, year int) (string, error) {
	ctx, span := tracer.Start(ctx, "SearchTrailer", trace.WithAttributes(
		attribute.String("title", title),
	))
	defer span.End()

	var body searchResponse
	err := c.get(ctx, "/search", map[string]string{
		"part":              "snippet",
		"q":                 fmt.Sprintf("%s %d official trailer", title, year),
		"type":              "video",
		"maxResults":        "5",
		"relevanceLanguage": "en",
	}, &body)
	if err != nil {
		return "", err
	}

	for _, item := range body.Items {
		name := strings.ToLower(item.Snippet.Title)
		if strings.Contains(name, "official") && strings.Contains(name, "trailer") {
			return item.ID.VideoID, nil
		}
	}
	if len(body.Items) > 0 {
		return body.Items[0].ID.VideoID, nil
	}
	return "", nil
}

// Stats fetches view/like/comment counts for a batch of video ids.
func (c *Client) Stats(ctx context.Context, videoIds []string) ([]VideoStats, error) {
	ctx, span := tracer.Start(ctx, "Stats", trace.WithAttributes(
		attribute.Int("videos", len(videoIds)),
	))
	defer span.End()

	var stats []VideoStats
	for len(videoIds) > 0 {
		batch := videoIds
		if len(batch) > maxBatchSize {
			batch = batch[:maxBatchSize]
		}
		videoIds = videoIds[len(batch):]

		var body videosResponse
		err := c.get(ctx, "/videos", map[string]string{
			"part": "statistics",
			"id":   strings.Join(batch, ","),
		}, &body)
		if err != nil {
			return stats, err
		}

		for _, item := range body.Items {
			stats = append(stats, VideoStats{
				VideoID:  item.ID,
				Views:    parseCount(item.Statistics.ViewCount),
				Likes:    parseCount(item.Statistics.LikeCount),
				Comments: parseCount(item.Statistics.CommentCount),
			})
		}
	}
	return stats, nil
}

func parseCount(text string) null.Int {
	if text == "" {
		return null.Int{}
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(value)
}

// get performs one API call, rotating through the key pool whenever
// the current key reports quota exhaustion.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	for {
		key, err := c.keys.Acquire()
		if err != nil {
			return err
		}

		res, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("key", key).
			SetQueryParams(params).
			Get(path)
		if err != nil {
			return err
		}

		if res.StatusCode() == http.StatusOK {
			return json.Unmarshal(res.Body(), out)
		}

		var apiErr errorResponse
		if json.Unmarshal(res.Body(), &apiErr) == nil && apiErr.quotaExceeded() {
			c.keys.MarkExhausted(key)
			continue
		}
		return fmt.Errorf("youtube: %s returned status %d", path, res.StatusCode())
	}
}
