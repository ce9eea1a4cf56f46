package mojo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"boxoffice-backend/lib/telemetry"
	"boxoffice-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientOptions{
		BaseUrl:            server.URL,
		MinRequestInterval: time.Millisecond,
	})
}

func TestFetchDaily(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:mojo")
	defer cleanup()

	fixture, err := os.ReadFile("testdata/daily_2024-07-19.html")
	require.NoError(t, err)

	var requestedPath string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Write(fixture)
	})

	date := time.Date(2024, 7, 19, 0, 0, 0, 0, timezone.Location)
	result, err := client.FetchDaily(context.Background(), date)
	require.NoError(t, err)

	require.Equal(t, "/date/2024-07-19/", requestedPath)
	require.Equal(t, OutcomeOK, result.Outcome)
	require.Len(t, result.Records, 4)
}

func TestFetchDailyNoTable(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>nothing here</body></html>"))
	})

	result, err := client.FetchDaily(context.Background(), timezone.Now())
	require.NoError(t, err)
	require.Equal(t, OutcomeNoData, result.Outcome)
	require.Empty(t, result.Records)
}

func TestFetchDailyRateLimited(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	result, err := client.FetchDaily(context.Background(), timezone.Now())
	require.NoError(t, err)
	require.Equal(t, OutcomeRateLimited, result.Outcome)
}

func TestFetchDailyTransient(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	result, err := client.FetchDaily(context.Background(), timezone.Now())
	require.NoError(t, err)
	require.Equal(t, OutcomeTransient, result.Outcome)
	require.Error(t, result.Err)
}

func TestFetchDailyPacing(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	})
	client.limiter.SetLimit(20) // 50ms between requests

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.FetchDaily(context.Background(), timezone.Now())
		require.NoError(t, err)
	}
	// first request is covered by the initial burst token, the next
	// two must each wait out the interval
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestFetchDailyCancelled(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body></body></html>"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// burn the initial burst token so the limiter has to wait
	_, err := client.FetchDaily(context.Background(), timezone.Now())
	require.NoError(t, err)

	client.limiter.SetLimit(1)
	_, err = client.FetchDaily(ctx, timezone.Now())
	require.Error(t, err)
}
