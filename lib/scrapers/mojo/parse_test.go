package mojo

import (
	"bytes"
	"os"
	"testing"
	"time"

	"boxoffice-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"
)

func TestParseMoneyNullCells(t *testing.T) {
	for _, text := range []string{"", "-", "—", "N/A", "n/a", "  - ", "garbage"} {
		require.False(t, ParseMoney(text).Valid, "input: %q", text)
	}
}

func TestParseMoneyRoundTrip(t *testing.T) {
	testCases := []struct {
		text     string
		expected int64
	}{
		{"$1,234,567", 1234567},
		{"$7,854", 7854},
		{"$15", 15},
		{"$0", 0},
	}

	for _, test := range testCases {
		parsed := ParseMoney(test.text)
		require.True(t, parsed.Valid)
		require.Equal(t, test.expected, parsed.Int64)
		require.Equal(t, test.text, FormatMoney(parsed))
	}
}

func TestParseMoneyZeroIsNotNull(t *testing.T) {
	parsed := ParseMoney("$0")
	require.True(t, parsed.Valid)
	require.Equal(t, int64(0), parsed.Int64)
}

func TestParsePercent(t *testing.T) {
	require.Equal(t, null.FloatFrom(12.3), ParsePercent("+12.3%"))
	require.Equal(t, null.FloatFrom(-45.3), ParsePercent("-45.3%"))
	require.Equal(t, null.FloatFrom(64), ParsePercent("+64%"))
	require.False(t, ParsePercent("-").Valid)
	require.False(t, ParsePercent("n/a").Valid)
	require.False(t, ParsePercent("").Valid)
}

func TestParseCount(t *testing.T) {
	require.Equal(t, null.IntFrom(4151), ParseCount("4,151"))
	require.Equal(t, null.IntFrom(1), ParseCount("1"))
	require.False(t, ParseCount("-").Valid)
	require.False(t, ParseCount("").Valid)
}

func loadFixture(t *testing.T, name string) *goquery.Document {
	contents, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(contents))
	require.NoError(t, err)
	return doc
}

func TestParseDailyTable(t *testing.T) {
	doc := loadFixture(t, "daily_2024-07-19.html")
	date := time.Date(2024, 7, 19, 0, 0, 0, 0, timezone.Location)

	records, found := parseDailyTable(doc, date, DefaultBaseUrl)
	require.True(t, found)
	require.Len(t, records, 4)

	first := records[0]
	require.Equal(t, "Twisters", first.Title)
	require.Equal(t, null.IntFrom(1), first.Rank)
	require.Equal(t, null.IntFrom(32601460), first.DailyGross)
	require.Equal(t, null.IntFrom(4151), first.Theaters)
	require.Equal(t, null.IntFrom(7854), first.PerTheaterAvg)
	require.Equal(t, null.IntFrom(1), first.DaysInRelease)
	require.Equal(t, null.StringFrom("Universal Pictures"), first.Distributor)
	// opening day has no day-over-day comparison
	require.False(t, first.YDChangePct.Valid)
	require.False(t, first.LWChangePct.Valid)
	// session tokens stripped from the canonical url
	require.Equal(t,
		null.StringFrom("https://www.boxofficemojo.com/release/rl1077904129/"),
		first.URL,
	)

	second := records[1]
	require.Equal(t, null.FloatFrom(51.8), second.YDChangePct)
	require.Equal(t, null.FloatFrom(-45.3), second.LWChangePct)

	third := records[2]
	require.False(t, third.LWChangePct.Valid)
	require.False(t, third.PerTheaterAvg.Valid)

	// row without an anchor still parses, just without a canonical url
	fourth := records[3]
	require.Equal(t, "Longlegs", fourth.Title)
	require.False(t, fourth.URL.Valid)
	require.False(t, fourth.Theaters.Valid)

	// table row order preserved
	for i, record := range records {
		require.Equal(t, null.IntFrom(int64(i+1)), record.Rank)
		require.Equal(t, date, record.Date)
	}
}

func TestParseDailyTableAbsent(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBufferString(
		"<html><body><p>no showings</p></body></html>",
	))
	require.NoError(t, err)

	records, found := parseDailyTable(doc, time.Now(), DefaultBaseUrl)
	require.False(t, found)
	require.Empty(t, records)
}
