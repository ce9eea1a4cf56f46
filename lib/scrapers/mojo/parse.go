package mojo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boxoffice-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"gopkg.in/guregu/null.v3"
)

func isNullCell(text string) bool {
	switch text {
	case "", "-", "—", "N/A", "n/a":
		return true
	}
	return false
}

// ParseMoney parses "$1,234,567" into whole dollars. Empty cells,
// dashes and "N/A" are null, never zero.
func ParseMoney(text string) null.Int {
	text = strings.Trim(text, " \t\n")
	if isNullCell(text) {
		return null.Int{}
	}
	text = strings.ReplaceAll(text, "$", "")
	text = strings.ReplaceAll(text, ",", "")
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(value)
}

// FormatMoney is the inverse of ParseMoney for valid values.
func FormatMoney(value null.Int) string {
	if !value.Valid {
		return "-"
	}
	digits := strconv.FormatInt(value.Int64, 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := "$" + strings.Join(groups, ",")
	if negative {
		out = "-" + out
	}
	return out
}

// ParsePercent parses "+12.3%" / "-48%" into a signed float.
func ParsePercent(text string) null.Float {
	text = strings.Trim(text, " \t\n")
	if isNullCell(text) {
		return null.Float{}
	}
	text = strings.TrimSuffix(text, "%")
	text = strings.TrimPrefix(text, "+")
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return null.Float{}
	}
	return null.FloatFrom(value)
}

// ParseCount parses an integer cell like "3,285".
func ParseCount(text string) null.Int {
	text = strings.Trim(text, " \t\n")
	if isNullCell(text) {
		return null.Int{}
	}
	text = strings.ReplaceAll(text, ",", "")
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(value)
}

// column layout of the provider's per-date table
const (
	colRank = iota
	_       // yesterday's rank
	colTitle
	colDailyGross
	colYDChange
	colLWChange
	colTheaters
	colPerTheaterAvg
	colToDateGross
	colDaysInRelease
	colDistributor
)

// parseDailyTable extracts DailyRecords from a per-date listing page,
// preserving table row order (the page sorts by daily gross descending).
// A document with no table yields (nil, false).
func parseDailyTable(doc *goquery.Document, date time.Time, baseUrl string) ([]DailyRecord, bool) {
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, false
	}

	var records []DailyRecord
	table.Find("tr").Each(func(rowIdx int, tr *goquery.Selection) {
		if rowIdx == 0 {
			// header
			return
		}
		cols := tr.Find("td")
		if cols.Length() <= colToDateGross {
			return
		}

		cellText := func(idx int) string {
			return htmlutil.CleanText(cols.Eq(idx).Nodes[0])
		}

		record := DailyRecord{
			Date:          date,
			Rank:          ParseCount(cellText(colRank)),
			Title:         cellText(colTitle),
			DailyGross:    ParseMoney(cellText(colDailyGross)),
			YDChangePct:   ParsePercent(cellText(colYDChange)),
			LWChangePct:   ParsePercent(cellText(colLWChange)),
			Theaters:      ParseCount(cellText(colTheaters)),
			PerTheaterAvg: ParseMoney(cellText(colPerTheaterAvg)),
			ToDateGross:   ParseMoney(cellText(colToDateGross)),
		}
		if cols.Length() > colDaysInRelease {
			record.DaysInRelease = ParseCount(cellText(colDaysInRelease))
		}
		if cols.Length() > colDistributor {
			if distributor := cellText(colDistributor); distributor != "" {
				record.Distributor = null.StringFrom(distributor)
			}
		}

		if href, ok := cols.Eq(colTitle).Find("a").Attr("href"); ok {
			record.URL = null.StringFrom(canonicalUrl(baseUrl, href))
		}

		records = append(records, record)
	})

	return records, true
}

// canonicalUrl resolves a release link against the provider host and
// drops the query string, which carries per-session referrer tokens
// that would defeat URL equality matching.
func canonicalUrl(baseUrl, href string) string {
	link, err := url.Parse(href)
	if err != nil {
		return href
	}
	link.RawQuery = ""
	link.Fragment = ""
	if link.Host != "" {
		return link.String()
	}
	return fmt.Sprintf("%s%s", strings.TrimSuffix(baseUrl, "/"), link.String())
}
