package mojo

import (
	"time"

	"gopkg.in/guregu/null.v3"
)

// DailyRecord is one row of a per-date listing page: a single movie's
// numbers for a single calendar day. Monetary and percentage fields are
// null when the provider printed "-" or nothing at all; "not reported"
// and "reported as zero" mean different things downstream.
type DailyRecord struct {
	Date          time.Time
	Rank          null.Int
	Title         string
	URL           null.String
	DailyGross    null.Int
	YDChangePct   null.Float
	LWChangePct   null.Float
	Theaters      null.Int
	PerTheaterAvg null.Int
	ToDateGross   null.Int
	DaysInRelease null.Int
	Distributor   null.String
}

type Outcome int

const (
	// the page was fetched and the table parsed, Records may still be empty
	OutcomeOK Outcome = iota
	// the page exists but carries no listing table, routine for far-past
	// or future dates
	OutcomeNoData
	// network error or 5xx, worth retrying
	OutcomeTransient
	// the provider started throttling, the caller should stop submitting
	// new dates and checkpoint
	OutcomeRateLimited
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNoData:
		return "no_data"
	case OutcomeTransient:
		return "transient"
	case OutcomeRateLimited:
		return "rate_limited"
	}
	return "unknown"
}

// DailyResult is the typed outcome of fetching one date page. Fetch
// failures never escape as errors; callers branch on Outcome instead.
type DailyResult struct {
	Date    time.Time
	Outcome Outcome
	Records []DailyRecord
	Err     error
}
