package types

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the ISO calendar date layout used for activity keys
const DateLayout = "2006-01-02"

// ActivityDate is a calendar day in YYYY-MM-DD form. Lexical order equals
// chronological order, so stores can range-query on it.
type ActivityDate string

// DateOf returns the calendar day of t in loc
func DateOf(t time.Time, loc *time.Location) ActivityDate {
	if loc == nil {
		loc = time.UTC
	}
	return ActivityDate(t.In(loc).Format(DateLayout))
}

// ParseActivityDate validates s as a YYYY-MM-DD date
func ParseActivityDate(s string) (ActivityDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", goerr.Wrap(err, "malformed date", goerr.V("date", s))
	}
	// time.Parse accepts some non-canonical forms; require the round trip
	if t.Format(DateLayout) != s {
		return "", goerr.New("malformed date", goerr.V("date", s))
	}
	return ActivityDate(s), nil
}

// AddDays returns the date shifted by n days
func (d ActivityDate) AddDays(n int) ActivityDate {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return d
	}
	return ActivityDate(t.AddDate(0, 0, n).Format(DateLayout))
}

// After reports whether d is a later day than other
func (d ActivityDate) After(other ActivityDate) bool {
	return d > other
}

func (d ActivityDate) String() string {
	return string(d)
}
