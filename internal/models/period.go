package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the input format for date prompts.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned for dates that do not match DateLayout or
// ranges that end before they start.
var ErrInvalidDate = errors.New("invalid date")

// Period is a closed time window sent to the Admin API as epoch milliseconds.
type Period struct {
	Start time.Time
	End   time.Time
}

// StartMillis returns the period start as epoch milliseconds.
func (p Period) StartMillis() int64 {
	return p.Start.UnixMilli()
}

// EndMillis returns the period end as epoch milliseconds.
func (p Period) EndMillis() int64 {
	return p.End.UnixMilli()
}

// String renders the period as local dates.
func (p Period) String() string {
	return fmt.Sprintf("%s ~ %s", p.Start.Format(DateLayout), p.End.Format(DateLayout))
}

// ParsePeriod parses user-entered dates in the location of now. An empty
// start means the first day of now's month; an empty end means now. A given
// end date includes the whole day.
func ParsePeriod(start, end string, now time.Time) (Period, error) {
	loc := now.Location()
	p := Period{
		Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc),
		End:   now,
	}

	if s := strings.TrimSpace(start); s != "" {
		t, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return Period{}, fmt.Errorf("%w: start %q (want YYYY-MM-DD)", ErrInvalidDate, s)
		}
		p.Start = t
	}

	if e := strings.TrimSpace(end); e != "" {
		t, err := time.ParseInLocation(DateLayout, e, loc)
		if err != nil {
			return Period{}, fmt.Errorf("%w: end %q (want YYYY-MM-DD)", ErrInvalidDate, e)
		}
		p.End = t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}

	if p.End.Before(p.Start) {
		return Period{}, fmt.Errorf("%w: end %s is before start %s",
			ErrInvalidDate, p.End.Format(DateLayout), p.Start.Format(DateLayout))
	}

	return p, nil
}

// LocalDate renders epoch milliseconds as a local date string.
func LocalDate(ms int64) string {
	return time.UnixMilli(ms).Local().Format(DateLayout)
}

// LocalDateTime renders epoch milliseconds as a local date and time string.
func LocalDateTime(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04:05")
}
