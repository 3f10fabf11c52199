package entities

import (
	"fmt"
	"time"
)

// Quarter identifies one reporting period, e.g. 2024 Q3. Its string form
// ("2024_Q3") is used in the filings table and snapshot file names.
type Quarter struct {
	Year int
	Q    int
}

// filingBuffer is how long after a quarter ends before its 13F filings are
// assumed available: filings are due 45 days after quarter end, plus slack.
const filingBufferDays = 50

var quarterEnds = [4]struct{ month time.Month; day int }{
	{time.March, 31},
	{time.June, 30},
	{time.September, 30},
	{time.December, 31},
}

// String returns the canonical form, e.g. "2024_Q3".
func (q Quarter) String() string {
	return fmt.Sprintf("%d_Q%d", q.Year, q.Q)
}

// IsZero reports whether q is the zero Quarter.
func (q Quarter) IsZero() bool {
	return q.Year == 0 && q.Q == 0
}

// ParseQuarter parses the canonical "YYYY_Qn" form.
func ParseQuarter(s string) (Quarter, error) {
	var q Quarter
	if _, err := fmt.Sscanf(s, "%d_Q%d", &q.Year, &q.Q); err != nil {
		return Quarter{}, fmt.Errorf("invalid quarter %q: want YYYY_Qn", s)
	}
	if q.Q < 1 || q.Q > 4 || q.Year < 1993 {
		return Quarter{}, fmt.Errorf("invalid quarter %q: want YYYY_Qn", s)
	}
	return q, nil
}

// LatestQuarter returns the most recent quarter whose 13F filings should be
// available as of now.
func LatestQuarter(now time.Time) Quarter {
	for i := 3; i >= 0; i-- {
		end := time.Date(now.Year(), quarterEnds[i].month, quarterEnds[i].day, 0, 0, 0, 0, time.UTC)
		deadline := end.AddDate(0, 0, filingBufferDays)
		if now.After(deadline) {
			return Quarter{Year: now.Year(), Q: i + 1}
		}
	}
	// Nothing from this year is available yet, fall back to Q4 of last year.
	return Quarter{Year: now.Year() - 1, Q: 4}
}
