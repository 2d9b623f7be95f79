package report

import "time"

// Period is an inclusive [Start, End] instant range for a report.
type Period struct {
	Start time.Time
	End   time.Time
}

// AnnualPeriod covers Jan 1 00:00:00 UTC through Dec 31 23:59:59 UTC of year.
func AnnualPeriod(year int) Period {
	return Period{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC),
	}
}

// MonthlyPeriod covers the first instant of the month through one
// millisecond before the first of the following month.
//
// Monthly bounds are anchored to the server's time zone while annual bounds
// are UTC. The asymmetry is inherited behavior that callers rely on; keep
// both paths as they are unless the report contract is versioned.
func MonthlyPeriod(month, year int) Period {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	end := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.Local).Add(-time.Millisecond)
	return Period{Start: start, End: end}
}
