package analytics

import "fintrack/internal/core"

// MonthLayout is the bucket key format for monthly series.
const MonthLayout = "2006-01"

var weekdayNames = [7]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// DateParts is the decomposition every weekday and month bucket is derived from.
type DateParts struct {
	Weekday     int // 0=Sunday..6=Saturday
	WeekdayName string
	Month       string // YYYY-MM
}

// Decompose splits a calendar date into its weekday and month buckets.
func Decompose(d core.Date) DateParts {
	wd := int(d.Weekday())
	return DateParts{
		Weekday:     wd,
		WeekdayName: weekdayNames[wd],
		Month:       d.Format(MonthLayout),
	}
}

// WeekdayName maps 0=Sunday..6=Saturday to an English day name.
func WeekdayName(i int) string {
	if i < 0 || i >= len(weekdayNames) {
		return ""
	}
	return weekdayNames[i]
}

func monthStart(d core.Date) core.Date {
	return core.NewDate(d.Year(), int(d.Month()), 1)
}

// daysIn returns the number of days in the month containing d.
func daysIn(d core.Date) int {
	return monthStart(d).AddDate(0, 1, -1).Day()
}

func between(d, from, to core.Date) bool {
	return !d.Before(from) && !to.Before(d)
}
