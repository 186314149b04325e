package analytics

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// DefaultOptimalAverage is the reference average expense used by AverageSpending.
var DefaultOptimalAverage = decimal.NewFromInt(500)

// Options tunes report generation. Zero values fall back to defaults.
type Options struct {
	RollingWindow  int
	OptimalAverage decimal.Decimal
}

func DefaultOptions() Options {
	return Options{
		RollingWindow:  DefaultRollingWindow,
		OptimalAverage: DefaultOptimalAverage,
	}
}

func (o Options) withDefaults() Options {
	if o.RollingWindow <= 0 {
		o.RollingWindow = DefaultRollingWindow
	}
	if !o.OptimalAverage.IsPositive() {
		o.OptimalAverage = DefaultOptimalAverage
	}
	return o
}

// Report is every aggregate derived from one snapshot.
type Report struct {
	AsOf              core.Date      `json:"as_of"`
	Totals            Totals         `json:"totals"`
	ByDate            []DateFlow     `json:"by_date"`
	ByWeekday         []WeekdayFlow  `json:"by_weekday"`
	DailyAvgExpense   []DailyAverage `json:"daily_avg_expense"`
	ByCategory        []CategoryFlow `json:"by_category"`
	ByMonth           []MonthFlow    `json:"by_month"`
	RollingExpenseSum []RollingPoint `json:"rolling_expense_sum"`
	ExpensePie        []PieSlice     `json:"expense_pie"`
	ScatterDayPattern []ScatterPoint `json:"scatter_day_pattern"`
	Insights          []Insight      `json:"insights"`
}

// Empty reports whether the snapshot behind the report had no transactions.
func (r Report) Empty() bool {
	return r.Totals.Count == 0
}

// Build computes the full report from s.
func Build(s Snapshot, opts Options) Report {
	opts = opts.withDefaults()
	return Report{
		AsOf:              s.AsOf(),
		Totals:            s.Totals(),
		ByDate:            s.ByDate(),
		ByWeekday:         s.ByWeekday(),
		DailyAvgExpense:   s.DailyAvgExpense(),
		ByCategory:        s.ByCategory(),
		ByMonth:           s.ByMonth(),
		RollingExpenseSum: s.RollingExpenseSum(opts.RollingWindow),
		ExpensePie:        s.ExpensePie(),
		ScatterDayPattern: s.ScatterDayPattern(),
		Insights:          Insights(s, DefaultRules(opts)),
	}
}
