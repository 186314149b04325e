package analytics

import (
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// DefaultRollingWindow is the trailing window, in date-grouped rows, of RollingExpenseSum.
const DefaultRollingWindow = 7

type (
	Totals struct {
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
		Balance core.Money `json:"balance"`
		Count   int        `json:"count"`
	}

	// Flow is an income/expense pair for one bucket.
	Flow struct {
		Income  core.Money `json:"income"`
		Expense core.Money `json:"expense"`
	}

	DateFlow struct {
		Date core.Date `json:"date"`
		Flow
	}

	WeekdayFlow struct {
		Weekday int    `json:"weekday"`
		Name    string `json:"name"`
		Flow
	}

	MonthFlow struct {
		Month string `json:"month"`
		Flow
	}

	CategoryFlow struct {
		Category string `json:"category"`
		Flow
	}

	DailyAverage struct {
		Date    core.Date       `json:"date"`
		Average decimal.Decimal `json:"average"`
	}

	RollingPoint struct {
		Date core.Date  `json:"date"`
		Sum  core.Money `json:"sum"`
	}

	PieSlice struct {
		Category string     `json:"category"`
		Amount   core.Money `json:"amount"`
	}

	ScatterPoint struct {
		Date    core.Date  `json:"date"`
		Weekday string     `json:"weekday"`
		Amount  core.Money `json:"amount"`
	}
)

func (f *Flow) add(t core.Transaction) {
	if t.IsExpense() {
		f.Expense = f.Expense.Add(t.Amount)
		return
	}
	f.Income = f.Income.Add(t.Amount)
}

// Total is income plus expense for the bucket.
func (f Flow) Total() core.Money {
	return f.Income.Add(f.Expense)
}

// Totals sums income and expense over the whole snapshot.
func (s Snapshot) Totals() Totals {
	var f Flow
	for _, t := range s.txs {
		f.add(t)
	}
	return Totals{
		Income:  f.Income,
		Expense: f.Expense,
		Balance: f.Income.Sub(f.Expense),
		Count:   len(s.txs),
	}
}

// ByDate groups by calendar date, ascending.
func (s Snapshot) ByDate() []DateFlow {
	out := []DateFlow{}
	for _, t := range s.txs {
		if n := len(out); n == 0 || !out[n-1].Date.Equal(t.Date) {
			out = append(out, DateFlow{Date: t.Date})
		}
		out[len(out)-1].add(t)
	}
	return out
}

// ByWeekday groups by day of week. Only weekdays with data are returned,
// ordered Sunday first.
func (s Snapshot) ByWeekday() []WeekdayFlow {
	var buckets [7]*WeekdayFlow
	for _, t := range s.txs {
		p := Decompose(t.Date)
		if buckets[p.Weekday] == nil {
			buckets[p.Weekday] = &WeekdayFlow{Weekday: p.Weekday, Name: p.WeekdayName}
		}
		buckets[p.Weekday].add(t)
	}

	out := []WeekdayFlow{}
	for _, b := range buckets {
		if b != nil {
			out = append(out, *b)
		}
	}
	return out
}

// DailyAvgExpense averages expense amounts per calendar date.
func (s Snapshot) DailyAvgExpense() []DailyAverage {
	type day struct {
		date  core.Date
		cents int64
		n     int64
	}
	var days []day
	for _, t := range s.txs {
		if !t.IsExpense() {
			continue
		}
		if n := len(days); n == 0 || !days[n-1].date.Equal(t.Date) {
			days = append(days, day{date: t.Date})
		}
		days[len(days)-1].cents += t.Amount.Cents
		days[len(days)-1].n++
	}

	out := make([]DailyAverage, 0, len(days))
	for _, d := range days {
		out = append(out, DailyAverage{
			Date:    d.date,
			Average: decimal.New(d.cents, -2).Div(decimal.NewFromInt(d.n)).Round(2),
		})
	}
	return out
}

// MarshalJSON renders the average with two decimals, like Money.
func (d DailyAverage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date    core.Date `json:"date"`
		Average string    `json:"average"`
	}{d.Date, d.Average.StringFixed(2)})
}

// ByCategory groups by category name, ascending.
func (s Snapshot) ByCategory() []CategoryFlow {
	byName := make(map[string]*CategoryFlow)
	for _, t := range s.txs {
		c, ok := byName[t.Category]
		if !ok {
			c = &CategoryFlow{Category: t.Category}
			byName[t.Category] = c
		}
		c.add(t)
	}

	out := make([]CategoryFlow, 0, len(byName))
	for _, c := range byName {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Category < out[j].Category
	})
	return out
}

// ByMonth groups by YYYY-MM, ascending.
func (s Snapshot) ByMonth() []MonthFlow {
	out := []MonthFlow{}
	for _, t := range s.txs {
		month := Decompose(t.Date).Month
		if n := len(out); n == 0 || out[n-1].Month != month {
			out = append(out, MonthFlow{Month: month})
		}
		out[len(out)-1].add(t)
	}
	return out
}

// RollingExpenseSum is a trailing sum over the date-grouped expense series.
// Each row covers itself and up to window-1 preceding grouped rows; gaps
// between dates are skipped, not zero-filled. window <= 0 means
// DefaultRollingWindow.
func (s Snapshot) RollingExpenseSum(window int) []RollingPoint {
	if window <= 0 {
		window = DefaultRollingWindow
	}
	days := s.expenseDays()

	out := make([]RollingPoint, 0, len(days))
	var running int64
	for i, d := range days {
		running += d.Sum.Cents
		if i >= window {
			running -= days[i-window].Sum.Cents
		}
		out = append(out, RollingPoint{Date: d.Date, Sum: core.Money{Cents: running}})
	}
	return out
}

// ExpensePie is the expense side of ByCategory.
func (s Snapshot) ExpensePie() []PieSlice {
	out := []PieSlice{}
	for _, c := range s.ByCategory() {
		if c.Expense.IsZero() {
			continue
		}
		out = append(out, PieSlice{Category: c.Category, Amount: c.Expense})
	}
	return out
}

// ScatterDayPattern lists every expense with its weekday, in date order.
func (s Snapshot) ScatterDayPattern() []ScatterPoint {
	out := []ScatterPoint{}
	for _, t := range s.txs {
		if !t.IsExpense() {
			continue
		}
		out = append(out, ScatterPoint{
			Date:    t.Date,
			Weekday: Decompose(t.Date).WeekdayName,
			Amount:  t.Amount,
		})
	}
	return out
}
