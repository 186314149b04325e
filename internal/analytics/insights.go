package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Insight is a short derived observation about spending behaviour.
type Insight struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Rule derives at most one insight from a snapshot.
type Rule func(Snapshot) (Insight, bool)

const (
	TitleAverageSpending  = "Average Spending"
	TitleTopCategories    = "Top Spending Categories"
	TitleIncomeVsExpenses = "Income vs Expenses"
	TitleMonthOverMonth   = "Month over Month"
	TitleFrequentExpense  = "Frequent Expense"
	TitleMonthlyTrends    = "Monthly Spending Trends"
	TitleExpenseRatio     = "Expense to Income Ratio"
	TitleProjectedAnnual  = "Projected Annual Expenses"
)

var hundred = decimal.NewFromInt(100)

// Insights runs rules in order and keeps the ones that produced a result.
func Insights(s Snapshot, rules []Rule) []Insight {
	out := []Insight{}
	for _, rule := range rules {
		if in, ok := rule(s); ok {
			out = append(out, in)
		}
	}
	return out
}

// DefaultRules is the insight feed shown on the dashboard.
func DefaultRules(opts Options) []Rule {
	opts = opts.withDefaults()
	return []Rule{
		AverageSpending(opts.OptimalAverage),
		TopCategories(3),
		IncomeVsExpenses,
		MonthOverMonth,
		FrequentExpense(3),
		HighestSpendingMonth,
		ExpenseIncomeRatio,
		ProjectedAnnualExpenses,
	}
}

// AverageSpending reports the mean expense amount against an optimal average.
func AverageSpending(optimal decimal.Decimal) Rule {
	return func(s Snapshot) (Insight, bool) {
		var cents, n int64
		for _, t := range s.txs {
			if t.IsExpense() {
				cents += t.Amount.Cents
				n++
			}
		}
		if n == 0 {
			return Insight{}, false
		}

		avg := decimal.New(cents, -2).Div(decimal.NewFromInt(n))
		position := "right at"
		switch avg.Cmp(optimal) {
		case 1:
			position = "above"
		case -1:
			position = "below"
		}
		return Insight{
			Title: TitleAverageSpending,
			Message: fmt.Sprintf("Your average spending is %s. Optimal average spending is %s, so you are %s the optimum.",
				core.FormatAmount(avg), core.FormatAmount(optimal), position),
		}, true
	}
}

// TopCategories names the n largest expense categories. Equal sums are
// ordered by category name.
func TopCategories(n int) Rule {
	return func(s Snapshot) (Insight, bool) {
		slices := s.ExpensePie()
		if len(slices) == 0 || n <= 0 {
			return Insight{}, false
		}
		sort.SliceStable(slices, func(i, j int) bool {
			if slices[i].Amount.Cents != slices[j].Amount.Cents {
				return slices[i].Amount.Cents > slices[j].Amount.Cents
			}
			return slices[i].Category < slices[j].Category
		})
		if len(slices) > n {
			slices = slices[:n]
		}

		names := make([]string, len(slices))
		for i, sl := range slices {
			names[i] = sl.Category
		}
		msg := fmt.Sprintf("Your top %d spending categories are: %s.", len(names), strings.Join(names, ", "))
		if len(names) == 1 {
			msg = fmt.Sprintf("Your top spending category is %s.", names[0])
		}
		return Insight{Title: TitleTopCategories, Message: msg}, true
	}
}

// IncomeVsExpenses picks exactly one of three comparisons.
func IncomeVsExpenses(s Snapshot) (Insight, bool) {
	t := s.Totals()
	if t.Income.IsZero() && t.Expense.IsZero() {
		return Insight{}, false
	}

	var msg string
	switch {
	case t.Expense.Cents > t.Income.Cents:
		msg = fmt.Sprintf("Your expenses exceed income by %s.", t.Expense.Sub(t.Income))
	case t.Income.Cents > t.Expense.Cents:
		msg = fmt.Sprintf("Your income exceeds expenses by %s.", t.Income.Sub(t.Expense))
	default:
		msg = fmt.Sprintf("Your income and expenses are equal at %s.", t.Income)
	}
	return Insight{Title: TitleIncomeVsExpenses, Message: msg}, true
}

// MonthOverMonth compares month-to-date expenses with the same day range of
// the previous month. The previous range ends on the same day number, clamped
// to the length of the previous month.
func MonthOverMonth(s Snapshot) (Insight, bool) {
	if !s.hasExpenses() || s.asOf.IsZero() {
		return Insight{}, false
	}

	curFrom := monthStart(s.asOf)
	curTo := s.asOf
	prevFrom := core.DateOf(curFrom.AddDate(0, -1, 0))
	prevTo := core.NewDate(prevFrom.Year(), int(prevFrom.Month()), min(s.asOf.Day(), daysIn(prevFrom)))

	var cur, prev core.Money
	for _, t := range s.txs {
		if !t.IsExpense() {
			continue
		}
		switch {
		case between(t.Date, curFrom, curTo):
			cur = cur.Add(t.Amount)
		case between(t.Date, prevFrom, prevTo):
			prev = prev.Add(t.Amount)
		}
	}

	var msg string
	switch {
	case cur.Cents == prev.Cents:
		msg = fmt.Sprintf("Your month-to-date spending is stable compared with the same period last month (%s).", cur)
	case cur.Cents > prev.Cents:
		msg = fmt.Sprintf("Your month-to-date spending increased by %s compared with the same period last month (%s vs %s).",
			change(cur, prev), cur, prev)
	default:
		msg = fmt.Sprintf("Your month-to-date spending reduced by %s compared with the same period last month (%s vs %s).",
			change(cur, prev), cur, prev)
	}
	return Insight{Title: TitleMonthOverMonth, Message: msg}, true
}

// change is the absolute difference as a percentage of prev, or as an amount
// when prev is zero.
func change(cur, prev core.Money) string {
	diff := cur.Sub(prev)
	if diff.Cents < 0 {
		diff.Cents = -diff.Cents
	}
	if prev.IsZero() {
		return diff.String()
	}
	return percent(diff.Decimal(), prev.Decimal())
}

// percent renders num/den as a percentage with two decimals.
func percent(num, den decimal.Decimal) string {
	return num.Div(den).Mul(hundred).StringFixed(2) + "%"
}

// FrequentExpense reports the most repeated expense description when it
// appears more than threshold times.
func FrequentExpense(threshold int) Rule {
	return func(s Snapshot) (Insight, bool) {
		type tally struct {
			n     int
			total core.Money
		}
		counts := make(map[string]*tally)
		for _, t := range s.txs {
			desc := strings.TrimSpace(t.Description)
			if !t.IsExpense() || desc == "" {
				continue
			}
			c, ok := counts[desc]
			if !ok {
				c = &tally{}
				counts[desc] = c
			}
			c.n++
			c.total = c.total.Add(t.Amount)
		}

		best := ""
		for desc, c := range counts {
			if c.n <= threshold {
				continue
			}
			if best == "" || c.n > counts[best].n || (c.n == counts[best].n && desc < best) {
				best = desc
			}
		}
		if best == "" {
			return Insight{}, false
		}
		return Insight{
			Title: TitleFrequentExpense,
			Message: fmt.Sprintf("%q appears %d times in your expenses, adding up to %s.",
				best, counts[best].n, counts[best].total),
		}, true
	}
}

// HighestSpendingMonth names the month with the largest expense total. Ties
// go to the earlier month.
func HighestSpendingMonth(s Snapshot) (Insight, bool) {
	var top *MonthFlow
	months := s.ByMonth()
	for i := range months {
		if months[i].Expense.IsZero() {
			continue
		}
		if top == nil || months[i].Expense.Cents > top.Expense.Cents {
			top = &months[i]
		}
	}
	if top == nil {
		return Insight{}, false
	}
	return Insight{
		Title: TitleMonthlyTrends,
		Message: fmt.Sprintf("Your spending has varied over the months, with the highest spending in %s at %s.",
			top.Month, top.Expense),
	}, true
}

// ExpenseIncomeRatio reports expenses as a share of income.
func ExpenseIncomeRatio(s Snapshot) (Insight, bool) {
	t := s.Totals()
	if t.Income.IsZero() {
		return Insight{}, false
	}
	return Insight{
		Title:   TitleExpenseRatio,
		Message: fmt.Sprintf("Your expense to income ratio is %s.", percent(t.Expense.Decimal(), t.Income.Decimal())),
	}, true
}

// ProjectedAnnualExpenses extrapolates the average monthly expense over a year.
// Only months with at least one expense count towards the average.
func ProjectedAnnualExpenses(s Snapshot) (Insight, bool) {
	var total core.Money
	var months int64
	for _, m := range s.ByMonth() {
		if m.Expense.IsZero() {
			continue
		}
		total = total.Add(m.Expense)
		months++
	}
	if months == 0 {
		return Insight{}, false
	}

	monthly := total.Decimal().Div(decimal.NewFromInt(months))
	return Insight{
		Title: TitleProjectedAnnual,
		Message: fmt.Sprintf("Based on your average monthly spending of %s, your projected annual expenses are %s.",
			core.FormatAmount(monthly), core.FormatAmount(monthly.Mul(decimal.NewFromInt(12)))),
	}, true
}
