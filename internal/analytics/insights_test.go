package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func titles(ins []Insight) []string {
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = in.Title
	}
	return out
}

func find(ins []Insight, title string) (Insight, bool) {
	for _, in := range ins {
		if in.Title == title {
			return in, true
		}
	}
	return Insight{}, false
}

func TestIncomeVsExpenses(t *testing.T) {
	tests := []struct {
		name    string
		txs     []core.Transaction
		want    string
		present bool
	}{
		{
			name: "income exceeds expenses",
			txs: []core.Transaction{
				tx(1, "2024-01-01", core.Income, "Salary", 10000, ""),
				tx(2, "2024-01-01", core.Expense, "Food", 5000, ""),
			},
			want:    "income exceeds expenses by $50.00",
			present: true,
		},
		{
			name: "expenses exceed income",
			txs: []core.Transaction{
				tx(1, "2024-01-01", core.Income, "Salary", 1000, ""),
				tx(2, "2024-01-01", core.Expense, "Food", 5000, ""),
			},
			want:    "expenses exceed income by $40.00",
			present: true,
		},
		{
			name: "equal",
			txs: []core.Transaction{
				tx(1, "2024-01-01", core.Income, "Salary", 5000, ""),
				tx(2, "2024-01-01", core.Expense, "Food", 5000, ""),
			},
			want:    "income and expenses are equal",
			present: true,
		},
		{
			name:    "no data",
			present: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := IncomeVsExpenses(NewSnapshot(tt.txs, core.Date{}))
			require.Equal(t, tt.present, ok)
			if ok {
				assert.Equal(t, TitleIncomeVsExpenses, got.Title)
				assert.Contains(t, got.Message, tt.want)
			}
		})
	}
}

func TestFrequentExpense(t *testing.T) {
	coffee := func(id int64) core.Transaction {
		return tx(id, "2024-01-01", core.Expense, "Food", 350, "Coffee")
	}

	t.Run("present above threshold", func(t *testing.T) {
		s := NewSnapshot([]core.Transaction{
			coffee(1), coffee(2), coffee(3), coffee(4),
			tx(5, "2024-01-02", core.Expense, "Food", 1200, "Lunch"),
			tx(6, "2024-01-02", core.Expense, "Food", 1200, "Lunch"),
		}, core.Date{})

		ins := Insights(s, DefaultRules(DefaultOptions()))
		got, ok := find(ins, TitleFrequentExpense)
		require.True(t, ok)
		assert.Contains(t, got.Message, `"Coffee"`)
		assert.Contains(t, got.Message, "4 times")
		assert.Contains(t, got.Message, "$14.00")
	})

	t.Run("absent at threshold", func(t *testing.T) {
		s := NewSnapshot([]core.Transaction{
			coffee(1), coffee(2), coffee(3),
			tx(4, "2024-01-02", core.Expense, "Food", 1200, "Lunch"),
		}, core.Date{})

		ins := Insights(s, DefaultRules(DefaultOptions()))
		_, ok := find(ins, TitleFrequentExpense)
		assert.False(t, ok)
	})

	t.Run("income descriptions are ignored", func(t *testing.T) {
		var txs []core.Transaction
		for i := int64(1); i <= 5; i++ {
			txs = append(txs, tx(i, "2024-01-01", core.Income, "Salary", 100, "Payroll"))
		}
		_, ok := FrequentExpense(3)(NewSnapshot(txs, core.Date{}))
		assert.False(t, ok)
	})

	t.Run("ties prefer description order", func(t *testing.T) {
		var txs []core.Transaction
		for i := int64(1); i <= 4; i++ {
			txs = append(txs,
				tx(i, "2024-01-01", core.Expense, "Food", 100, "Tea"),
				tx(10+i, "2024-01-01", core.Expense, "Food", 100, "Bagel"),
			)
		}
		got, ok := FrequentExpense(3)(NewSnapshot(txs, core.Date{}))
		require.True(t, ok)
		assert.Contains(t, got.Message, `"Bagel"`)
	})
}

func TestTopCategories(t *testing.T) {
	s := NewSnapshot([]core.Transaction{
		tx(1, "2024-01-01", core.Expense, "Travel", 5000, ""),
		tx(2, "2024-01-01", core.Expense, "Food", 3000, ""),
		tx(3, "2024-01-01", core.Expense, "Books", 3000, ""),
		tx(4, "2024-01-01", core.Expense, "Games", 1000, ""),
		tx(5, "2024-01-01", core.Income, "Salary", 900000, ""),
	}, core.Date{})

	got, ok := TopCategories(3)(s)
	require.True(t, ok)
	assert.Equal(t, "Your top 3 spending categories are: Travel, Books, Food.", got.Message)

	single := NewSnapshot([]core.Transaction{tx(1, "2024-01-01", core.Expense, "Rent", 100, "")}, core.Date{})
	got, ok = TopCategories(3)(single)
	require.True(t, ok)
	assert.Equal(t, "Your top spending category is Rent.", got.Message)

	_, ok = TopCategories(3)(NewSnapshot(nil, core.Date{}))
	assert.False(t, ok)
}

func TestAverageSpending(t *testing.T) {
	s := NewSnapshot([]core.Transaction{
		tx(1, "2024-01-01", core.Expense, "Food", 2000, ""),
		tx(2, "2024-01-02", core.Expense, "Food", 3000, ""),
		tx(3, "2024-01-02", core.Income, "Salary", 100000, ""),
	}, core.Date{})

	got, ok := AverageSpending(decimal.NewFromInt(500))(s)
	require.True(t, ok)
	assert.Equal(t, "Your average spending is $25.00. Optimal average spending is $500.00, so you are below the optimum.", got.Message)

	got, ok = AverageSpending(decimal.NewFromInt(10))(s)
	require.True(t, ok)
	assert.Contains(t, got.Message, "above the optimum")

	_, ok = AverageSpending(decimal.NewFromInt(10))(NewSnapshot(nil, core.Date{}))
	assert.False(t, ok)
}

func TestMonthOverMonth(t *testing.T) {
	tests := []struct {
		name string
		asOf string
		txs  []core.Transaction
		want string
	}{
		{
			name: "increased",
			asOf: "2024-03-15",
			txs: []core.Transaction{
				tx(1, "2024-03-02", core.Expense, "Food", 12500, ""),
				tx(2, "2024-02-10", core.Expense, "Food", 10000, ""),
				tx(3, "2024-02-20", core.Expense, "Food", 99900, ""), // after the compared range
				tx(4, "2024-03-16", core.Expense, "Food", 99900, ""), // after as-of
			},
			want: "increased by 25.00% compared with the same period last month ($125.00 vs $100.00)",
		},
		{
			name: "reduced",
			asOf: "2024-03-15",
			txs: []core.Transaction{
				tx(1, "2024-03-02", core.Expense, "Food", 8000, ""),
				tx(2, "2024-02-15", core.Expense, "Food", 10000, ""),
			},
			want: "reduced by 20.00%",
		},
		{
			name: "stable only on exact equality",
			asOf: "2024-03-15",
			txs: []core.Transaction{
				tx(1, "2024-03-02", core.Expense, "Food", 10000, ""),
				tx(2, "2024-02-01", core.Expense, "Food", 10000, ""),
			},
			want: "stable",
		},
		{
			name: "previous range is clamped to month length",
			asOf: "2024-03-31",
			txs: []core.Transaction{
				tx(1, "2024-03-31", core.Expense, "Food", 10000, ""),
				tx(2, "2024-02-29", core.Expense, "Food", 10000, ""),
			},
			want: "stable",
		},
		{
			name: "no previous spending",
			asOf: "2024-03-15",
			txs: []core.Transaction{
				tx(1, "2024-03-02", core.Expense, "Food", 4200, ""),
			},
			want: "increased by $42.00",
		},
		{
			name: "year boundary",
			asOf: "2024-01-10",
			txs: []core.Transaction{
				tx(1, "2024-01-05", core.Expense, "Food", 1000, ""),
				tx(2, "2023-12-05", core.Expense, "Food", 2000, ""),
			},
			want: "reduced by 50.00%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MonthOverMonth(NewSnapshot(tt.txs, day(tt.asOf)))
			require.True(t, ok)
			assert.Equal(t, TitleMonthOverMonth, got.Title)
			assert.Contains(t, got.Message, tt.want)
		})
	}

	t.Run("omitted without expenses", func(t *testing.T) {
		s := NewSnapshot([]core.Transaction{tx(1, "2024-03-02", core.Income, "Salary", 100, "")}, day("2024-03-15"))
		_, ok := MonthOverMonth(s)
		assert.False(t, ok)
	})
}

func TestExpenseIncomeRatio(t *testing.T) {
	s := NewSnapshot([]core.Transaction{
		tx(1, "2024-01-01", core.Income, "Salary", 30000, ""),
		tx(2, "2024-01-01", core.Expense, "Food", 10000, ""),
	}, core.Date{})
	got, ok := ExpenseIncomeRatio(s)
	require.True(t, ok)
	assert.Equal(t, "Your expense to income ratio is 33.33%.", got.Message)

	_, ok = ExpenseIncomeRatio(NewSnapshot([]core.Transaction{tx(1, "2024-01-01", core.Expense, "Food", 1, "")}, core.Date{}))
	assert.False(t, ok)
}

func TestHighestSpendingMonthAndProjection(t *testing.T) {
	s := NewSnapshot([]core.Transaction{
		tx(1, "2024-01-05", core.Expense, "Food", 10000, ""),
		tx(2, "2024-02-05", core.Expense, "Food", 20000, ""),
		tx(3, "2024-03-05", core.Income, "Salary", 500000, ""),
	}, core.Date{})

	got, ok := HighestSpendingMonth(s)
	require.True(t, ok)
	assert.Equal(t, "Your spending has varied over the months, with the highest spending in 2024-02 at $200.00.", got.Message)

	got, ok = ProjectedAnnualExpenses(s)
	require.True(t, ok)
	assert.Equal(t, "Based on your average monthly spending of $150.00, your projected annual expenses are $1,800.00.", got.Message)
}

func TestInsights_RuleOrder(t *testing.T) {
	var txs []core.Transaction
	for i := int64(1); i <= 4; i++ {
		txs = append(txs, tx(i, core.NewDate(2024, 3, int(i)).String(), core.Expense, "Food", 500, "Coffee"))
	}
	txs = append(txs,
		tx(10, "2024-02-02", core.Expense, "Rent", 80000, ""),
		tx(11, "2024-02-01", core.Income, "Salary", 300000, ""),
	)

	ins := Insights(NewSnapshot(txs, day("2024-03-15")), DefaultRules(Options{}))
	assert.Equal(t, []string{
		TitleAverageSpending,
		TitleTopCategories,
		TitleIncomeVsExpenses,
		TitleMonthOverMonth,
		TitleFrequentExpense,
		TitleMonthlyTrends,
		TitleExpenseRatio,
		TitleProjectedAnnual,
	}, titles(ins))
}

func TestInsights_CustomRules(t *testing.T) {
	always := func(Snapshot) (Insight, bool) { return Insight{Title: "always"}, true }
	never := func(Snapshot) (Insight, bool) { return Insight{Title: "never"}, false }

	ins := Insights(NewSnapshot(nil, core.Date{}), []Rule{never, always, never})
	assert.Equal(t, []string{"always"}, titles(ins))
}
