package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorRed    = lipgloss.Color("#D14D41")
	colorMuted  = lipgloss.Color("#6F6E69")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numberStyle  = cellStyle.Align(lipgloss.Right)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	warnStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// newTable renders columns listed in numeric right-aligned.
func newTable(title string, headers []string, rows [][]string, numeric ...int) string {
	right := make(map[int]bool, len(numeric))
	for _, c := range numeric {
		right[c] = true
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})
	return headerStyle.Render(title) + "\n" + t.Render() + "\n"
}

func renderReport(user core.User, r analytics.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  as of %s", user.Name, r.AsOf)))
	b.WriteString("\n\n")

	if r.Empty() {
		b.WriteString(mutedStyle.Render("No transactions recorded yet."))
		b.WriteString("\n")
		return b.String()
	}

	balance := r.Totals.Balance.String()
	if r.Totals.Balance.Cents < 0 {
		balance = warnStyle.Render(balance)
	} else {
		balance = successStyle.Render(balance)
	}
	b.WriteString(newTable("Totals", []string{"Income", "Expense", "Balance", "Transactions"}, [][]string{{
		r.Totals.Income.String(),
		r.Totals.Expense.String(),
		balance,
		humanize.Comma(int64(r.Totals.Count)),
	}}, 0, 1, 2, 3))
	b.WriteString("\n")

	rows := make([][]string, 0, len(r.ByCategory))
	for _, c := range r.ByCategory {
		rows = append(rows, []string{c.Category, c.Income.String(), c.Expense.String()})
	}
	b.WriteString(newTable("By category", []string{"Category", "Income", "Expense"}, rows, 1, 2))
	b.WriteString("\n")

	rows = make([][]string, 0, len(r.ByMonth))
	for _, m := range r.ByMonth {
		rows = append(rows, []string{m.Month, m.Income.String(), m.Expense.String(), m.Income.Sub(m.Expense).String()})
	}
	b.WriteString(newTable("By month", []string{"Month", "Income", "Expense", "Net"}, rows, 1, 2, 3))
	b.WriteString("\n")

	rows = make([][]string, 0, len(r.ByWeekday))
	for _, w := range r.ByWeekday {
		rows = append(rows, []string{w.Name, w.Expense.String()})
	}
	b.WriteString(newTable("Spending by weekday", []string{"Weekday", "Expense"}, rows, 1))

	if len(r.Insights) > 0 {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render("Insights"))
		b.WriteString("\n")
		for _, in := range r.Insights {
			fmt.Fprintf(&b, "  • %s: %s\n", lipgloss.NewStyle().Bold(true).Render(in.Title), in.Message)
		}
	}
	return b.String()
}

func renderTransactions(title string, txs []core.Transaction) string {
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []string{t.Date.String(), t.Type.String(), t.Category, t.Amount.String(), t.Description})
	}
	return newTable(title, []string{"Date", "Type", "Category", "Amount", "Description"}, rows, 3)
}

func renderImportResult(file string, r ImportResult) string {
	msg := fmt.Sprintf("Imported %s transactions from %s", humanize.Comma(int64(r.Imported)), file)
	if r.Failed == 0 {
		return successStyle.Render(msg)
	}
	return successStyle.Render(msg) + "\n" + warnStyle.Render(fmt.Sprintf("%s rows skipped, see log for details", humanize.Comma(int64(r.Failed))))
}
