package google

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// Header is the first row of the ledger sheet.
var Header = []any{"ID", "User", "Date", "Type", "Category", "Amount", "Description"}

// lastColumn is the column letter of the final Header cell.
const lastColumn = "G"

// toRow renders t in Header order. Amounts are plain decimals so the sheet
// can sum them.
func toRow(t core.Transaction) []any {
	return []any{
		strconv.FormatInt(t.ID, 10),
		strconv.FormatInt(t.UserID, 10),
		t.Date.String(),
		t.Type.String(),
		t.Category,
		t.Amount.Plain(),
		t.Description,
	}
}

// findRow returns the 1-based sheet row whose first cell is id, or 0.
func findRow(values [][]any, id int64) int {
	want := strconv.FormatInt(id, 10)
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if cellString(row[0]) == want {
			return i + 1
		}
	}
	return 0
}

// cellString normalizes a cell; numbers may come back as float64.
func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", quoteSheet(sheet), row, lastColumn, row)
}

func columnRange(sheet string) string {
	return fmt.Sprintf("%s!A:%s", quoteSheet(sheet), lastColumn)
}

// quoteSheet quotes names that A1 notation would otherwise misread.
func quoteSheet(name string) string {
	if strings.ContainsAny(name, " '!:") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}
