// Package report renders monthly totals for on-screen display and for the
// exported text file.
package report

import (
	"strings"

	"expensetracker/internal/core"
)

const (
	// DefaultFileName is suggested when the user does not pick a destination.
	DefaultFileName = "Monthly_Report.txt"

	SummaryTitle = "Monthly Report"
	FileTitle    = "MONTHLY EXPENSE REPORT"
	FileRule     = "----------------------"
)

// Lines returns the three value lines shared by every presentation target.
func Lines(t core.MonthTotals, symbol string) []string {
	return []string{
		"Income: " + t.Income.Format(symbol),
		"Expenses: " + t.Expense.Format(symbol),
		"Balance: " + t.Balance().Format(symbol),
	}
}

// Summary is the body of the on-screen monthly report.
func Summary(t core.MonthTotals, symbol string) string {
	return strings.Join(append([]string{SummaryTitle}, Lines(t, symbol)...), "\n")
}

// FileContent is the exact text written to an exported report file.
func FileContent(t core.MonthTotals, symbol string) []byte {
	var b strings.Builder
	b.WriteString(FileTitle + "\n")
	b.WriteString(FileRule + "\n")
	for _, line := range Lines(t, symbol) {
		b.WriteString(line + "\n")
	}
	return []byte(b.String())
}
