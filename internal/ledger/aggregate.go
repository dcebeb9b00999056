package ledger

import (
	"time"

	"expensetracker/internal/core"
)

// CurrentBalance is total income minus total expense over the whole history.
func CurrentBalance(txs []core.Transaction) core.Money {
	income, expense := core.ZeroMoney, core.ZeroMoney
	for _, t := range txs {
		switch t.Kind {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expense = expense.Add(t.Amount)
		}
	}
	return income.Sub(expense)
}

// ClassifyBalance maps a balance onto its display state. Zero is positive.
func ClassifyBalance(balance core.Money) core.BalanceState {
	if balance.IsNegative() {
		return core.BalanceNegative
	}
	return core.BalancePositive
}

// MonthlyTotals sums income and expense for transactions dated in the same
// calendar month and year as ref, as observed in ref's location.
//
// Note the asymmetry with CurrentBalance, which is all-time.
func MonthlyTotals(txs []core.Transaction, ref time.Time) core.MonthTotals {
	year, month, _ := ref.Date()
	totals := core.MonthTotals{
		Year:    year,
		Month:   month,
		Income:  core.ZeroMoney,
		Expense: core.ZeroMoney,
	}
	for _, t := range txs {
		if !t.Date.InMonth(year, month) {
			continue
		}
		switch t.Kind {
		case core.Income:
			totals.Income = totals.Income.Add(t.Amount)
		case core.Expense:
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	return totals
}
