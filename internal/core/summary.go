package core

import "time"

// BalanceState is the sign classification used when displaying a balance.
type BalanceState string

const (
	BalancePositive BalanceState = "positive"
	BalanceNegative BalanceState = "negative"
)

// MonthTotals holds income and expense sums for a specific year+month.
type MonthTotals struct {
	Year    int
	Month   time.Month
	Income  Money
	Expense Money
}

// Balance is income minus expense for the period.
func (t MonthTotals) Balance() Money {
	return t.Income.Sub(t.Expense)
}
