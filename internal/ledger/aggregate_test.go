package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"expensetracker/internal/core"
)

func entry(amount string, kind core.Kind, date core.Date) core.Transaction {
	m, err := core.ParseAmount(amount)
	if err != nil {
		panic(err)
	}
	return core.Transaction{ID: amount, Date: date, Amount: m, Kind: kind, Category: core.Other}
}

func TestCurrentBalanceEmpty(t *testing.T) {
	balance := CurrentBalance(nil)
	assert.True(t, balance.IsZero())
	assert.Equal(t, core.BalancePositive, ClassifyBalance(balance))

	totals := MonthlyTotals(nil, today)
	assert.True(t, totals.Income.IsZero())
	assert.True(t, totals.Expense.IsZero())
}

func TestCurrentBalanceIsAdditiveInAnyOrder(t *testing.T) {
	d := core.DateOf(today)
	txs := []core.Transaction{
		entry("100", core.Income, d),
		entry("40", core.Expense, d),
		entry("0.10", core.Income, d),
		entry("0.20", core.Income, d),
		entry("12.5", core.Expense, core.NewDate(2019, time.July, 1)),
	}
	want := "47.80"

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		rng.Shuffle(len(txs), func(a, b int) { txs[a], txs[b] = txs[b], txs[a] })
		assert.Equal(t, want, CurrentBalance(txs).String())
	}
}

func TestClassifyBalance(t *testing.T) {
	cases := []struct {
		in   core.Money
		want core.BalanceState
	}{
		{core.MoneyFromInt(0), core.BalancePositive},
		{core.MoneyFromInt(1), core.BalancePositive},
		{core.MoneyFromInt(-1), core.BalanceNegative},
		{core.ZeroMoney.Sub(entry("0.01", core.Income, core.Date{}).Amount), core.BalanceNegative},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyBalance(tc.in), "balance %s", tc.in)
	}
}

func TestMonthlyTotalsFiltersByMonthAndYear(t *testing.T) {
	txs := []core.Transaction{
		entry("100", core.Income, core.NewDate(2025, time.March, 1)),
		entry("40", core.Expense, core.NewDate(2025, time.March, 31)),
		entry("999", core.Income, core.NewDate(2025, time.February, 28)),
		entry("888", core.Expense, core.NewDate(2025, time.April, 1)),
		entry("777", core.Income, core.NewDate(2024, time.March, 14)),
		entry("666", core.Expense, core.NewDate(2026, time.March, 14)),
	}

	totals := MonthlyTotals(txs, today)
	assert.Equal(t, 2025, totals.Year)
	assert.Equal(t, time.March, totals.Month)
	assert.Equal(t, "100.00", totals.Income.String())
	assert.Equal(t, "40.00", totals.Expense.String())
	assert.Equal(t, "60.00", totals.Balance().String())

	// The all-time balance is not month scoped.
	assert.Equal(t, "282.00", CurrentBalance(txs).String())
}

func TestMonthlyTotalsNoMatches(t *testing.T) {
	txs := []core.Transaction{entry("5", core.Income, core.NewDate(2020, time.January, 1))}
	totals := MonthlyTotals(txs, today)
	assert.True(t, totals.Income.IsZero())
	assert.True(t, totals.Expense.IsZero())
}

func TestMonthlyTotalsUsesReferenceLocation(t *testing.T) {
	txs := []core.Transaction{entry("5", core.Income, core.NewDate(2025, time.April, 1))}
	loc := time.FixedZone("UTC+2", 2*3600)
	// 31 March 23:00 UTC is already 1 April at UTC+2.
	ref := time.Date(2025, time.March, 31, 23, 0, 0, 0, time.UTC).In(loc)

	totals := MonthlyTotals(txs, ref)
	assert.Equal(t, time.April, totals.Month)
	assert.Equal(t, "5.00", totals.Income.String())
}

func TestReadsAreIdempotent(t *testing.T) {
	d := core.DateOf(today)
	txs := []core.Transaction{entry("10", core.Income, d), entry("3", core.Expense, d)}

	assert.Equal(t, CurrentBalance(txs), CurrentBalance(txs))
	assert.Equal(t, MonthlyTotals(txs, today), MonthlyTotals(txs, today))
}
