package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/report"
	"expensetracker/internal/store/memory"
)

var today = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu       sync.Mutex
	recorded []core.Transaction
	exported []core.MonthTotals
	err      error
}

func (p *recordingPublisher) PublishTransactionRecorded(_ context.Context, tx core.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recorded = append(p.recorded, tx)
	return p.err
}

func (p *recordingPublisher) PublishReportExported(_ context.Context, totals core.MonthTotals) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exported = append(p.exported, totals)
	return p.err
}

func newTracker(t *testing.T, opts ...Option) *Tracker {
	t.Helper()
	l := ledger.New(memory.New(), ledger.WithClock(func() time.Time { return today }))
	quiet := log.New(log.Config{Output: io.Discard})
	return NewTracker(l, append([]Option{WithLogger(quiet)}, opts...)...)
}

func add(t *testing.T, tr *Tracker, amount string, kind core.Kind, category core.Category) core.Transaction {
	t.Helper()
	tx, err := tr.AddTransaction(context.Background(), AddTransactionInput{Amount: amount, Kind: kind, Category: category})
	require.NoError(t, err)
	return tx
}

func TestTracker_Scenario(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t)

	add(t, tr, "100", core.Income, core.Food)
	add(t, tr, "40", core.Expense, core.Transport)

	balance, err := tr.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "60.00", balance.Amount.String())
	assert.Equal(t, core.BalancePositive, balance.State)
	assert.Equal(t, "Balance: ₹60.00", balance.Text)

	rep, err := tr.ViewMonthlyReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2024, rep.Totals.Year)
	assert.Equal(t, time.March, rep.Totals.Month)
	assert.Equal(t, "Monthly Report\nIncome: ₹100.00\nExpenses: ₹40.00\nBalance: ₹60.00", rep.Text)

	path := filepath.Join(t.TempDir(), "march.txt")
	_, err = tr.ExportMonthlyReport(ctx, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MONTHLY EXPENSE REPORT\n----------------------\nIncome: ₹100.00\nExpenses: ₹40.00\nBalance: ₹60.00\n", string(data))
}

func TestTracker_EmptyLedger(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t)

	balance, err := tr.CurrentBalance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Amount.IsZero())
	assert.Equal(t, core.BalancePositive, balance.State)

	rep, err := tr.ViewMonthlyReport(ctx)
	require.NoError(t, err)
	assert.True(t, rep.Totals.Income.IsZero())
	assert.True(t, rep.Totals.Expense.IsZero())
}

func TestTracker_InvalidAmountLeavesLedgerUnchanged(t *testing.T) {
	ctx := context.Background()
	tr := newTracker(t)
	add(t, tr, "10", core.Income, core.Other)

	for _, amount := range []string{"", "abc", "1.2.3", "-5"} {
		_, err := tr.AddTransaction(ctx, AddTransactionInput{Amount: amount, Kind: core.Expense, Category: core.Rent})
		require.Error(t, err, "amount %q", amount)
		assert.ErrorIs(t, err, core.ErrInvalidAmount)
		assert.Equal(t, MsgInvalidAmount, UserMessage(err))
	}

	txs, err := tr.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestTracker_NegativeBalance(t *testing.T) {
	tr := newTracker(t, WithCurrencySymbol("$"))
	add(t, tr, "20", core.Expense, core.Entertainment)

	balance, err := tr.CurrentBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.BalanceNegative, balance.State)
	assert.Equal(t, "Balance: $-20.00", balance.Text)
}

func TestTracker_InvalidSelection(t *testing.T) {
	tr := newTracker(t)

	_, err := tr.AddTransaction(context.Background(), AddTransactionInput{Amount: "5", Kind: "Gift", Category: core.Food})
	require.Error(t, err)
	assert.True(t, IsInvalidSelection(err))
	assert.Equal(t, MsgGeneric, UserMessage(err))
}

func TestTracker_ExportFailure(t *testing.T) {
	tr := newTracker(t)
	add(t, tr, "100", core.Income, core.Food)

	_, err := tr.ExportMonthlyReport(context.Background(), filepath.Join(t.TempDir(), "missing", "r.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrExportFailed)
	assert.Equal(t, MsgExportFailed, UserMessage(err))
}

func TestTracker_ExportDefaultFileName(t *testing.T) {
	target := filepath.Join(t.TempDir(), "Custom_Report.txt")
	tr := newTracker(t, WithReportFileName(target))
	add(t, tr, "7.5", core.Income, core.Other)

	_, err := tr.ExportMonthlyReport(context.Background(), "")
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Income: ₹7.50\n")
}

func TestTracker_PublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	tr := newTracker(t, WithPublisher(pub))

	tx := add(t, tr, "100", core.Income, core.Food)
	_, err := tr.ExportMonthlyReport(context.Background(), filepath.Join(t.TempDir(), "r.txt"))
	require.NoError(t, err)

	require.Len(t, pub.recorded, 1)
	assert.Equal(t, tx.ID, pub.recorded[0].ID)
	require.Len(t, pub.exported, 1)
	assert.Equal(t, "100.00", pub.exported[0].Income.String())
}

func TestTracker_PublishFailureDoesNotFailAction(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	tr := newTracker(t, WithPublisher(pub))

	_, err := tr.AddTransaction(context.Background(), AddTransactionInput{Amount: "3", Kind: core.Income, Category: core.Other})
	require.NoError(t, err)

	txs, err := tr.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestTracker_NoEventOnRejectedInput(t *testing.T) {
	pub := &recordingPublisher{}
	tr := newTracker(t, WithPublisher(pub))

	_, err := tr.AddTransaction(context.Background(), AddTransactionInput{Amount: "x", Kind: core.Income, Category: core.Other})
	require.Error(t, err)
	assert.Empty(t, pub.recorded)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, MsgGeneric, UserMessage(errors.New("disk gone")))
}

func TestTracker_Describe(t *testing.T) {
	tr := newTracker(t)
	tx := add(t, tr, "12.5", core.Expense, core.Utilities)

	assert.Equal(t, "2024-03-15  Expense  Utilities      ₹12.50", tr.Describe(tx))
}
