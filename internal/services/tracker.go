// Package services binds user actions to the ledger, the aggregations and
// the report exporter. Every presentation surface goes through Tracker.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/report"
)

// EventPublisher is notified after successful user actions. Implemented by
// the AMQP publisher.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error
	PublishReportExported(ctx context.Context, totals core.MonthTotals) error
}

// AddTransactionInput carries the raw form values of a new transaction.
type AddTransactionInput struct {
	Amount   string
	Kind     core.Kind
	Category core.Category
}

// BalanceView is the live balance readout.
type BalanceView struct {
	Amount core.Money
	State  core.BalanceState
	Text   string
}

// MonthlyReport is the current month's totals plus their rendered summary.
type MonthlyReport struct {
	Totals core.MonthTotals
	Text   string
}

type Tracker struct {
	ledger         *ledger.Ledger
	exporter       *report.Exporter
	publisher      EventPublisher
	logger         *log.Logger
	symbol         string
	reportFileName string
}

type Option func(*Tracker)

// WithPublisher enables event publishing. A nil publisher is ignored.
func WithPublisher(p EventPublisher) Option {
	return func(t *Tracker) { t.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithCurrencySymbol sets the prefix used for every rendered amount.
func WithCurrencySymbol(symbol string) Option {
	return func(t *Tracker) {
		if symbol != "" {
			t.symbol = symbol
		}
	}
}

// WithReportFileName sets the destination used when an export names none.
func WithReportFileName(name string) Option {
	return func(t *Tracker) {
		if name != "" {
			t.reportFileName = name
		}
	}
}

func NewTracker(l *ledger.Ledger, opts ...Option) *Tracker {
	t := &Tracker{
		ledger:         l,
		logger:         log.New(log.DefaultConfig()),
		symbol:         core.DefaultCurrencySymbol,
		reportFileName: report.DefaultFileName,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.WithComponent(log.ComponentLedger)
	t.exporter = report.NewExporter(t.symbol)
	return t
}

// CurrencySymbol returns the symbol prefixed to rendered amounts.
func (t *Tracker) CurrencySymbol() string { return t.symbol }

// ReportFileName returns the default export file name.
func (t *Tracker) ReportFileName() string { return t.reportFileName }

// Now is the tracker's notion of the current instant.
func (t *Tracker) Now() time.Time { return t.ledger.Now() }

// AddTransaction validates the input and appends it to the ledger. On an
// invalid amount the returned error matches core.ErrInvalidAmount and the
// ledger is unchanged.
func (t *Tracker) AddTransaction(ctx context.Context, in AddTransactionInput) (core.Transaction, error) {
	tx, err := t.ledger.Append(ctx, in.Amount, in.Kind, in.Category)
	if err != nil {
		t.logger.WarnContext(ctx, "Transaction rejected",
			log.FieldOperation, log.OpAppend,
			log.FieldKind, string(in.Kind),
			log.FieldCategory, string(in.Category),
			log.FieldError, err)
		return core.Transaction{}, err
	}

	t.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().
			WithOperation(log.OpAppend).
			WithTransaction(tx.ID, tx.Amount.String(), string(tx.Kind), string(tx.Category)).
			ToSlice()...)

	if t.publisher != nil {
		if err := t.publisher.PublishTransactionRecorded(ctx, tx); err != nil {
			t.logger.ErrorContext(ctx, "Failed to publish transaction event",
				log.FieldTxID, tx.ID,
				log.FieldError, err)
		}
	}
	return tx, nil
}

// CurrentBalance sums every transaction ever recorded, not only this month's.
func (t *Tracker) CurrentBalance(ctx context.Context) (BalanceView, error) {
	txs, err := t.ledger.Transactions(ctx)
	if err != nil {
		return BalanceView{}, err
	}
	balance := ledger.CurrentBalance(txs)
	return BalanceView{
		Amount: balance,
		State:  ledger.ClassifyBalance(balance),
		Text:   "Balance: " + balance.Format(t.symbol),
	}, nil
}

// ListTransactions returns the ledger in insertion order.
func (t *Tracker) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return t.ledger.Transactions(ctx)
}

// MonthlyTotals aggregates the month containing ref.
func (t *Tracker) MonthlyTotals(ctx context.Context, ref time.Time) (core.MonthTotals, error) {
	txs, err := t.ledger.Transactions(ctx)
	if err != nil {
		return core.MonthTotals{}, err
	}
	return ledger.MonthlyTotals(txs, ref), nil
}

// ViewMonthlyReport summarizes the current calendar month.
func (t *Tracker) ViewMonthlyReport(ctx context.Context) (MonthlyReport, error) {
	totals, err := t.MonthlyTotals(ctx, t.Now())
	if err != nil {
		return MonthlyReport{}, err
	}
	return MonthlyReport{
		Totals: totals,
		Text:   report.Summary(totals, t.symbol),
	}, nil
}

// ExportMonthlyReport writes the current month's report to path, or to the
// default file name when path is empty. Write failures match
// report.ErrExportFailed.
func (t *Tracker) ExportMonthlyReport(ctx context.Context, path string) (MonthlyReport, error) {
	rep, err := t.ViewMonthlyReport(ctx)
	if err != nil {
		return MonthlyReport{}, err
	}
	if path == "" {
		path = t.reportFileName
	}

	fields := log.NewFields().
		WithOperation(log.OpExport).
		WithPeriod(rep.Totals.Year, int(rep.Totals.Month))
	fields[log.FieldFilePath] = path

	if err := t.exporter.Export(path, rep.Totals); err != nil {
		t.logger.ErrorContext(ctx, "Report export failed", fields.WithError(err).ToSlice()...)
		return MonthlyReport{}, err
	}
	t.logger.InfoContext(ctx, "Report exported", fields.ToSlice()...)

	if t.publisher != nil {
		if err := t.publisher.PublishReportExported(ctx, rep.Totals); err != nil {
			t.logger.ErrorContext(ctx, "Failed to publish report event", log.FieldError, err)
		}
	}
	return rep, nil
}

// FileContent renders totals exactly as an export would write them.
func (t *Tracker) FileContent(totals core.MonthTotals) []byte {
	return report.FileContent(totals, t.symbol)
}

const (
	MsgInvalidAmount = "Please enter a valid numeric amount"
	MsgExportSuccess = "Report saved successfully"
	MsgExportFailed  = "Error while saving file"
	MsgGeneric       = "Something went wrong, please try again"
)

// UserMessage maps an error from a Tracker action onto the text shown to the
// user. It returns "" for a nil error.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrInvalidAmount):
		return MsgInvalidAmount
	case errors.Is(err, report.ErrExportFailed):
		return MsgExportFailed
	default:
		return MsgGeneric
	}
}

// IsInvalidSelection reports whether err stems from an unknown kind or
// category rather than from the amount.
func IsInvalidSelection(err error) bool {
	return errors.Is(err, core.ErrInvalidKind) || errors.Is(err, core.ErrInvalidCategory)
}

// Describe formats a transaction as a single display line.
func (t *Tracker) Describe(tx core.Transaction) string {
	return fmt.Sprintf("%s  %-7s  %-13s  %s", tx.Date, tx.Kind, tx.Category, tx.Amount.Format(t.symbol))
}
