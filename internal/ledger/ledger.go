// Package ledger holds the session's append-only transaction history and the
// pure aggregations computed over it.
package ledger

import (
	"context"
	"fmt"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/id"
	"expensetracker/internal/store"
)

// Ledger is an ordered, append-only sequence of transactions. Entries are
// never edited or removed.
type Ledger struct {
	store store.Store
	now   func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the source of "now" used to date new entries.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{store: s, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append parses amount and records a new transaction dated today.
//
// An unparseable amount yields an error wrapping core.ErrInvalidAmount and the
// ledger is left unchanged.
func (l *Ledger) Append(ctx context.Context, amount string, kind core.Kind, category core.Category) (core.Transaction, error) {
	money, err := core.ParseAmount(amount)
	if err != nil {
		return core.Transaction{}, err
	}

	now := l.now()
	t := core.Transaction{
		ID:       id.New(now),
		Date:     core.DateOf(now),
		Amount:   money,
		Kind:     kind,
		Category: category,
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := l.store.Append(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	return t, nil
}

// Transactions returns a snapshot of all entries in insertion order.
func (l *Ledger) Transactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (l *Ledger) Len(ctx context.Context) (int, error) {
	txs, err := l.Transactions(ctx)
	if err != nil {
		return 0, err
	}
	return len(txs), nil
}

// Now exposes the ledger clock so reports use the same notion of "today".
func (l *Ledger) Now() time.Time {
	return l.now()
}
