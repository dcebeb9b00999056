package store

import (
	"context"

	"expensetracker/internal/core"
)

// Ports for session storage adapters.
type (
	TransactionAppender interface {
		// Append stores t as the newest transaction. Implementations must leave
		// their contents unchanged when an error is returned.
		Append(ctx context.Context, t core.Transaction) error
	}

	// TransactionLister returns every stored transaction in insertion order.
	TransactionLister interface {
		List(ctx context.Context) ([]core.Transaction, error)
	}

	Store interface {
		TransactionAppender
		TransactionLister
	}
)
