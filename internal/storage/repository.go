package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database. It lives exactly as long as
// the single pooled connection, i.e. until Close or process exit.
const MemoryDSN = ":memory:"

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the session database and applies the schema.
func NewSQLiteRepository(dsn string) (*SQLiteRepository, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every new connection to :memory: would see an empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements store.TransactionAppender
func (r *SQLiteRepository) Append(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, entry_date, amount, kind, category) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Date.String(), t.Amount.Value.String(), string(t.Kind), string(t.Category))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"amount", t.Amount.String(),
		"kind", t.Kind,
		"category", t.Category,
		"date", t.Date.String())

	return nil
}

// List implements store.TransactionLister
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entry_date, amount, kind, category FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			id, date, amount, kind, category string
		)
		if err := rows.Scan(&id, &date, &amount, &kind, &category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", id, err)
		}
		value, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: parse amount %q: %w", id, amount, err)
		}

		out = append(out, core.Transaction{
			ID:       id,
			Date:     d,
			Amount:   core.Money{Value: value},
			Kind:     core.Kind(kind),
			Category: core.Category(category),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return out, nil
}
