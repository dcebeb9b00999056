package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

const (
	Food          Category = "Food"
	Rent          Category = "Rent"
	Entertainment Category = "Entertainment"
	Transport     Category = "Transport"
	Utilities     Category = "Utilities"
	Other         Category = "Other"
)

const dateLayout = "2006-01-02"

type (
	// Kind classifies a transaction as money in or money out.
	Kind string

	// Category is a closed-set tag describing the nature of a transaction.
	Category string

	Date struct {
		time.Time
	}

	// Transaction is a single ledger entry. It is never mutated after being
	// appended to a ledger.
	Transaction struct {
		ID       string
		Date     Date
		Amount   Money
		Kind     Kind
		Category Category
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid numeric amount")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidDate     = errors.New("invalid date")
)

var (
	kinds      = []Kind{Income, Expense}
	categories = []Category{Food, Rent, Entertainment, Transport, Utilities, Other}
)

// Kinds returns the selectable kinds in display order.
func Kinds() []Kind {
	return append([]Kind(nil), kinds...)
}

// Categories returns the selectable categories in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseKind matches s case-insensitively against the known kinds.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for _, k := range kinds {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (k Kind) Validate() error {
	if k != Income && k != Expense {
		return ErrInvalidKind
	}
	return nil
}

func (c Category) Validate() error {
	for _, known := range categories {
		if c == known {
			return nil
		}
	}
	return ErrInvalidCategory
}

// NewDate creates a new Date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t as observed in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// InMonth reports whether d falls in the given calendar month and year.
func (d Date) InMonth(year int, month time.Month) bool {
	y, m, _ := d.Date()
	return y == year && m == month
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	return t.Category.Validate()
}
