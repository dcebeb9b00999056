package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"Income", Income, true},
		{"expense", Expense, true},
		{" INCOME ", Income, true},
		{"refund", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(string(c))
		if err != nil || got != c {
			t.Fatalf("%s: got %s (err=%v)", c, got, err)
		}
	}
	if got, err := ParseCategory("transport"); err != nil || got != Transport {
		t.Fatalf("case-insensitive match failed: %s %v", got, err)
	}
	if _, err := ParseCategory("Groceries"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestCategoriesIsACopy(t *testing.T) {
	cats := Categories()
	if len(cats) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(cats))
	}
	cats[0] = "Mutated"
	if Categories()[0] != Food {
		t.Fatalf("Categories must not expose internal state")
	}
}

func TestDateInMonth(t *testing.T) {
	d := NewDate(2025, time.March, 31)
	if !d.InMonth(2025, time.March) {
		t.Fatalf("expected march 2025")
	}
	if d.InMonth(2024, time.March) {
		t.Fatalf("different year must not match")
	}
	if d.InMonth(2025, time.April) {
		t.Fatalf("different month must not match")
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5:30", 5*3600+1800)
	// 2025-01-31 20:00 UTC is already 1 February in UTC+5:30.
	ts := time.Date(2025, time.January, 31, 20, 0, 0, 0, time.UTC).In(loc)
	if got := DateOf(ts).String(); got != "2025-02-01" {
		t.Fatalf("got %s", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-15")
	if err != nil || !d.InMonth(2025, time.June) || d.Day() != 15 {
		t.Fatalf("unexpected %v %v", d, err)
	}
	if _, err := ParseDate("15/06/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:     NewDate(2025, time.January, 1),
		Amount:   MoneyFromInt(10),
		Kind:     Expense,
		Category: Food,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Amount: MoneyFromInt(1), Kind: Income, Category: Food},
		{Date: NewDate(2025, 1, 1), Amount: MoneyFromInt(-1), Kind: Income, Category: Food},
		{Date: NewDate(2025, 1, 1), Amount: MoneyFromInt(1), Kind: "Gift", Category: Food},
		{Date: NewDate(2025, 1, 1), Amount: MoneyFromInt(1), Kind: Income, Category: "Misc"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMonthTotalsBalance(t *testing.T) {
	mt := MonthTotals{Income: MoneyFromInt(100), Expense: MoneyFromInt(40)}
	if got := mt.Balance().String(); got != "60.00" {
		t.Fatalf("got %s", got)
	}
}
