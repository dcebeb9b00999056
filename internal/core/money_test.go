package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"100", "100.00", true},
		{"0", "0.00", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.50", true},
		{"12.345", "12.35", true}, // display rounding only
		{"1e3", "", false},
		{"1E3", "", false},
		{"1e9000000", "", false},
		{"1e2000000000", "", false},
		{"1000000000000", "1000000000000.00", true},
		{"1000000000000.01", "", false},
		{"99999999999999999999", "", false},
		{"0.000000000000000000000000000000001", "", false},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1,23", "", false},
		{"NaN", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := MoneyFromInt(100)
	b, _ := ParseAmount("40.5")

	if got := a.Sub(b).String(); got != "59.50" {
		t.Fatalf("sub: got %s", got)
	}
	if got := a.Add(b).String(); got != "140.50" {
		t.Fatalf("add: got %s", got)
	}
	if !b.Sub(a).IsNegative() {
		t.Fatalf("expected negative difference")
	}
	if !ZeroMoney.IsZero() || !(Money{}).IsZero() {
		t.Fatalf("zero values must be zero")
	}
}

func TestMoneyFormat(t *testing.T) {
	if got := MoneyFromInt(60).Format(DefaultCurrencySymbol); got != "₹60.00" {
		t.Fatalf("got %q", got)
	}
	if got := MoneyFromInt(-20).Format("$"); got != "$-20.00" {
		t.Fatalf("got %q", got)
	}
}
