package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{".5", 50, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
		{"1e30", 0, false},
		{"0.001", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseSignedAndNonNegative(t *testing.T) {
	m, err := ParseSignedAmount("-12,5")
	if err != nil || m.Cents != -1250 {
		t.Fatalf("signed: got %v err=%v", m, err)
	}
	if _, err := ParseNonNegativeAmount("-1"); err == nil {
		t.Fatalf("non-negative accepted a sign")
	}
	z, err := ParseNonNegativeAmount("0")
	if err != nil || z.Cents != 0 {
		t.Fatalf("zero budget: got %v err=%v", z, err)
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		8000:   "80.00",
		-1205:  "-12.05",
		123456: "1234.56",
	}
	for cents, want := range cases {
		if got := Cents(cents).String(); got != want {
			t.Fatalf("Cents(%d).String() = %q, want %q", cents, got, want)
		}
	}
	if got := Cents(math.MinInt64).String(); got != "-92233720368547758.08" {
		t.Fatalf("min int64: got %q", got)
	}
	if got := Cents(math.MaxInt64).String(); got != "92233720368547758.07" {
		t.Fatalf("max int64: got %q", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{`80.5`, 8050},
		{`100`, 10000},
		{`-3.25`, -325},
		{`"12,40"`, 1240},
		{`1e3`, 100000},
		{`0.1`, 10},
	}
	for _, tc := range cases {
		var m Money
		if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if m.Cents != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.in, m.Cents, tc.want)
		}
	}

	out, err := json.Marshal(Cents(8050))
	if err != nil || string(out) != "80.50" {
		t.Fatalf("marshal: %s err=%v", out, err)
	}

	var m Money
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
}

func TestMoneyJSONRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{`1e30`, ErrAmountOutOfRange},
		{`-1e30`, ErrAmountOutOfRange},
		{`"922337203685477.59"`, ErrAmountOutOfRange},
		{`1e999999999`, ErrAmountOutOfRange},
		{`1e-999999999`, ErrInvalidAmount},
		{`"NaN"`, ErrInvalidAmount},
		{`"Inf"`, ErrInvalidAmount},
		{`"--1"`, ErrInvalidAmount},
	}
	for _, tc := range cases {
		m := Cents(7)
		err := json.Unmarshal([]byte(tc.in), &m)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.in, err, tc.want)
		}
		if m.Cents != 7 {
			t.Fatalf("%s: value changed to %d", tc.in, m.Cents)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"922337203685477.58"`), &m); err != nil || m.Cents != MaxCents {
		t.Fatalf("max amount: got %d err=%v", m.Cents, err)
	}
}

func TestCheckedArithmetic(t *testing.T) {
	cases := []struct {
		name   string
		got    func() (Money, bool)
		want   int64
		wantOK bool
	}{
		{"add", func() (Money, bool) { return Cents(150).CheckedAdd(Cents(50)) }, 200, true},
		{"add to max", func() (Money, bool) { return Cents(MaxCents - 1).CheckedAdd(Cents(1)) }, MaxCents, true},
		{"add past max", func() (Money, bool) { return Cents(MaxCents).CheckedAdd(Cents(1)) }, 0, false},
		{"add int64 overflow", func() (Money, bool) { return Cents(math.MaxInt64).CheckedAdd(Cents(1)) }, 0, false},
		{"sub", func() (Money, bool) { return Cents(100).CheckedSub(Cents(250)) }, -150, true},
		{"sub past min", func() (Money, bool) { return Cents(-MaxCents).CheckedSub(Cents(1)) }, 0, false},
		{"sub min int64", func() (Money, bool) { return Cents(0).CheckedSub(Cents(math.MinInt64)) }, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.got()
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got.Cents != tc.want {
				t.Fatalf("got %d, want %d", got.Cents, tc.want)
			}
		})
	}
}
