package money

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in      string
		want    Amount
		wantErr bool
	}{
		{"1000", 100000, false},
		{"1000.5", 100050, false},
		{"0.01", 1, false},
		{"-20.25", -2025, false},
		{"12.345", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestAmountJSON(t *testing.T) {
	var payload struct {
		Amount Amount `json:"amount"`
	}
	if err := json.Unmarshal([]byte(`{"amount": 800.1}`), &payload); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if payload.Amount != 80010 {
		t.Fatalf("expected 80010 minor units, got %d", payload.Amount)
	}

	if err := json.Unmarshal([]byte(`{"amount": "200"}`), &payload); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if payload.Amount != Rupees(200) {
		t.Fatalf("expected 20000 minor units, got %d", payload.Amount)
	}

	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"amount":200.00}` {
		t.Fatalf("unexpected json %s", out)
	}

	if err := json.Unmarshal([]byte(`{"amount": 1.005}`), &payload); err == nil {
		t.Fatalf("expected sub-paisa amount to be rejected")
	}
}

func TestSplitPaymentSummationIsExact(t *testing.T) {
	// 0.1 + 0.2 style drift must not appear across many split payments
	var total Amount
	for i := 0; i < 1000; i++ {
		total += MustParse("0.10")
	}
	if total != Rupees(100) {
		t.Fatalf("expected exactly 100.00, got %s", total)
	}
}

func TestMulRate(t *testing.T) {
	cases := []struct {
		base Amount
		bps  int64
		want Amount
	}{
		{Rupees(1000), 1800, Rupees(180)},
		{MustParse("99.99"), 1800, MustParse("18.00")},
		{MustParse("0.03"), 1800, MustParse("0.01")},
		{Rupees(500), 0, 0},
	}
	for _, tc := range cases {
		if got := tc.base.MulRate(tc.bps); got != tc.want {
			t.Fatalf("%s at %d bps: expected %s, got %s", tc.base, tc.bps, tc.want, got)
		}
	}
}

func TestCheckedArithmetic(t *testing.T) {
	mul := []struct {
		a       Amount
		qty     int
		want    Amount
		wantErr bool
	}{
		{Rupees(250), 4, Rupees(1000), false},
		{0, math.MaxInt64, 0, false},
		{-5, 3, -15, false},
		{math.MaxInt64 / 2, 3, 0, true},
		{math.MinInt64, -1, 0, true},
		{-1, math.MinInt64, 0, true},
		{Rupees(2000), math.MaxInt64 / 100, 0, true},
	}
	for _, tc := range mul {
		got, err := tc.a.MulChecked(tc.qty)
		if tc.wantErr {
			if !errors.Is(err, ErrOverflow) {
				t.Fatalf("%d x %d: expected overflow, got %d", tc.a, tc.qty, got)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%d x %d: expected %d, got %d (%v)", tc.a, tc.qty, tc.want, got, err)
		}
	}

	if got, err := Rupees(10).AddChecked(Rupees(5)); err != nil || got != Rupees(15) {
		t.Fatalf("expected 15, got %s (%v)", got, err)
	}
	if _, err := Amount(math.MaxInt64).AddChecked(1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow on max + 1")
	}
	if _, err := Amount(math.MinInt64).AddChecked(-1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow on min - 1")
	}
}
