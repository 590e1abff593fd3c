package entity

import (
	"errors"
	"math"
	"testing"

	"github.com/sangkips/salon-api/internal/domain/enum"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
)

func TestDenominationCount(t *testing.T) {
	d := Denominations{"2000": 1, "500": 2, "100": 1, "10": 0}
	actual, err := d.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if actual != money.Rupees(3100) {
		t.Fatalf("expected 3100, got %s", actual)
	}

	diff := actual - money.Rupees(3000)
	if diff != money.Rupees(100) || enum.ClassifyDifference(diff.Sign()) != enum.ReconciliationSurplus {
		t.Fatalf("expected +100 surplus, got %s", diff)
	}

	if got := d.Normalized(); len(got) != 3 {
		t.Fatalf("zero counts should be dropped, got %v", got)
	}
}

func TestDenominationCountRejectsBadInput(t *testing.T) {
	cases := []Denominations{
		{"3": 1},
		{"1000": 1},
		{"abc": 1},
		{"100": -1},
		{"2000": math.MaxInt64 / 1000},
		{"2000": math.MaxInt64 / 200000, "500": math.MaxInt64 / 50000},
	}
	for _, d := range cases {
		if _, err := d.Count(); !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("%v: expected validation error, got %v", d, err)
		}
	}
}

func TestExpectedBreakdown(t *testing.T) {
	b := NewExpectedBreakdown(money.Rupees(5000), money.Rupees(1000), money.Rupees(2500), money.Rupees(300))
	if b.ExpectedCash != money.Rupees(3200) {
		t.Fatalf("expected 3200, got %s", b.ExpectedCash)
	}
}
