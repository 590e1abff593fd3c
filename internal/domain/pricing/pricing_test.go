package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
)

func line(name string, qty int, rupees int64) Line {
	return Line{ServiceID: uuid.New(), Name: name, Quantity: qty, UnitPrice: money.Rupees(rupees)}
}

func price(rupees int64) *money.Amount {
	a := money.Rupees(rupees)
	return &a
}

func TestComputeWithORGroup(t *testing.T) {
	c := Composition{
		Price:    price(600),
		Services: []Line{line("ServiceX", 1, 300)},
		Groups: []Group{{
			Label:   "Choice",
			Options: []Line{line("ServiceY", 1, 400), line("ServiceZ", 1, 250)},
		}},
	}
	res, err := Compute(c)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.IndividualPrice != money.Rupees(700) {
		t.Fatalf("expected individual 700, got %s", res.IndividualPrice)
	}
	if res.PackagePrice != money.Rupees(600) || res.Savings != money.Rupees(100) {
		t.Fatalf("expected package 600 / savings 100, got %s / %s", res.PackagePrice, res.Savings)
	}
	if res.SavingsPercent.String() != "14.29" {
		t.Fatalf("expected 14.29%%, got %s", res.SavingsPercent)
	}
	if len(res.GroupPrices) != 1 || res.GroupPrices[0].Assumed != "ServiceY" || res.GroupPrices[0].MinPrice != money.Rupees(250) {
		t.Fatalf("unexpected group summary %+v", res.GroupPrices)
	}
}

func TestComputeDefaultsAndSavingsFloor(t *testing.T) {
	cases := []struct {
		name        string
		price       *money.Amount
		wantPackage money.Amount
		wantSavings money.Amount
	}{
		{"no explicit price", nil, money.Rupees(500), 0},
		{"price above individual", price(650), money.Rupees(650), 0},
		{"price below individual", price(450), money.Rupees(450), money.Rupees(50)},
	}
	for _, tc := range cases {
		res, err := Compute(Composition{Price: tc.price, Services: []Line{line("Cut", 2, 250)}})
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if res.PackagePrice != tc.wantPackage || res.Savings != tc.wantSavings {
			t.Fatalf("%s: got package %s savings %s", tc.name, res.PackagePrice, res.Savings)
		}
		if res.Savings < 0 {
			t.Fatalf("%s: savings must never be negative", tc.name)
		}
	}
}

func TestComputeIgnoresEmptyGroups(t *testing.T) {
	res, err := Compute(Composition{
		Services: []Line{line("Wash", 1, 100)},
		Groups:   []Group{{Label: "Empty"}},
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.IndividualPrice != money.Rupees(100) || len(res.GroupPrices) != 0 {
		t.Fatalf("empty group should not contribute, got %s", res.IndividualPrice)
	}
}

func TestComputeErrors(t *testing.T) {
	if _, err := Compute(Composition{Groups: []Group{{Label: "Empty"}}}); !errors.Is(err, apperror.ErrInvalidComposition) {
		t.Fatalf("expected invalid composition, got %v", err)
	}
	if _, err := Compute(Composition{Services: []Line{line("Cut", 0, 100)}}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if _, err := Compute(Composition{Groups: []Group{{Options: []Line{line("Dye", 1, -5)}}}}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}
	if _, err := Compute(Composition{Services: []Line{line("Spa", math.MaxInt64/100, 2000)}}); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for an overflowing line, got %v", err)
	}
}

func TestFromPackageSkipsGroupedServices(t *testing.T) {
	groupID := uuid.New()
	pkg := &entity.Package{
		Price: price(600),
		Services: []entity.PackageService{
			{ServiceID: uuid.New(), Name: "ServiceX", Quantity: 1, UnitPrice: money.Rupees(300)},
			{ServiceID: uuid.New(), Name: "Leaked", Quantity: 1, UnitPrice: money.Rupees(999), GroupID: &groupID},
		},
		Groups: []entity.PackageServiceGroup{{
			ID:    groupID,
			Label: "Choice",
			Options: []entity.PackageService{
				{ServiceID: uuid.New(), Name: "ServiceY", Quantity: 1, UnitPrice: money.Rupees(400), GroupID: &groupID},
				{ServiceID: uuid.New(), Name: "ServiceZ", Quantity: 1, UnitPrice: money.Rupees(250), GroupID: &groupID},
			},
		}},
	}
	res, err := Compute(FromPackage(pkg))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if res.IndividualPrice != money.Rupees(700) || res.Savings != money.Rupees(100) {
		t.Fatalf("expected 700/100, got %s/%s", res.IndividualPrice, res.Savings)
	}
}
