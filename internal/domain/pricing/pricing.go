// Package pricing computes the individual and package price of a service
// bundle. A bundle has standalone services, which are always redeemed, and
// OR-groups, of which exactly one option is redeemed. For display the most
// expensive option of each group is assumed.
package pricing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/salon-api/internal/domain/entity"
	"github.com/sangkips/salon-api/pkg/apperror"
	"github.com/sangkips/salon-api/pkg/money"
	"github.com/shopspring/decimal"
)

type Line struct {
	ServiceID uuid.UUID
	Name      string
	Quantity  int
	UnitPrice money.Amount
}

func (l Line) total() money.Amount {
	return l.UnitPrice.Mul(l.Quantity)
}

type Group struct {
	Label   string
	Options []Line
}

// Composition is a package definition, stored or ad hoc
type Composition struct {
	Price    *money.Amount
	Services []Line
	Groups   []Group
}

// Result is the pricing summary of a composition
type Result struct {
	IndividualPrice money.Amount    `json:"individual_price"`
	PackagePrice    money.Amount    `json:"package_price"`
	Savings         money.Amount    `json:"savings"`
	SavingsPercent  decimal.Decimal `json:"savings_percent"`
	GroupPrices     []GroupPrice    `json:"group_prices,omitempty"`
}

// GroupPrice is the option assumed for one OR-group
type GroupPrice struct {
	Label    string       `json:"label"`
	Assumed  string       `json:"assumed"`
	Price    money.Amount `json:"price"`
	MinPrice money.Amount `json:"min_price"`
}

// Compute prices a composition. Empty groups are ignored.
func Compute(c Composition) (*Result, error) {
	if c.Price != nil && *c.Price < 0 {
		return nil, apperror.NewFieldError("price", "Package price cannot be negative")
	}

	res := &Result{}
	for _, line := range c.Services {
		if err := validateLine(line); err != nil {
			return nil, err
		}
		res.IndividualPrice += line.total()
	}

	groups := 0
	for _, g := range c.Groups {
		if len(g.Options) == 0 {
			continue
		}
		groups++
		gp := GroupPrice{Label: g.Label}
		for i, opt := range g.Options {
			if err := validateLine(opt); err != nil {
				return nil, err
			}
			price := opt.total()
			if i == 0 || price > gp.Price {
				gp.Price = price
				gp.Assumed = opt.Name
			}
			if i == 0 || price < gp.MinPrice {
				gp.MinPrice = price
			}
		}
		res.IndividualPrice += gp.Price
		res.GroupPrices = append(res.GroupPrices, gp)
	}

	if len(c.Services) == 0 && groups == 0 {
		return nil, apperror.NewInvalidCompositionError("Package needs at least one service or a non-empty group")
	}

	res.PackagePrice = res.IndividualPrice
	if c.Price != nil {
		res.PackagePrice = *c.Price
	}
	res.Savings = money.Max(0, res.IndividualPrice-res.PackagePrice)
	res.SavingsPercent = decimal.Zero
	if res.IndividualPrice > 0 && res.Savings > 0 {
		res.SavingsPercent = res.Savings.Decimal().
			Div(res.IndividualPrice.Decimal()).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}
	return res, nil
}

func validateLine(l Line) error {
	if l.Quantity < 1 {
		return apperror.NewFieldError("quantity", fmt.Sprintf("Service %q quantity must be at least 1", l.Name))
	}
	if l.UnitPrice < 0 {
		return apperror.NewFieldError("unit_price", fmt.Sprintf("Service %q price cannot be negative", l.Name))
	}
	if gross, err := l.UnitPrice.MulChecked(l.Quantity); err != nil || gross > money.MaxLine {
		return apperror.NewFieldError("quantity", fmt.Sprintf("Service %q total is out of range", l.Name))
	}
	return nil
}

// FromPackage converts a stored package into a composition
func FromPackage(p *entity.Package) Composition {
	c := Composition{Price: p.Price}
	for _, s := range p.Services {
		if s.GroupID != nil {
			continue
		}
		c.Services = append(c.Services, lineOf(s))
	}
	for _, g := range p.Groups {
		group := Group{Label: g.Label}
		for _, opt := range g.Options {
			group.Options = append(group.Options, lineOf(opt))
		}
		c.Groups = append(c.Groups, group)
	}
	return c
}

func lineOf(s entity.PackageService) Line {
	return Line{ServiceID: s.ServiceID, Name: s.Name, Quantity: s.Quantity, UnitPrice: s.UnitPrice}
}
