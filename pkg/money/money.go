package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits carried by an Amount (paise for INR).
const Scale = 2

// Amount is a money value held in minor units. It is stored as a BIGINT and
// travels over JSON as a decimal number with two fractional digits.
type Amount int64

// Zero is the zero amount
const Zero Amount = 0

// MaxLine caps a single line or tender (one trillion rupees) so that sums of
// many of them cannot wrap
const MaxLine Amount = 100_000_000_000_000

var (
	ErrTooPrecise = errors.New("amount has more than 2 decimal places")
	ErrOverflow   = errors.New("amount is out of range")
)

// FromMinor wraps a value already expressed in minor units
func FromMinor(v int64) Amount {
	return Amount(v)
}

// FromDecimal converts a decimal major-unit value into an Amount.
// Values with more precision than Scale are rejected rather than rounded.
func FromDecimal(d decimal.Decimal) (Amount, error) {
	if !d.Equal(d.Round(Scale)) {
		return 0, ErrTooPrecise
	}
	shifted := d.Shift(Scale)
	if !shifted.BigInt().IsInt64() {
		return 0, ErrOverflow
	}
	return Amount(shifted.IntPart()), nil
}

// Parse parses a major-unit string such as "1250.50"
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return FromDecimal(d)
}

// MustParse is Parse for constants and fixtures; it panics on bad input.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Rupees builds an Amount from a whole number of major units
func Rupees(v int64) Amount {
	return Amount(v * 100)
}

// Minor returns the raw minor-unit value
func (a Amount) Minor() int64 {
	return int64(a)
}

// Decimal returns the major-unit decimal representation
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -Scale)
}

func (a Amount) String() string {
	return a.Decimal().StringFixed(Scale)
}

// Mul multiplies by an integer quantity. Inputs that were not bounded by
// MulChecked may wrap.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// MulChecked multiplies by an integer quantity and reports ErrOverflow
// instead of wrapping
func (a Amount) MulChecked(qty int) (Amount, error) {
	if a == 0 || qty == 0 {
		return 0, nil
	}
	q := Amount(qty)
	if (a == math.MinInt64 && q == -1) || (q == math.MinInt64 && a == -1) {
		return 0, ErrOverflow
	}
	p := a * q
	if p/q != a {
		return 0, ErrOverflow
	}
	return p, nil
}

// AddChecked adds b and reports ErrOverflow instead of wrapping
func (a Amount) AddChecked(b Amount) (Amount, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, ErrOverflow
	}
	return s, nil
}

// Abs returns the magnitude
func (a Amount) Abs() Amount {
	if a < 0 {
		return -a
	}
	return a
}

// Sign returns -1, 0 or 1
func (a Amount) Sign() int {
	switch {
	case a < 0:
		return -1
	case a > 0:
		return 1
	}
	return 0
}

// IsPositive reports whether the amount is strictly greater than zero
func (a Amount) IsPositive() bool {
	return a > 0
}

// Sum adds amounts
func Sum(amounts ...Amount) Amount {
	var total Amount
	for _, a := range amounts {
		total += a
	}
	return total
}

// Max returns the larger of two amounts
func Max(a, b Amount) Amount {
	if a > b {
		return a
	}
	return b
}

// MulRate applies a rate expressed in basis points (1800 = 18%), rounding
// half away from zero to the nearest minor unit.
func (a Amount) MulRate(basisPoints int64) Amount {
	if basisPoints == 0 || a == 0 {
		return 0
	}
	product := decimal.NewFromInt(int64(a)).Mul(decimal.NewFromInt(basisPoints)).Div(decimal.NewFromInt(10000))
	return Amount(product.Round(0).IntPart())
}

// MarshalJSON writes the amount as an unquoted decimal number ("1250.50")
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	v, err := FromDecimal(d)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan reads a BIGINT column. SUM() over an empty set arrives as NULL and scans to zero.
func (a *Amount) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*a = 0
	case int64:
		*a = Amount(v)
	case int32:
		*a = Amount(v)
	case []byte:
		return a.scanDecimal(string(v))
	case string:
		return a.scanDecimal(v)
	case float64:
		*a = Amount(int64(v))
	default:
		return fmt.Errorf("cannot scan %T into money.Amount", value)
	}
	return nil
}

// scanDecimal handles drivers that return NUMERIC aggregates as text
func (a *Amount) scanDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("cannot scan %q into money.Amount: %w", s, err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("cannot scan fractional minor units %q", s)
	}
	*a = Amount(d.IntPart())
	return nil
}
