package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PaymentMode is how a payment (or expense) was tendered
type PaymentMode int

const (
	PaymentModeCash   PaymentMode = 0
	PaymentModeCard   PaymentMode = 1
	PaymentModeUPI    PaymentMode = 2
	PaymentModeOnline PaymentMode = 3
	PaymentModeOther  PaymentMode = 4

	paymentModeCount = 5
)

var paymentModeNames = [paymentModeCount]string{"cash", "card", "upi", "online", "other"}

func (m PaymentMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("PaymentMode(%d)", int(m))
	}
	return paymentModeNames[m]
}

func (m PaymentMode) Valid() bool {
	return m >= 0 && m < paymentModeCount
}

// TouchesDrawer reports whether the payment moves physical cash
func (m PaymentMode) TouchesDrawer() bool {
	return m == PaymentModeCash
}

func ParsePaymentMode(name string) (PaymentMode, error) {
	i := lookup(paymentModeNames[:], name)
	if i < 0 {
		return 0, fmt.Errorf("unknown payment mode %q", name)
	}
	return PaymentMode(i), nil
}

func (m PaymentMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("payment mode must be a string: %w", err)
	}
	parsed, err := ParsePaymentMode(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m PaymentMode) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMode) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentModeCash
		return nil
	}
	n, err := scanInt(value)
	if err != nil {
		return err
	}
	*m = PaymentMode(n)
	return nil
}
