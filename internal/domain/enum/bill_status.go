package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BillStatus represents the lifecycle state of a bill
type BillStatus int

const (
	BillStatusDraft     BillStatus = 0
	BillStatusPending   BillStatus = 1
	BillStatusPartial   BillStatus = 2
	BillStatusCompleted BillStatus = 3
	BillStatusCancelled BillStatus = 4

	billStatusCount = 5
)

var billStatusNames = [billStatusCount]string{"draft", "pending", "partial", "completed", "cancelled"}

func (s BillStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("BillStatus(%d)", int(s))
	}
	return billStatusNames[s]
}

// Valid reports whether s is one of the declared statuses
func (s BillStatus) Valid() bool {
	return s >= 0 && s < billStatusCount
}

// IsTerminal reports whether the bill is frozen (completed or cancelled)
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusCompleted || s == BillStatusCancelled
}

// CanSettle reports whether payments may be taken against a bill in this status
func (s BillStatus) CanSettle() bool {
	return s == BillStatusPending || s == BillStatusPartial
}

// CanCancel reports whether the bill may still be cancelled
func (s BillStatus) CanCancel() bool {
	return s == BillStatusDraft || s == BillStatusPending || s == BillStatusPartial
}

// ParseBillStatus parses the wire name of a bill status
func ParseBillStatus(name string) (BillStatus, error) {
	i := lookup(billStatusNames[:], name)
	if i < 0 {
		return 0, fmt.Errorf("unknown bill status %q", name)
	}
	return BillStatus(i), nil
}

func (s BillStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BillStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("bill status must be a string: %w", err)
	}
	parsed, err := ParseBillStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s BillStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BillStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BillStatusDraft
		return nil
	}
	n, err := scanInt(value)
	if err != nil {
		return err
	}
	*s = BillStatus(n)
	if !s.Valid() {
		return fmt.Errorf("invalid bill status %d", n)
	}
	return nil
}
