package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BillItemStatus tracks the service progress of a single bill line
type BillItemStatus int

const (
	BillItemStatusPending    BillItemStatus = 0
	BillItemStatusInProgress BillItemStatus = 1
	BillItemStatusCompleted  BillItemStatus = 2
	BillItemStatusRejected   BillItemStatus = 3

	billItemStatusCount = 4
)

var billItemStatusNames = [billItemStatusCount]string{"pending", "in_progress", "completed", "rejected"}

// itemTransitions[from][to] is true when the move is allowed.
// Settlement may complete an item that was never started.
var itemTransitions = [billItemStatusCount][billItemStatusCount]bool{
	BillItemStatusPending: {
		BillItemStatusInProgress: true,
		BillItemStatusCompleted:  true,
		BillItemStatusRejected:   true,
	},
	BillItemStatusInProgress: {
		BillItemStatusCompleted: true,
	},
}

func (s BillItemStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("BillItemStatus(%d)", int(s))
	}
	return billItemStatusNames[s]
}

// Valid reports whether s is one of the declared statuses
func (s BillItemStatus) Valid() bool {
	return s >= 0 && s < billItemStatusCount
}

// IsTerminal reports whether no further transitions are possible
func (s BillItemStatus) IsTerminal() bool {
	return s == BillItemStatusCompleted || s == BillItemStatusRejected
}

// IsOpen reports whether the item still awaits settlement
func (s BillItemStatus) IsOpen() bool {
	return s == BillItemStatusPending || s == BillItemStatusInProgress
}

// CanTransitionTo reports whether moving from s to next is permitted
func (s BillItemStatus) CanTransitionTo(next BillItemStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return itemTransitions[s][next]
}

// ParseBillItemStatus parses the wire name of an item status
func ParseBillItemStatus(name string) (BillItemStatus, error) {
	i := lookup(billItemStatusNames[:], name)
	if i < 0 {
		return 0, fmt.Errorf("unknown item status %q", name)
	}
	return BillItemStatus(i), nil
}

func (s BillItemStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BillItemStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("item status must be a string: %w", err)
	}
	parsed, err := ParseBillItemStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s BillItemStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BillItemStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BillItemStatusPending
		return nil
	}
	n, err := scanInt(value)
	if err != nil {
		return err
	}
	*s = BillItemStatus(n)
	if !s.Valid() {
		return fmt.Errorf("invalid item status %d", n)
	}
	return nil
}
