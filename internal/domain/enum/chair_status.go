package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ChairStatus is the occupancy state of a physical service chair
type ChairStatus int

const (
	ChairStatusAvailable   ChairStatus = 0
	ChairStatusOccupied    ChairStatus = 1
	ChairStatusMaintenance ChairStatus = 2
	ChairStatusInactive    ChairStatus = 3

	chairStatusCount = 4
)

var chairStatusNames = [chairStatusCount]string{"available", "occupied", "maintenance", "inactive"}

// adminChairTransitions covers the moves an administrator may make directly.
// Occupied is entered only by bill assignment and left only by release.
var adminChairTransitions = [chairStatusCount][chairStatusCount]bool{
	ChairStatusAvailable: {
		ChairStatusMaintenance: true,
		ChairStatusInactive:    true,
	},
	ChairStatusMaintenance: {
		ChairStatusAvailable: true,
		ChairStatusInactive:  true,
	},
	ChairStatusInactive: {
		ChairStatusAvailable:   true,
		ChairStatusMaintenance: true,
	},
}

func (s ChairStatus) String() string {
	if !s.Valid() {
		return fmt.Sprintf("ChairStatus(%d)", int(s))
	}
	return chairStatusNames[s]
}

func (s ChairStatus) Valid() bool {
	return s >= 0 && s < chairStatusCount
}

// CanAdminTransitionTo reports whether an administrator may move a chair from s to next
func (s ChairStatus) CanAdminTransitionTo(next ChairStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return adminChairTransitions[s][next]
}

func ParseChairStatus(name string) (ChairStatus, error) {
	i := lookup(chairStatusNames[:], name)
	if i < 0 {
		return 0, fmt.Errorf("unknown chair status %q", name)
	}
	return ChairStatus(i), nil
}

func (s ChairStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ChairStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("chair status must be a string: %w", err)
	}
	parsed, err := ParseChairStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ChairStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ChairStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ChairStatusAvailable
		return nil
	}
	n, err := scanInt(value)
	if err != nil {
		return err
	}
	*s = ChairStatus(n)
	if !s.Valid() {
		return fmt.Errorf("invalid chair status %d", n)
	}
	return nil
}
