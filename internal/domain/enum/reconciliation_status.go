package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReconciliationStatus classifies a drawer count against the expected cash
type ReconciliationStatus int

const (
	ReconciliationBalanced ReconciliationStatus = 0
	ReconciliationSurplus  ReconciliationStatus = 1
	ReconciliationShortage ReconciliationStatus = 2

	reconciliationStatusCount = 3
)

var reconciliationStatusNames = [reconciliationStatusCount]string{"balanced", "surplus", "shortage"}

// ClassifyDifference maps the sign of actual - expected to a status
func ClassifyDifference(sign int) ReconciliationStatus {
	switch {
	case sign > 0:
		return ReconciliationSurplus
	case sign < 0:
		return ReconciliationShortage
	}
	return ReconciliationBalanced
}

func (s ReconciliationStatus) String() string {
	if s < 0 || s >= reconciliationStatusCount {
		return fmt.Sprintf("ReconciliationStatus(%d)", int(s))
	}
	return reconciliationStatusNames[s]
}

func ParseReconciliationStatus(name string) (ReconciliationStatus, error) {
	i := lookup(reconciliationStatusNames[:], name)
	if i < 0 {
		return 0, fmt.Errorf("unknown reconciliation status %q", name)
	}
	return ReconciliationStatus(i), nil
}

func (s ReconciliationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReconciliationStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseReconciliationStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ReconciliationStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ReconciliationStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReconciliationBalanced
		return nil
	}
	n, err := scanInt(value)
	if err != nil {
		return err
	}
	*s = ReconciliationStatus(n)
	return nil
}
