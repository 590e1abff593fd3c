package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ItemType is the catalog kind a bill line refers to
type ItemType int

const (
	ItemTypeService ItemType = 0
	ItemTypePackage ItemType = 1
	ItemTypeProduct ItemType = 2

	itemTypeCount = 3
)

var itemTypeNames = [itemTypeCount]string{"service", "package", "product"}

func (t ItemType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ItemType(%d)", int(t))
	}
	return itemTypeNames[t]
}

func (t ItemType) Valid() bool {
	return t >= 0 && t < itemTypeCount
}

func ParseItemType(name string) (ItemType, error) {
	i := lookup(itemTypeNames[:], name)
	if i < 0 {
		return 0, fmt.Errorf("unknown item type %q", name)
	}
	return ItemType(i), nil
}

func (t ItemType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *ItemType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("item type must be a string: %w", err)
	}
	parsed, err := ParseItemType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ItemType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *ItemType) Scan(value interface{}) error {
	if value == nil {
		*t = ItemTypeService
		return nil
	}
	n, err := scanInt(value)
	if err != nil {
		return err
	}
	*t = ItemType(n)
	return nil
}
