package enum

import "fmt"

// scanInt normalises the integer representations drivers hand back for enum columns
func scanInt(value interface{}) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case []byte:
		var n int64
		_, err := fmt.Sscan(string(v), &n)
		return n, err
	}
	return 0, fmt.Errorf("unsupported enum column type %T", value)
}

// lookup returns the index of name in names, or -1
func lookup(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
