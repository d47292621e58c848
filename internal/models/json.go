package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// BoolMap is a string→bool map persisted as a JSON column. Used for profile
// flag sets (health concerns, eating styles, restrictions).
type BoolMap map[string]bool

// Value implements driver.Valuer.
func (m BoolMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *BoolMap) Scan(value interface{}) error {
	if value == nil {
		*m = BoolMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into BoolMap", value)
	}
	return json.Unmarshal(data, m)
}

// StringList is a string slice persisted as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
	return json.Unmarshal(data, l)
}
