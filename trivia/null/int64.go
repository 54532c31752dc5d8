package null

import (
	"encoding/json"
	"strconv"
)

// MarshalJSON encodes the int64 as a JSON number, or null when invalid.
func (i Int64) MarshalJSON() ([]byte, error) {
	if !i.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(i.Int64)
}

// UnmarshalJSON decodes a JSON number or null into the int64.
func (i *Int64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		i.Valid = false
		i.Int64 = 0
		return nil
	}

	var value int64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	i.Valid = true
	i.Int64 = value
	return nil
}

// MarshalText encodes the int64 as decimal text, or an empty string when invalid.
func (i Int64) MarshalText() ([]byte, error) {
	if !i.Valid {
		return []byte(""), nil
	}
	return []byte(strconv.FormatInt(i.Int64, 10)), nil
}

// UnmarshalText decodes decimal text into the int64. An empty string is null.
func (i *Int64) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		i.Valid = false
		i.Int64 = 0
		return nil
	}

	value, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		return err
	}
	i.Valid = true
	i.Int64 = value
	return nil
}
