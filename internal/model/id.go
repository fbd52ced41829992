package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an opaque identifier allocated by the store owning the record.
// Callers compare ids for equality only.
type ID string

func (id ID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both JSON strings and JSON numbers, so clients that
// still send auto-increment ids as numbers keep working.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}
