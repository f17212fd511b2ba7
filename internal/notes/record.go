package notes

import (
	"encoding/json"
	"fmt"
)

// Encode serializes list as a record. An empty list encodes as
// {"notes":[]}, never null.
func Encode(list []Note) ([]byte, error) {
	if list == nil {
		list = []Note{}
	}
	data, err := json.Marshal(Record{Notes: list})
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

// Decode parses a record. A record with a missing or null notes field
// decodes to an empty list.
func Decode(data []byte) ([]Note, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec.Notes == nil {
		return []Note{}, nil
	}
	return rec.Notes, nil
}
