package store

import (
	"encoding/json"
	"fmt"
)

// marshalStrings converts a string slice to JSON TEXT for storage.
// nil marshals as "[]" so columns never hold SQL NULL.
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

// unmarshalStrings parses JSON TEXT back to a string slice.
// Empty input and "[]" both produce nil.
func unmarshalStrings(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal string list: %w", err)
	}
	return values, nil
}
