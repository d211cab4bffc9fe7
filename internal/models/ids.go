package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.NewString()
}

// TaskIDs is a set of task ids stored as a JSON array column.
// Order is preserved for display but carries no meaning.
type TaskIDs []string

// UniqueTaskIDs returns ids with duplicates removed, keeping first occurrences.
func UniqueTaskIDs(ids []string) TaskIDs {
	seen := make(map[string]struct{}, len(ids))
	result := make(TaskIDs, 0, len(ids))

	for _, id := range ids {
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}

	return result
}

// Contains reports whether id is in the set.
func (ids TaskIDs) Contains(id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// With returns a copy of the set including id.
func (ids TaskIDs) With(id string) TaskIDs {
	result := make(TaskIDs, 0, len(ids)+1)
	result = append(result, ids...)
	if !ids.Contains(id) {
		result = append(result, id)
	}
	return result
}

// Without returns a copy of the set excluding id.
func (ids TaskIDs) Without(id string) TaskIDs {
	result := make(TaskIDs, 0, len(ids))
	for _, v := range ids {
		if v != id {
			result = append(result, v)
		}
	}
	return result
}

// Minus returns the ids in ids that are not in other.
func (ids TaskIDs) Minus(other TaskIDs) TaskIDs {
	result := TaskIDs{}
	for _, v := range ids {
		if !other.Contains(v) {
			result = append(result, v)
		}
	}
	return result
}

// Strings returns the ids as a plain slice, suitable for IN filters.
func (ids TaskIDs) Strings() []string {
	return append([]string{}, ids...)
}

// Value implements driver.Valuer.
func (ids TaskIDs) Value() (driver.Value, error) {
	if ids == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(ids))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (ids *TaskIDs) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*ids = TaskIDs{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan task ids: unsupported type %T", src)
	}

	if len(raw) == 0 {
		*ids = TaskIDs{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan task ids: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*ids = out
	return nil
}

// MarshalJSON renders a nil set as an empty array.
func (ids TaskIDs) MarshalJSON() ([]byte, error) {
	if ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(ids))
}
