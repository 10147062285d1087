package utils

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONB stores an arbitrary document in a Postgres jsonb column.
type JSONB []byte

func (j JSONB) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

func (j *JSONB) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("JSONB: Scan failed, expected []byte but got %T", value)
	}

	*j = append((*j)[:0], b...)
	return nil
}

// MarshalJSONB encodes v for a jsonb column.
func MarshalJSONB(v any) (JSONB, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jsonb: %w", err)
	}
	return JSONB(b), nil
}

// UnmarshalJSONB decodes a jsonb column into out. A NULL column leaves out
// untouched.
func UnmarshalJSONB(j JSONB, out any) error {
	if len(j) == 0 {
		return nil
	}
	if err := json.Unmarshal(j, out); err != nil {
		return fmt.Errorf("failed to unmarshal jsonb: %w", err)
	}
	return nil
}
