package postgres

import (
	"encoding/json"
	"fmt"
)

// jsonbArg marshals v for a JSONB parameter. It is passed as a string so the
// same query works under the simple protocol used behind PgBouncer.
func jsonbArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal jsonb: %w", err)
	}
	return string(b), nil
}

// scanJSONB decodes a JSONB column read as raw bytes. NULL leaves dst untouched.
func scanJSONB(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal jsonb: %w", err)
	}
	return nil
}
