package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx so repository writes
// can participate in service-managed transactions.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// marshalJSON serializes a JSON-column value, mapping nil to the given default.
func marshalJSON(v interface{}, fallback string) (string, error) {
	if v == nil {
		return fallback, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal json column: %w", err)
	}
	return string(raw), nil
}

func unmarshalStringSlice(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json list column: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func unmarshalStringMap(raw string) (map[string]string, error) {
	if raw == "" {
		return map[string]string{}, nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json map column: %w", err)
	}
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

func unmarshalFloatMap(raw string) (map[string]float64, error) {
	if raw == "" {
		return map[string]float64{}, nil
	}
	var out map[string]float64
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json map column: %w", err)
	}
	if out == nil {
		out = map[string]float64{}
	}
	return out, nil
}

func unmarshalBoolMap(raw string) (map[string]bool, error) {
	if raw == "" {
		return map[string]bool{}, nil
	}
	var out map[string]bool
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json map column: %w", err)
	}
	if out == nil {
		out = map[string]bool{}
	}
	return out, nil
}

func unmarshalIntSlice(raw string) ([]int, error) {
	if raw == "" {
		return []int{}, nil
	}
	var out []int
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json list column: %w", err)
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

// unmarshalIntIntMap reads a competitor_id→stand_number map. JSON object keys
// are strings, so the column stores string keys.
func unmarshalIntIntMap(raw string) (map[int]int, error) {
	if raw == "" {
		return map[int]int{}, nil
	}
	var tmp map[string]int
	if err := json.Unmarshal([]byte(raw), &tmp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal json map column: %w", err)
	}
	out := make(map[int]int, len(tmp))
	for k, v := range tmp {
		var id int
		if _, err := fmt.Sscanf(k, "%d", &id); err != nil {
			return nil, fmt.Errorf("invalid integer key %q in json map column", k)
		}
		out[id] = v
	}
	return out, nil
}

func marshalIntIntMap(m map[int]int) (string, error) {
	tmp := make(map[string]int, len(m))
	for k, v := range m {
		tmp[fmt.Sprintf("%d", k)] = v
	}
	return marshalJSON(tmp, "{}")
}
