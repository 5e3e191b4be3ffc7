package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return d, nil
}

func marshalFunctions(fns []json.RawMessage) (string, error) {
	if fns == nil {
		fns = []json.RawMessage{}
	}
	data, err := json.Marshal(fns)
	if err != nil {
		return "", fmt.Errorf("failed to marshal functions: %w", err)
	}
	return string(data), nil
}

func unmarshalFunctions(s string) ([]json.RawMessage, error) {
	var fns []json.RawMessage
	if s == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(s), &fns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal functions: %w", err)
	}
	if len(fns) == 0 {
		return nil, nil
	}
	return fns, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableInt(i int) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(i), Valid: true}
}
