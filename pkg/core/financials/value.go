package financials

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NotApplicable is the fullwidth hyphen-minus EDINET writes for "no value".
const NotApplicable = "－"

// Value is a normalized numeric cell. Integers and decimals are kept apart so
// that "55.00" and "55" do not collapse into the same representation.
type Value struct {
	raw     string
	intVal  int64
	decimal float64
	isFloat bool
}

// ParseValue converts a raw cell string into a Value.
// It returns nil for empty cells and the "－" placeholder; zero is never used
// to mean absence.
func ParseValue(raw string) (*Value, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == NotApplicable {
		return nil, nil
	}

	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", raw, err)
		}
		return &Value{raw: s, decimal: f, isFloat: true}, nil
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	return &Value{raw: s, intVal: i}, nil
}

// IntValue builds an integer Value.
func IntValue(v int64) *Value {
	return &Value{raw: strconv.FormatInt(v, 10), intVal: v}
}

// DecimalValue builds a decimal Value.
func DecimalValue(v float64) *Value {
	return &Value{raw: strconv.FormatFloat(v, 'f', -1, 64), decimal: v, isFloat: true}
}

// IsDecimal reports whether the source text had a decimal point.
func (v Value) IsDecimal() bool { return v.isFloat }

// Int returns the integer value. Decimals are truncated.
func (v Value) Int() int64 {
	if v.isFloat {
		return int64(v.decimal)
	}
	return v.intVal
}

// Float64 returns the value as a float regardless of its kind.
func (v Value) Float64() float64 {
	if v.isFloat {
		return v.decimal
	}
	return float64(v.intVal)
}

// String returns the value as written in the source, without surrounding whitespace.
func (v Value) String() string {
	return v.raw
}

// MarshalJSON writes the number exactly as it appeared in the export when
// that text is already a JSON number ("55.00" stays "55.00").
func (v Value) MarshalJSON() ([]byte, error) {
	if v.raw != "" && json.Valid([]byte(v.raw)) {
		return []byte(v.raw), nil
	}
	if v.isFloat {
		s := strconv.FormatFloat(v.decimal, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return []byte(s), nil
	}
	return []byte(strconv.FormatInt(v.intVal, 10)), nil
}

// UnmarshalJSON reads a number written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value must be a number: %w", err)
	}
	parsed, err := ParseValue(n.String())
	if err != nil {
		return err
	}
	if parsed == nil {
		return fmt.Errorf("empty number")
	}
	*v = *parsed
	return nil
}
