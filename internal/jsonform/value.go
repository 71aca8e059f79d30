package jsonform

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Document is a JSON object column such as featured_events.display_settings.
type Document map[string]any

// Value holds an arbitrary structured value for a JSONB column.
// A nil V is written as SQL NULL and read back from NULL.
type Value struct {
	V any
}

func NewValue(v any) Value {
	return Value{V: v}
}

func (v Value) IsNull() bool {
	return v.V == nil
}

// Text is the form-field rendering of the value.
func (v Value) Text() string {
	return Encode(v.V)
}

func (v Value) Value() (driver.Value, error) {
	if v.V == nil {
		return nil, nil
	}
	b, err := json.Marshal(v.V)
	if err != nil {
		return nil, fmt.Errorf("jsonform.Value: %w", err)
	}
	return string(b), nil
}

func (v *Value) Scan(src interface{}) error {
	if v == nil {
		return fmt.Errorf("jsonform.Value: Scan on nil pointer")
	}

	var raw []byte
	switch s := src.(type) {
	case nil:
		v.V = nil
		return nil
	case []byte:
		raw = s
	case string:
		raw = []byte(s)
	default:
		return fmt.Errorf("jsonform.Value: unsupported Scan type %T", src)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		v.V = nil
		return nil
	}

	out, err := unmarshalAny(raw)
	if err != nil {
		return fmt.Errorf("jsonform.Value: %w", err)
	}
	v.V = out
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.V)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	out, err := unmarshalAny(data)
	if err != nil {
		return err
	}
	v.V = out
	return nil
}

func (d Document) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	b, err := json.Marshal(map[string]any(d))
	if err != nil {
		return nil, fmt.Errorf("jsonform.Document: %w", err)
	}
	return string(b), nil
}

func (d *Document) Scan(src interface{}) error {
	var v Value
	if err := v.Scan(src); err != nil {
		return err
	}
	if v.V == nil {
		*d = nil
		return nil
	}
	m, ok := v.V.(map[string]any)
	if !ok {
		return fmt.Errorf("jsonform.Document: column holds %T, not an object", v.V)
	}
	*d = m
	return nil
}
