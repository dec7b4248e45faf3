package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is an opaque, JSON-serializable answer: a string for text and radio
// exercises, a list of strings for checkboxes, an object for component
// exercises. The zero Value means "no answer" and encodes as null.
type Value struct {
	raw json.RawMessage
}

// Text returns a string answer.
func Text(s string) Value {
	v, _ := ValueOf(s)
	return v
}

// List returns a list-of-strings answer.
func List(items ...string) Value {
	if items == nil {
		items = []string{}
	}
	v, _ := ValueOf(items)
	return v
}

// ValueOf encodes any JSON-serializable Go value.
func ValueOf(x any) (Value, error) {
	b, err := json.Marshal(x)
	if err != nil {
		return Value{}, fmt.Errorf("encode answer: %w", err)
	}
	return RawValue(b)
}

// RawValue wraps already-encoded JSON.
func RawValue(b []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(b); err != nil {
		return Value{}, err
	}
	return v, nil
}

// IsZero reports whether the value holds no answer.
func (v Value) IsZero() bool {
	return len(v.raw) == 0
}

// Raw returns the compact JSON encoding, or nil for the zero Value.
func (v Value) Raw() json.RawMessage {
	return v.raw
}

// AsText returns the answer as a string when it is one.
func (v Value) AsText() (string, bool) {
	var s string
	if v.IsZero() || json.Unmarshal(v.raw, &s) != nil {
		return "", false
	}
	return s, true
}

// Strings returns the answer as a list of strings when it is one.
func (v Value) Strings() ([]string, bool) {
	var s []string
	if v.IsZero() || json.Unmarshal(v.raw, &s) != nil {
		return nil, false
	}
	return s, true
}

// Decode unmarshals the answer into dst.
func (v Value) Decode(dst any) error {
	if v.IsZero() {
		return fmt.Errorf("decode answer: no value")
	}
	return json.Unmarshal(v.raw, dst)
}

// String returns the JSON encoding, so %v prints the answer itself.
func (v Value) String() string {
	if v.IsZero() {
		return "null"
	}
	return string(v.raw)
}

// Equal reports whether two values encode identically.
func (v Value) Equal(o Value) bool {
	return bytes.Equal(v.raw, o.raw)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return []byte("null"), nil
	}
	return v.raw, nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		v.raw = nil
		return nil
	}
	if !json.Valid(trimmed) {
		return fmt.Errorf("invalid answer JSON")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return err
	}
	v.raw = buf.Bytes()
	return nil
}
