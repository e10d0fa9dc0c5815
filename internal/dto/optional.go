package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Optional distinguishes a field that was omitted from one sent as null and
// from one carrying a value. An empty JSON string on a non-text field is
// read as null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional explicitly cleared by the client.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked for keys present in the payload.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	if bytes.Equal(trimmed, []byte(`""`)) {
		if _, isText := any(o.Value).(string); !isText {
			o.Null = true
			return nil
		}
	}
	o.Null = false
	return json.Unmarshal(trimmed, &o.Value)
}

// MarshalJSON renders the held value or null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Present reports whether a non-null value was supplied.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

// ValidationValue exposes the held value to struct validation, or nil when
// there is nothing to validate.
func (o Optional[T]) ValidationValue() interface{} {
	if !o.Present() {
		return nil
	}
	return o.Value
}

// Numeric is a decimal literal accepted as either a JSON number or a string.
// Parsing is deferred so that bad values surface as field violations.
type Numeric string

// UnmarshalJSON keeps the raw literal text. null reads as blank.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*n = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*n = Numeric(strings.TrimSpace(s))
		return nil
	}
	*n = Numeric(trimmed)
	return nil
}

// Blank reports whether no digits were supplied.
func (n Numeric) Blank() bool {
	return strings.TrimSpace(string(n)) == ""
}

// Decimal parses the literal.
func (n Numeric) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(string(n)))
}

// OptionalTypes lists the Optional instantiations used by request payloads so
// the validator can unwrap them.
func OptionalTypes() []interface{} {
	return []interface{}{
		Optional[string]{},
		Optional[bool]{},
		Optional[int]{},
		Optional[Numeric]{},
	}
}
