package iptc

import (
	"encoding/json"
	"errors"
)

// Value is a tagged variant: either a single string or an ordered list
// of strings. The distinction is part of the document shape, not an
// artifact of what happens to be stored.
type Value struct {
	values []string
	list   bool
}

// Scalar wraps a single string value.
func Scalar(s string) Value {
	return Value{values: []string{s}}
}

// List wraps an ordered list of string values.
func List(values ...string) Value {
	return Value{values: append([]string(nil), values...), list: true}
}

// IsList reports whether the value is the list variant.
func (v Value) IsList() bool { return v.list }

// Strings returns the value's elements: one element for a scalar, the
// list contents otherwise. Importing adds one record per element.
func (v Value) Strings() []string {
	if !v.list && len(v.values) == 0 {
		return []string{""}
	}
	return append([]string(nil), v.values...)
}

// MarshalJSON encodes a scalar as a JSON string and a list as a JSON
// array of strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.list {
		if v.values == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(v.values)
	}
	if len(v.values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(v.values[0])
}

// UnmarshalJSON accepts both shapes.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Scalar(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = List(list...)
		return nil
	}
	return errors.New("iptc: value must be a string or an array of strings")
}

// Document is the canonical representation: fields keyed by human
// label, nested under the metadata category. Only the IPTC category
// exists today; the nesting leaves room for more without a breaking
// shape change.
type Document struct {
	IPTC map[string]Value `json:"iptc"`
}
