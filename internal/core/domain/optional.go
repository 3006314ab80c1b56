package domain

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes three JSON states of a field: absent
// (Set=false), explicit null (Set, Null) and a value (Set, Value).
type OptionalString struct {
	Set   bool
	Null  bool
	Value string
}

// Some returns a present, non-null OptionalString.
func Some(v string) OptionalString {
	return OptionalString{Set: true, Value: v}
}

// Null returns a present, explicitly null OptionalString.
func Null() OptionalString {
	return OptionalString{Set: true, Null: true}
}

// UnmarshalJSON is only invoked when the key is present in the document,
// which is what makes absent distinguishable from null.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		o.Value = ""
		return nil
	}
	o.Null = false
	return json.Unmarshal(b, &o.Value)
}

// Blank reports whether the field is present but null or empty.
func (o OptionalString) Blank() bool {
	return o.Set && (o.Null || o.Value == "")
}

// Ptr returns nil for null or empty values and a pointer to Value otherwise.
func (o OptionalString) Ptr() *string {
	if o.Null || o.Value == "" {
		return nil
	}
	v := o.Value
	return &v
}
