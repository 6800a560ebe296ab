package model

import (
	"encoding/json"
	"strings"
)

// NotFound is the sentinel some sources use for a missing value. ValueOf maps
// it to an absent Value.
const NotFound = "NOT FOUND"

// Value is an extracted string that may be absent. The zero Value is absent.
type Value struct {
	s  string
	ok bool
}

// Absent returns a Value holding nothing.
func Absent() Value {
	return Value{}
}

// Present wraps s as a present Value, verbatim.
func Present(s string) Value {
	return Value{s: s, ok: true}
}

// ValueOf converts a raw extraction result into a Value. Empty (after
// trimming) strings and the NotFound sentinel become absent.
func ValueOf(s string) Value {
	t := strings.TrimSpace(s)
	if t == "" || strings.EqualFold(t, NotFound) {
		return Absent()
	}
	return Present(s)
}

// Get returns the wrapped string and whether it is present.
func (v Value) Get() (string, bool) {
	return v.s, v.ok
}

// IsAbsent reports whether v holds nothing.
func (v Value) IsAbsent() bool {
	return !v.ok
}

// OrEmpty returns the wrapped string, or "" when absent.
func (v Value) OrEmpty() string {
	if !v.ok {
		return ""
	}
	return v.s
}

func (v Value) String() string {
	if !v.ok {
		return "<absent>"
	}
	return v.s
}

// MarshalJSON encodes an absent Value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.s)
}

// UnmarshalJSON decodes null as absent and strings through ValueOf.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Absent()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = ValueOf(s)
	return nil
}
