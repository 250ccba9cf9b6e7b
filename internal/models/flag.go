package models

import (
	"bytes"
	"strconv"
	"strings"
)

// Flag is a boolean that tolerates the loose representations clients send
// for post flags: true/false, "true"/"false", 0/1, or absent. Internally
// everything is a strict bool; the normalization happens once here, at the
// request/storage boundary, so call sites never compare against "false"
// strings. This leniency is part of the read contract for the anonymous
// flag: absent, false and "false" are all the zero value.
type Flag bool

func (f Flag) Bool() bool {
	return bool(f)
}

// UnmarshalJSON accepts JSON booleans, numbers and strings.
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = false
		return nil
	}
	if data[0] == '"' {
		s := strings.Trim(string(data), `"`)
		*f = Flag(truthy(s))
		return nil
	}
	*f = Flag(truthy(string(data)))
	return nil
}

// MarshalJSON always emits a strict JSON boolean.
func (f Flag) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatBool(bool(f))), nil
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "off", "no", "null":
		return false
	}
	return true
}
