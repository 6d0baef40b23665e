package schema

import (
	"fmt"
	"strings"
)

// Mode is the role a schema node plays when records are restructured.
type Mode int

const (
	// Field copies the value at the node's path into the output.
	Field Mode = iota
	// Group partitions records by the value at the node's path. Inside a
	// leaf object it nests like Object.
	Group
	// Object nests the node's children under its key.
	Object
)

// String returns the lower-case name used in schema files.
func (m Mode) String() string {
	switch m {
	case Field:
		return "field"
	case Group:
		return "group"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	switch m {
	case Field, Group, Object:
		return true
	default:
		return false
	}
}

// Next returns the mode that follows m in the editor's toggle order:
// field, group, object, then back to field.
func (m Mode) Next() Mode {
	switch m {
	case Field:
		return Group
	case Group:
		return Object
	default:
		return Field
	}
}

// ParseMode converts a case-insensitive mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "field", "":
		return Field, nil
	case "group":
		return Group, nil
	case "object":
		return Object, nil
	default:
		return Field, fmt.Errorf("unknown mode %q (want field, group or object)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("cannot encode %s", m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
