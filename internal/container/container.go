// Package container provides the grouped, named-section storage format used
// to persist workbench collections. The data model only ever talks to the
// Writer/Reader interfaces; the shipped backend stores groups as nested
// bbolt buckets.
package container

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Writer writes named values into the current group and opens sub-groups.
type Writer interface {
	// Group creates (or reopens) a named sub-group and runs fn scoped to it.
	Group(name string, fn func(Writer) error) error

	// Write stores a value under key in the current group. Supported types:
	// string, bool, int, float64, []float64, []byte and
	// encoding.BinaryMarshaler.
	Write(key string, v any) error
}

// Reader reads named values from the current group and enumerates sub-groups.
type Reader interface {
	// Group runs fn scoped to the named sub-group. A missing group behaves
	// as an empty one.
	Group(name string, fn func(Reader) error) error

	// ListGroups returns the sub-group names of the current group, in the
	// order the backend yields them.
	ListGroups() ([]string, error)

	ReadString(key string) (string, error)
	ReadBool(key string) (bool, error)
	ReadInt(key string) (int, error)
	ReadFloat(key string) (float64, error)
	ReadFloats(key string) ([]float64, error)
	ReadBytes(key string) ([]byte, error)
}

// value is the stored envelope: a type tag plus the JSON-encoded payload.
type value struct {
	T string          `json:"t"`
	V json.RawMessage `json:"v"`
}

func encodeValue(v any) ([]byte, error) {
	var tag string
	var payload any
	switch tv := v.(type) {
	case string:
		tag, payload = "str", tv
	case bool:
		tag, payload = "bool", tv
	case int:
		tag, payload = "int", tv
	case float64:
		tag, payload = "f64", tv
	case []float64:
		tag, payload = "f64s", tv
	case []byte:
		tag, payload = "bin", tv
	case encoding.BinaryMarshaler:
		raw, err := tv.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to encode binary value: %w", err)
		}
		tag, payload = "bin", raw
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(value{T: tag, V: raw})
}

func decodeValue(data []byte, tag string, out any) error {
	var env value
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("corrupt value envelope: %w", err)
	}
	if env.T != tag {
		return fmt.Errorf("value type mismatch: stored %q, requested %q", env.T, tag)
	}
	return json.Unmarshal(env.V, out)
}
