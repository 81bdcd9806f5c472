package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Value is one metadata entry: a scalar, a text, a flag, a numeric array or
// an annotation shape. The set of implementations is closed.
type Value interface {
	isValue()
}

// Text is a string metadata value.
type Text string

// Scalar is a numeric metadata value.
type Scalar float64

// Flag is a boolean metadata value.
type Flag bool

// Array is a numeric vector metadata value.
type Array []float64

// Shape is annotation geometry: a coordinate vector tagged with its kind.
// On disk it keeps the legacy encoding, the coordinates with the kind
// discriminant appended as the last element.
type Shape struct {
	Kind   ShapeKind
	Coords []float64
}

func (Text) isValue()   {}
func (Scalar) isValue() {}
func (Flag) isValue()   {}
func (Array) isValue()  {}
func (Shape) isValue()  {}

// Metadata maps string keys to values. Keys with a leading underscore are
// reserved for ROI and annotation geometry.
type Metadata map[string]Value

// Copy returns a deep copy of the metadata mapping.
func (m Metadata) Copy() Metadata {
	out := make(Metadata, len(m))
	for key, v := range m {
		out[key] = copyValue(v)
	}
	return out
}

// Merge sets every entry of other into m, overwriting same-key entries.
func (m Metadata) Merge(other Metadata) {
	for key, v := range other {
		m[key] = copyValue(v)
	}
}

// SortedKeys returns the metadata keys in lexical order.
func (m Metadata) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func copyValue(v Value) Value {
	switch tv := v.(type) {
	case Array:
		return Array(append([]float64(nil), tv...))
	case Shape:
		return Shape{Kind: tv.Kind, Coords: append([]float64(nil), tv.Coords...)}
	default:
		return v
	}
}

// reservedShapeKey reports whether key names an annotation shape entry.
func reservedShapeKey(key string) bool {
	return strings.HasPrefix(key, "_") && key != ROIKey
}

// MarshalJSON encodes the mapping in the persisted format: plain values as
// JSON primitives, arrays as number lists, shapes as coords+kind vectors.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m))
	for key, v := range m {
		switch tv := v.(type) {
		case Text:
			out[key] = string(tv)
		case Scalar:
			out[key] = float64(tv)
		case Flag:
			out[key] = bool(tv)
		case Array:
			out[key] = []float64(tv)
		case Shape:
			out[key] = append(append([]float64(nil), tv.Coords...), float64(tv.Kind))
		default:
			return nil, fmt.Errorf("metadata key %s: unsupported value %T", key, v)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the persisted format. A numeric vector stored under
// a reserved non-ROI key is decoded as a Shape, splitting off the trailing
// kind discriminant.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Metadata, len(raw))
	for key, msg := range raw {
		v, err := decodeMetadataValue(key, msg)
		if err != nil {
			return fmt.Errorf("metadata key %s: %w", key, err)
		}
		out[key] = v
	}
	*m = out
	return nil
}

func decodeMetadataValue(key string, msg json.RawMessage) (Value, error) {
	var s string
	if err := json.Unmarshal(msg, &s); err == nil {
		return Text(s), nil
	}
	var b bool
	if err := json.Unmarshal(msg, &b); err == nil {
		return Flag(b), nil
	}
	var f float64
	if err := json.Unmarshal(msg, &f); err == nil {
		return Scalar(f), nil
	}
	var arr []float64
	if err := json.Unmarshal(msg, &arr); err != nil {
		return nil, err
	}
	if reservedShapeKey(key) && len(arr) > 1 {
		kind := ShapeKind(arr[len(arr)-1])
		coords := append([]float64(nil), arr[:len(arr)-1]...)
		return Shape{Kind: kind, Coords: coords}, nil
	}
	return Array(arr), nil
}
