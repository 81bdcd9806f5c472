package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ResultShape is a named derived result attached to a record: a reserved
// metadata key "_<label>" holding annotation geometry. Labels may carry a
// positional prefix such as "s003_" identifying the record the result was
// computed on; the prefix keeps results from colliding when metadata is
// pasted across records.
type ResultShape struct {
	Label string
	Shape Shape
}

// MatchResultShape reports whether the metadata entry (key, v) denotes a
// result shape, and returns it if so. The ROI entry never matches.
func MatchResultShape(key string, v Value) (ResultShape, bool) {
	shape, ok := v.(Shape)
	if !ok || !reservedShapeKey(key) {
		return ResultShape{}, false
	}
	return ResultShape{Label: strings.TrimPrefix(key, "_"), Shape: shape}, true
}

// Key returns the metadata key the result shape is stored under.
func (rs ResultShape) Key() string {
	return "_" + rs.Label
}

// AddTo stores the result shape into the given metadata mapping.
func (rs ResultShape) AddTo(m Metadata) {
	m[rs.Key()] = copyValue(rs.Shape)
}

// HasPositionPrefix reports whether the label already carries a positional
// prefix for the given collection prefix (e.g. "s" matching "s002_...").
func (rs ResultShape) HasPositionPrefix(prefix string) bool {
	re := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `[0-9]{3}[\s_]*`)
	return re.MatchString(rs.Label)
}

// PositionPrefix builds the positional prefix for a record at the given row,
// e.g. PositionPrefix("s", 2) == "s002_".
func PositionPrefix(prefix string, row int) string {
	return fmt.Sprintf("%s%03d_", prefix, row)
}
