// Package model defines the data entities of the workbench: 1-D signal and
// 2-D image records, their metadata mapping, and region-of-interest
// geometry. Records are created by the factory functions in factory.go or
// by deserializing a container group, and are owned by exactly one
// collection at a time.
package model

import (
	"errors"

	"databench/internal/container"
)

// ROIKey is the reserved metadata key holding a record's region of interest
// as a raw coordinate vector.
const ROIKey = "_ROI"

// ShapeKind discriminates the annotation geometry stored in metadata.
// The numeric values are part of the persisted format: a shape metadata
// entry is stored as its coordinate vector with the kind appended.
type ShapeKind int

const (
	ShapeRectangle ShapeKind = iota
	ShapeCircle
	ShapeEllipse
	ShapeSegment
	ShapeMarker
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeRectangle:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	case ShapeEllipse:
		return "ellipse"
	case ShapeSegment:
		return "segment"
	case ShapeMarker:
		return "marker"
	default:
		return "unknown"
	}
}

// Axis holds the display title and physical unit of one data axis.
type Axis struct {
	Label string
	Unit  string
}

// Record is the common interface for signal and image records.
type Record interface {
	Title() string
	SetTitle(title string)

	// Metadata returns the record's live metadata mapping. Reserved keys
	// (leading underscore) encode ROI and annotation geometry and are not
	// ordinary metadata.
	Metadata() Metadata
	SetMetadata(meta Metadata)

	// CopyDataFrom replaces this record's data and metadata with deep
	// copies of the other record's. The other record must be of the same
	// variant.
	CopyDataFrom(other Record) error

	// SetDataType changes the data type tag, converting stored values.
	// Signals reject any type but float64.
	SetDataType(dtype Dtype) error

	// ROICoords returns the raw stored ROI vector, if any.
	ROICoords() ([]float64, bool)
	SetROICoords(coords []float64)

	// ShapeItems produces display-ready geometry descriptors for every
	// shape metadata entry plus the ROI entry, recomputed from metadata
	// on each call.
	ShapeItems(editable bool) []ShapeItem

	Serialize(w container.Writer) error
	Deserialize(r container.Reader) error
}

// Sentinel errors of the data model and factory layer.
var (
	// ErrInvalidShape reports mismatched array lengths or dimensions.
	ErrInvalidShape = errors.New("invalid data shape")

	// ErrUnparsableFormat reports that no known delimiter or codec could
	// parse an input file.
	ErrUnparsableFormat = errors.New("unparsable format")

	// ErrTypeConstraint reports a value of the wrong data type or category.
	ErrTypeConstraint = errors.New("unsupported data type")
)
