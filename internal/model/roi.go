package model

import (
	"math"

	"databench/pkg/geometry"
)

// SignalROI is a sample-index range over a signal's x axis. A stored value
// of -1 on either side means "unset"; edit-time conversions always clamp
// into the valid index range.
type SignalROI struct {
	First int
	Last  int
}

// Clamp restricts both bounds to [0, n-1].
func (r SignalROI) Clamp(n int) SignalROI {
	return SignalROI{
		First: geometry.Clamp(r.First, 0, n-1),
		Last:  geometry.Clamp(r.Last, 0, n-1),
	}
}

// Coords returns the raw stored vector form.
func (r SignalROI) Coords() []float64 {
	return []float64{float64(r.First), float64(r.Last)}
}

// ImageROI is a pixel-space rectangle over an image, stored as
// (col0, row0, col1, row1).
type ImageROI struct {
	Col0 int
	Row0 int
	Col1 int
	Row1 int
}

// Clamp restricts columns to [0, w-1] and rows to [0, h-1], per axis.
func (r ImageROI) Clamp(w, h int) ImageROI {
	return ImageROI{
		Col0: geometry.Clamp(r.Col0, 0, w-1),
		Row0: geometry.Clamp(r.Row0, 0, h-1),
		Col1: geometry.Clamp(r.Col1, 0, w-1),
		Row1: geometry.Clamp(r.Row1, 0, h-1),
	}
}

// Coords returns the raw stored vector form.
func (r ImageROI) Coords() []float64 {
	return []float64{float64(r.Col0), float64(r.Row0), float64(r.Col1), float64(r.Row1)}
}

// Rect returns the ROI as an integer rectangle.
func (r ImageROI) Rect() geometry.RectInt {
	return geometry.RectInt{
		X:      r.Col0,
		Y:      r.Row0,
		Width:  r.Col1 - r.Col0,
		Height: r.Row1 - r.Row0,
	}
}

// ShapeItem is a display-ready geometry descriptor derived from a record's
// metadata, consumable by an external renderer.
type ShapeItem struct {
	Label    string
	Kind     ShapeKind
	Coords   []float64
	Editable bool
	IsROI    bool
}

// Bounds returns the axis-aligned bounding box of the item's coordinate
// pairs.
func (it ShapeItem) Bounds() geometry.Rect {
	points := make([]geometry.Point2D, 0, len(it.Coords)/2)
	for i := 0; i+1 < len(it.Coords); i += 2 {
		points = append(points, geometry.NewPoint2D(it.Coords[i], it.Coords[i+1]))
	}
	return geometry.BoundingBox(points)
}

// roundIndex converts an interactive coordinate to the nearest integer
// index.
func roundIndex(v float64) int {
	return int(math.Round(v))
}

// metadataShapeItems builds the shape items common to both record variants:
// one item per annotation shape entry, in lexical key order.
func metadataShapeItems(meta Metadata, editable bool) []ShapeItem {
	var items []ShapeItem
	for _, key := range meta.SortedKeys() {
		rs, ok := MatchResultShape(key, meta[key])
		if !ok {
			continue
		}
		items = append(items, ShapeItem{
			Label:    rs.Label,
			Kind:     rs.Shape.Kind,
			Coords:   append([]float64(nil), rs.Shape.Coords...),
			Editable: editable,
		})
	}
	return items
}
