package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SignalParam collects the arguments for NewSignal.
type SignalParam struct {
	Title    string
	X, Y     []float64
	DX, DY   []float64
	Metadata Metadata
	XAxis    Axis
	YAxis    Axis
}

// NewSignal builds a signal record from raw arrays. It fails with
// ErrInvalidShape when the array lengths do not line up.
func NewSignal(p SignalParam) (*Signal, error) {
	s := &Signal{
		title: p.Title,
		XAxis: p.XAxis,
		YAxis: p.YAxis,
	}
	if err := s.SetXYData(p.X, p.Y, p.DX, p.DY); err != nil {
		return nil, err
	}
	if p.Metadata != nil {
		s.meta = p.Metadata
	}
	return s, nil
}

// LabeledShape is one named annotation: a label plus its coordinate vector.
type LabeledShape struct {
	Label  string
	Coords []float64
}

// ImageParam collects the arguments for NewImage. Shapes maps each shape
// kind to the annotations of that kind; every annotation becomes a
// reserved, underscore-prefixed metadata entry tagged with its kind.
type ImageParam struct {
	Title    string
	Data     *mat.Dense
	Dtype    Dtype
	Metadata Metadata
	Shapes   map[ShapeKind][]LabeledShape
	XAxis    Axis
	YAxis    Axis
	ZAxis    Axis
}

// NewImage builds an image record. It fails with ErrTypeConstraint when no
// pixel buffer is given.
func NewImage(p ImageParam) (*Image, error) {
	if p.Data == nil {
		return nil, fmt.Errorf("%w: image data must be a numeric buffer", ErrTypeConstraint)
	}
	im := &Image{
		title: p.Title,
		data:  p.Data,
		dtype: p.Dtype,
		XAxis: p.XAxis,
		YAxis: p.YAxis,
		ZAxis: p.ZAxis,
	}
	if p.Metadata != nil {
		im.meta = p.Metadata
	}
	for kind, shapes := range p.Shapes {
		for _, shape := range shapes {
			rs := ResultShape{
				Label: shape.Label,
				Shape: Shape{Kind: kind, Coords: shape.Coords},
			}
			rs.AddTo(im.Metadata())
		}
	}
	return im, nil
}
