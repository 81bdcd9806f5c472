package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"databench/internal/container"
)

// Signal is a 1-D record. Its data lives in a single row-stacked float64
// buffer with rows {x, y} or {x, y, dx, dy}; the X/Y accessors alias rows
// of that buffer, so writing through them mutates the signal.
type Signal struct {
	title  string
	xydata *mat.Dense
	meta   Metadata

	XAxis Axis
	YAxis Axis
}

// Title returns the signal title.
func (s *Signal) Title() string {
	return s.title
}

// SetTitle sets the signal title.
func (s *Signal) SetTitle(title string) {
	s.title = title
}

// Metadata returns the live metadata mapping, creating it if needed.
func (s *Signal) Metadata() Metadata {
	if s.meta == nil {
		s.meta = Metadata{}
	}
	return s.meta
}

// SetMetadata replaces the metadata mapping.
func (s *Signal) SetMetadata(meta Metadata) {
	s.meta = meta
}

// SetXYData builds the row-stacked buffer from the given arrays. x and y
// must have equal length; if exactly one of dx/dy is given the other is
// zero-filled and the 4-row layout is used.
func (s *Signal) SetXYData(x, y, dx, dy []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: x has %d samples, y has %d", ErrInvalidShape, len(x), len(y))
	}
	n := len(x)
	if dx == nil && dy == nil {
		data := make([]float64, 0, 2*n)
		data = append(data, x...)
		data = append(data, y...)
		s.xydata = mat.NewDense(2, n, data)
		return nil
	}
	if dx == nil {
		dx = make([]float64, len(dy))
	} else if dy == nil {
		dy = make([]float64, len(dx))
	}
	if len(dx) != n || len(dy) != n {
		return fmt.Errorf("%w: dx/dy length does not match %d samples", ErrInvalidShape, n)
	}
	data := make([]float64, 0, 4*n)
	data = append(data, x...)
	data = append(data, y...)
	data = append(data, dx...)
	data = append(data, dy...)
	s.xydata = mat.NewDense(4, n, data)
	return nil
}

// XYData returns the owning row-stacked buffer.
func (s *Signal) XYData() *mat.Dense {
	return s.xydata
}

// SetXYDataMatrix replaces the buffer directly. The matrix must have 2, 3
// or 4 rows.
func (s *Signal) SetXYDataMatrix(xydata *mat.Dense) error {
	rows, _ := xydata.Dims()
	if rows < 2 || rows > 4 {
		return fmt.Errorf("%w: xydata has %d rows", ErrInvalidShape, rows)
	}
	s.xydata = xydata
	return nil
}

// Len returns the number of samples.
func (s *Signal) Len() int {
	if s.xydata == nil {
		return 0
	}
	_, n := s.xydata.Dims()
	return n
}

// X returns the x row as a view into the owning buffer.
func (s *Signal) X() []float64 {
	if s.xydata == nil {
		return nil
	}
	return s.xydata.RawRowView(0)
}

// Y returns the y row as a view into the owning buffer.
func (s *Signal) Y() []float64 {
	if s.xydata == nil {
		return nil
	}
	return s.xydata.RawRowView(1)
}

// DX returns the dx row view, or nil for the 2-row layout.
func (s *Signal) DX() []float64 {
	if s.xydata == nil {
		return nil
	}
	if rows, _ := s.xydata.Dims(); rows < 4 {
		return nil
	}
	return s.xydata.RawRowView(2)
}

// DY returns the dy row view, or nil for a layout without uncertainties.
func (s *Signal) DY() []float64 {
	if s.xydata == nil {
		return nil
	}
	rows, _ := s.xydata.Dims()
	switch rows {
	case 3:
		return s.xydata.RawRowView(2)
	case 4:
		return s.xydata.RawRowView(3)
	default:
		return nil
	}
}

// SetX overwrites the x row in place.
func (s *Signal) SetX(data []float64) {
	copy(s.xydata.RawRowView(0), data)
}

// SetY overwrites the y row in place.
func (s *Signal) SetY(data []float64) {
	copy(s.xydata.RawRowView(1), data)
}

// CopyDataFrom deep-copies data and metadata from another signal.
func (s *Signal) CopyDataFrom(other Record) error {
	src, ok := other.(*Signal)
	if !ok {
		return fmt.Errorf("%w: cannot copy %T into a signal", ErrTypeConstraint, other)
	}
	s.meta = src.Metadata().Copy()
	if src.xydata != nil {
		s.xydata = mat.DenseCopyOf(src.xydata)
	} else {
		s.xydata = nil
	}
	return nil
}

// SetDataType always fails: signal data only supports float64.
func (s *Signal) SetDataType(dtype Dtype) error {
	return fmt.Errorf("%w: signal data only supports float64", ErrTypeConstraint)
}

// ROI returns the signal's ROI descriptor, if set.
func (s *Signal) ROI() (SignalROI, bool) {
	coords, ok := s.ROICoords()
	if !ok || len(coords) != 2 {
		return SignalROI{}, false
	}
	return SignalROI{First: int(coords[0]), Last: int(coords[1])}, true
}

// SetROI stores the descriptor in the reserved metadata entry.
func (s *Signal) SetROI(roi SignalROI) {
	s.SetROICoords(roi.Coords())
}

// ROICoords returns the raw stored ROI vector, if any.
func (s *Signal) ROICoords() ([]float64, bool) {
	arr, ok := s.Metadata()[ROIKey].(Array)
	if !ok {
		return nil, false
	}
	return arr, true
}

// SetROICoords stores the raw ROI vector.
func (s *Signal) SetROICoords(coords []float64) {
	s.Metadata()[ROIKey] = Array(append([]float64(nil), coords...))
}

// RoiCoordsToIndexes converts interactive selection coordinates (a pair of
// sample positions) to the canonical clamped descriptor.
func (s *Signal) RoiCoordsToIndexes(coords []float64) SignalROI {
	roi := SignalROI{}
	if len(coords) > 0 {
		roi.First = roundIndex(coords[0])
	}
	if len(coords) > 1 {
		roi.Last = roundIndex(coords[1])
	}
	return roi.Clamp(s.Len())
}

// ShapeItems produces geometry descriptors for every shape metadata entry
// plus the ROI range, if present.
func (s *Signal) ShapeItems(editable bool) []ShapeItem {
	items := metadataShapeItems(s.Metadata(), editable)
	if roi, ok := s.ROI(); ok {
		clamped := roi.Clamp(s.Len())
		x := s.X()
		coords := []float64{float64(clamped.First), float64(clamped.Last)}
		if x != nil {
			coords = []float64{x[clamped.First], x[clamped.Last]}
		}
		items = append(items, ShapeItem{
			Label:    "ROI",
			Kind:     ShapeSegment,
			Coords:   coords,
			Editable: editable,
			IsROI:    true,
		})
	}
	return items
}

// Serialize writes the signal's persisted fields into the current group.
func (s *Signal) Serialize(w container.Writer) error {
	if err := w.Write("title", s.title); err != nil {
		return err
	}
	if s.xydata != nil {
		if err := w.Write("xydata", s.xydata); err != nil {
			return err
		}
	}
	metaRaw, err := s.Metadata().MarshalJSON()
	if err != nil {
		return err
	}
	if err := w.Write("metadata", metaRaw); err != nil {
		return err
	}
	for key, val := range map[string]string{
		"xlabel": s.XAxis.Label,
		"xunit":  s.XAxis.Unit,
		"ylabel": s.YAxis.Label,
		"yunit":  s.YAxis.Unit,
	} {
		if err := w.Write(key, val); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads the persisted fields back from the current group.
func (s *Signal) Deserialize(r container.Reader) error {
	title, err := r.ReadString("title")
	if err != nil {
		return err
	}
	s.title = title
	if raw, err := r.ReadBytes("xydata"); err == nil {
		xydata := new(mat.Dense)
		if err := xydata.UnmarshalBinary(raw); err != nil {
			return fmt.Errorf("failed to decode xydata: %w", err)
		}
		s.xydata = xydata
	}
	if raw, err := r.ReadBytes("metadata"); err == nil {
		var meta Metadata
		if err := meta.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("failed to decode metadata: %w", err)
		}
		s.meta = meta
	}
	s.XAxis.Label, _ = r.ReadString("xlabel")
	s.XAxis.Unit, _ = r.ReadString("xunit")
	s.YAxis.Label, _ = r.ReadString("ylabel")
	s.YAxis.Unit, _ = r.ReadString("yunit")
	return nil
}
