package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"databench/internal/container"
)

// Dtype tags the numeric type of an image's pixel values. Pixels are held
// in a float64 buffer; the tag constrains the value range and is preserved
// across persistence.
type Dtype int

const (
	DtypeUint8 Dtype = iota
	DtypeInt16
	DtypeUint16
	DtypeInt32
	DtypeFloat32
	DtypeFloat64
)

func (d Dtype) String() string {
	switch d {
	case DtypeUint8:
		return "uint8"
	case DtypeInt16:
		return "int16"
	case DtypeUint16:
		return "uint16"
	case DtypeInt32:
		return "int32"
	case DtypeFloat32:
		return "float32"
	case DtypeFloat64:
		return "float64"
	default:
		return "unknown"
	}
}

// ParseDtype returns the Dtype named by s.
func ParseDtype(s string) (Dtype, error) {
	for _, d := range []Dtype{DtypeUint8, DtypeInt16, DtypeUint16, DtypeInt32, DtypeFloat32, DtypeFloat64} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown dtype %q", ErrTypeConstraint, s)
}

// Integer reports whether the dtype is an integer type.
func (d Dtype) Integer() bool {
	switch d {
	case DtypeFloat32, DtypeFloat64:
		return false
	default:
		return true
	}
}

// Convert maps v into the dtype's representable range, rounding integer
// types and clipping out-of-range values.
func (d Dtype) Convert(v float64) float64 {
	switch d {
	case DtypeUint8:
		return clampRound(v, 0, math.MaxUint8)
	case DtypeInt16:
		return clampRound(v, math.MinInt16, math.MaxInt16)
	case DtypeUint16:
		return clampRound(v, 0, math.MaxUint16)
	case DtypeInt32:
		return clampRound(v, math.MinInt32, math.MaxInt32)
	case DtypeFloat32:
		return float64(float32(v))
	default:
		return v
	}
}

func clampRound(v, lo, hi float64) float64 {
	v = math.Round(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Image is a 2-D record: a pixel buffer with a dtype tag, optional
// acquisition template, metadata and three display axes.
type Image struct {
	title    string
	data     *mat.Dense // height rows x width cols
	dtype    Dtype
	meta     Metadata
	template *Template

	XAxis Axis
	YAxis Axis
	ZAxis Axis
}

// Title returns the image title.
func (im *Image) Title() string {
	return im.title
}

// SetTitle sets the image title.
func (im *Image) SetTitle(title string) {
	im.title = title
}

// Metadata returns the live metadata mapping, creating it if needed.
func (im *Image) Metadata() Metadata {
	if im.meta == nil {
		im.meta = Metadata{}
	}
	return im.meta
}

// SetMetadata replaces the metadata mapping.
func (im *Image) SetMetadata(meta Metadata) {
	im.meta = meta
}

// Data returns the owning pixel buffer.
func (im *Image) Data() *mat.Dense {
	return im.data
}

// SetData replaces the pixel buffer and dtype tag.
func (im *Image) SetData(data *mat.Dense, dtype Dtype) {
	im.data = data
	im.dtype = dtype
}

// Dtype returns the pixel value type tag.
func (im *Image) Dtype() Dtype {
	return im.dtype
}

// Size returns (width, height) in pixels.
func (im *Image) Size() (int, int) {
	if im.data == nil {
		return 0, 0
	}
	h, w := im.data.Dims()
	return w, h
}

// Template returns the acquisition template, if any.
func (im *Image) Template() *Template {
	return im.template
}

// SetTemplate attaches an acquisition template and merges its fields into
// the metadata mapping.
func (im *Image) SetTemplate(t *Template) {
	im.template = t
	if t != nil {
		t.Flatten(im.Metadata())
	}
}

// PixelSpacing returns the template's pixel spacing, or zeros without a
// template.
func (im *Image) PixelSpacing() (float64, float64) {
	if im.template == nil {
		return 0, 0
	}
	return im.template.PixelSpacing[0], im.template.PixelSpacing[1]
}

// SetPixelSpacing updates the template's pixel spacing and re-flattens the
// template into metadata. Without a template it is a no-op.
func (im *Image) SetPixelSpacing(dx, dy float64) {
	if im.template == nil {
		return
	}
	im.template.PixelSpacing = [2]float64{dx, dy}
	im.template.Flatten(im.Metadata())
}

// CopyDataFrom deep-copies data, metadata and template from another image.
func (im *Image) CopyDataFrom(other Record) error {
	src, ok := other.(*Image)
	if !ok {
		return fmt.Errorf("%w: cannot copy %T into an image", ErrTypeConstraint, other)
	}
	im.meta = src.Metadata().Copy()
	if src.data != nil {
		im.data = mat.DenseCopyOf(src.data)
	} else {
		im.data = nil
	}
	im.dtype = src.dtype
	if src.template != nil {
		clone := *src.template
		im.template = &clone
	} else {
		im.template = nil
	}
	return nil
}

// SetDataType converts the pixel values into the new dtype's range and
// updates the tag. Out-of-range values are clipped, integer types rounded.
func (im *Image) SetDataType(dtype Dtype) error {
	if im.data != nil {
		im.data.Apply(func(_, _ int, v float64) float64 {
			return dtype.Convert(v)
		}, im.data)
	}
	im.dtype = dtype
	return nil
}

// ROI returns the image's ROI descriptor, if set.
func (im *Image) ROI() (ImageROI, bool) {
	coords, ok := im.ROICoords()
	if !ok || len(coords) != 4 {
		return ImageROI{}, false
	}
	return ImageROI{
		Col0: int(coords[0]),
		Row0: int(coords[1]),
		Col1: int(coords[2]),
		Row1: int(coords[3]),
	}, true
}

// SetROI stores the descriptor in the reserved metadata entry.
func (im *Image) SetROI(roi ImageROI) {
	im.SetROICoords(roi.Coords())
}

// ROICoords returns the raw stored ROI vector, if any.
func (im *Image) ROICoords() ([]float64, bool) {
	arr, ok := im.Metadata()[ROIKey].(Array)
	if !ok {
		return nil, false
	}
	return arr, true
}

// SetROICoords stores the raw ROI vector.
func (im *Image) SetROICoords(coords []float64) {
	im.Metadata()[ROIKey] = Array(append([]float64(nil), coords...))
}

// RoiCoordsToIndexes converts an interactive pixel rectangle selection to
// the canonical descriptor, clamped per axis to the image size.
func (im *Image) RoiCoordsToIndexes(coords []float64) ImageROI {
	roi := ImageROI{}
	if len(coords) > 3 {
		roi = ImageROI{
			Col0: roundIndex(coords[0]),
			Row0: roundIndex(coords[1]),
			Col1: roundIndex(coords[2]),
			Row1: roundIndex(coords[3]),
		}
	}
	w, h := im.Size()
	return roi.Clamp(w, h)
}

// ShapeItems produces geometry descriptors for every shape metadata entry
// plus the ROI rectangle, if present.
func (im *Image) ShapeItems(editable bool) []ShapeItem {
	items := metadataShapeItems(im.Metadata(), editable)
	if roi, ok := im.ROI(); ok {
		w, h := im.Size()
		clamped := roi.Clamp(w, h)
		items = append(items, ShapeItem{
			Label:    "ROI",
			Kind:     ShapeRectangle,
			Coords:   clamped.Coords(),
			Editable: editable,
			IsROI:    true,
		})
	}
	return items
}

// Serialize writes the image's persisted fields into the current group.
func (im *Image) Serialize(w container.Writer) error {
	if err := w.Write("title", im.title); err != nil {
		return err
	}
	if im.data != nil {
		if err := w.Write("data", im.data); err != nil {
			return err
		}
	}
	if err := w.Write("dtype", im.dtype.String()); err != nil {
		return err
	}
	metaRaw, err := im.Metadata().MarshalJSON()
	if err != nil {
		return err
	}
	if err := w.Write("metadata", metaRaw); err != nil {
		return err
	}
	for key, val := range map[string]string{
		"xlabel": im.XAxis.Label,
		"xunit":  im.XAxis.Unit,
		"ylabel": im.YAxis.Label,
		"yunit":  im.YAxis.Unit,
		"zlabel": im.ZAxis.Label,
		"zunit":  im.ZAxis.Unit,
	} {
		if err := w.Write(key, val); err != nil {
			return err
		}
	}
	return nil
}

// Deserialize reads the persisted fields back from the current group.
func (im *Image) Deserialize(r container.Reader) error {
	title, err := r.ReadString("title")
	if err != nil {
		return err
	}
	im.title = title
	if raw, err := r.ReadBytes("data"); err == nil {
		data := new(mat.Dense)
		if err := data.UnmarshalBinary(raw); err != nil {
			return fmt.Errorf("failed to decode image data: %w", err)
		}
		im.data = data
	}
	if name, err := r.ReadString("dtype"); err == nil {
		dtype, err := ParseDtype(name)
		if err != nil {
			return err
		}
		im.dtype = dtype
	}
	// Stored pixels may predate the dtype or come from a tampered
	// container; re-apply the pixel type constraint.
	if im.data != nil && im.dtype.Integer() {
		im.data.Apply(func(_, _ int, v float64) float64 {
			return im.dtype.Convert(v)
		}, im.data)
	}
	if raw, err := r.ReadBytes("metadata"); err == nil {
		var meta Metadata
		if err := meta.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("failed to decode metadata: %w", err)
		}
		im.meta = meta
	}
	im.XAxis.Label, _ = r.ReadString("xlabel")
	im.XAxis.Unit, _ = r.ReadString("xunit")
	im.YAxis.Label, _ = r.ReadString("ylabel")
	im.YAxis.Unit, _ = r.ReadString("yunit")
	im.ZAxis.Label, _ = r.ReadString("zlabel")
	im.ZAxis.Unit, _ = r.ReadString("zunit")
	return nil
}
