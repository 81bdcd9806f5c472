package collection

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"databench/internal/container"
	"databench/internal/model"
)

// TestGroupName verifies group naming: zero-padded row, sanitized title.
func TestGroupName(t *testing.T) {
	require.Equal(t, "s000: run 12 (xy)", GroupName("s", 0, "run 12 (xy)"))
	require.Equal(t, "i042: ab_c", GroupName("i", 42, "aéb/c"))
}

// TestController_SerializeRoundTrip verifies that a mixed workspace of
// signals and images survives a container round trip with titles, data,
// metadata and axes intact, in collection order.
func TestController_SerializeRoundTrip(t *testing.T) {
	db, err := container.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer db.Close()

	signals := NewController(Signals())
	s, err := model.NewSignal(model.SignalParam{
		Title: "ramp",
		X:     []float64{0, 1, 2},
		Y:     []float64{0, 2, 4},
		XAxis: model.Axis{Label: "time", Unit: "s"},
	})
	require.NoError(t, err)
	s.Metadata()["_peak"] = model.Shape{Kind: model.ShapeMarker, Coords: []float64{1, 2}}
	signals.Add(s)

	images := NewController(Images())
	im, err := model.NewImage(model.ImageParam{
		Title: "frame a",
		Data:  mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6}),
		Dtype: model.DtypeUint16,
	})
	require.NoError(t, err)
	im.SetROI(model.ImageROI{Col0: 0, Row0: 0, Col1: 2, Row1: 1})
	images.Add(im)

	err = db.Update(func(w container.Writer) error {
		if err := signals.Serialize(w); err != nil {
			return err
		}
		return images.Serialize(w)
	})
	require.NoError(t, err)

	sigIn := NewController(Signals())
	imgIn := NewController(Images())
	err = db.View(func(r container.Reader) error {
		if err := sigIn.Deserialize(r); err != nil {
			return err
		}
		return imgIn.Deserialize(r)
	})
	require.NoError(t, err)

	require.Equal(t, 1, sigIn.Len())
	gotSig := sigIn.Record(0).(*model.Signal)
	require.Equal(t, "ramp", gotSig.Title())
	require.Equal(t, []float64{0, 2, 4}, gotSig.Y())
	require.Equal(t, "time", gotSig.XAxis.Label)
	require.Equal(t,
		model.Shape{Kind: model.ShapeMarker, Coords: []float64{1, 2}},
		gotSig.Metadata()["_peak"])

	require.Equal(t, 1, imgIn.Len())
	gotImg := imgIn.Record(0).(*model.Image)
	require.Equal(t, "frame a", gotImg.Title())
	require.Equal(t, model.DtypeUint16, gotImg.Dtype())
	require.Equal(t, 6.0, gotImg.Data().At(1, 2))
	roi, ok := gotImg.ROI()
	require.True(t, ok)
	require.Equal(t, model.ImageROI{Col0: 0, Row0: 0, Col1: 2, Row1: 1}, roi)
}

// TestController_DeserializeEnforcesDtype verifies that pixels restored
// from a container honor the record's integer range even when the stored
// buffer was mutated past it after construction.
func TestController_DeserializeEnforcesDtype(t *testing.T) {
	db, err := container.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer db.Close()

	out := NewController(Images())
	im, err := model.NewImage(model.ImageParam{
		Title: "deep",
		Data:  mat.NewDense(1, 2, []float64{0, 1}),
		Dtype: model.DtypeInt32,
	})
	require.NoError(t, err)
	im.Data().Set(0, 1, 3e9)
	out.Add(im)

	require.NoError(t, db.Update(func(w container.Writer) error {
		return out.Serialize(w)
	}))

	in := NewController(Images())
	require.NoError(t, db.View(func(r container.Reader) error {
		return in.Deserialize(r)
	}))

	got := in.Record(0).(*model.Image)
	require.Equal(t, model.DtypeInt32, got.Dtype())
	require.Equal(t, float64(math.MaxInt32), got.Data().At(0, 1))
}

// TestController_DeserializeMissingGroup verifies that restoring from a
// container without the variant's group yields an empty collection.
func TestController_DeserializeMissingGroup(t *testing.T) {
	db, err := container.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer db.Close()

	ctrl := NewController(Signals())
	err = db.View(func(r container.Reader) error {
		return ctrl.Deserialize(r)
	})
	require.NoError(t, err)
	require.Equal(t, 0, ctrl.Len())
}

// TestController_SerializePreservesOrder verifies that group names sort in
// collection order, so restoring yields the same sequence.
func TestController_SerializePreservesOrder(t *testing.T) {
	db, err := container.Open(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	defer db.Close()

	out := NewController(Signals())
	for _, title := range []string{"zeta", "alpha", "mid"} {
		s, err := model.NewSignal(model.SignalParam{
			Title: title,
			X:     []float64{0, 1},
			Y:     []float64{1, 2},
		})
		require.NoError(t, err)
		out.Add(s)
	}

	require.NoError(t, db.Update(func(w container.Writer) error {
		return out.Serialize(w)
	}))

	in := NewController(Signals())
	require.NoError(t, db.View(func(r container.Reader) error {
		return in.Deserialize(r)
	}))

	require.Equal(t, []string{"s000: zeta", "s001: alpha", "s002: mid"}, in.ListEntries())
}
