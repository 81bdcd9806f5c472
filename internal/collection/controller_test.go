package collection

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"databench/internal/model"
)

func signalController(t *testing.T, n int) *Controller {
	t.Helper()
	ctrl := NewController(Signals())
	for i := 0; i < n; i++ {
		s, err := model.NewSignal(model.SignalParam{
			Title: fmt.Sprintf("rec %d", i),
			X:     []float64{0, 1, 2},
			Y:     []float64{float64(i), 1, 4},
		})
		require.NoError(t, err)
		ctrl.Add(s)
	}
	return ctrl
}

func countEvents(ctrl *Controller, event EventType) *int {
	n := new(int)
	ctrl.On(event, func() { *n++ })
	return n
}

// TestController_AddMovesCursor verifies that adding a record selects it.
func TestController_AddMovesCursor(t *testing.T) {
	ctrl := signalController(t, 3)
	require.Equal(t, 2, ctrl.Collection().CurrentRow())
	require.Equal(t, []int{2}, ctrl.Collection().SelectedRows())
}

// TestController_DuplicateInsertsAfterOriginals verifies clone placement
// when several rows are duplicated at once: each clone lands right after
// its original, and earlier rows are unaffected by later insertions.
func TestController_DuplicateInsertsAfterOriginals(t *testing.T) {
	ctrl := signalController(t, 4)
	added := countEvents(ctrl, EventObjectAdded)
	*added = 0

	require.NoError(t, ctrl.Duplicate([]int{1, 3}))

	require.Equal(t, 6, ctrl.Len())
	var titles []string
	for i := 0; i < ctrl.Len(); i++ {
		titles = append(titles, ctrl.Record(i).Title())
	}
	require.Equal(t,
		[]string{"rec 0", "rec 1", "rec 1", "rec 2", "rec 3", "rec 3"},
		titles)
	require.Equal(t, 2, *added, "one add notification per clone")
}

// TestController_DuplicateClonesAreIndependent verifies that editing a
// clone leaves the original untouched.
func TestController_DuplicateClonesAreIndependent(t *testing.T) {
	ctrl := signalController(t, 1)
	ctrl.Record(0).Metadata()["tag"] = model.Text("original")

	require.NoError(t, ctrl.Duplicate([]int{0}))

	clone := ctrl.Record(1)
	clone.Metadata()["tag"] = model.Text("edited")
	clone.(*model.Signal).Y()[0] = 99

	require.Equal(t, model.Text("original"), ctrl.Record(0).Metadata()["tag"])
	require.Equal(t, 0.0, ctrl.Record(0).(*model.Signal).Y()[0])
}

// TestController_RemoveDescending verifies multi-row removal: later rows
// first, selection reset to row 0 afterwards.
func TestController_RemoveDescending(t *testing.T) {
	ctrl := signalController(t, 4)
	removed := countEvents(ctrl, EventObjectRemoved)

	ctrl.Remove([]int{0, 2})

	require.Equal(t, 2, ctrl.Len())
	require.Equal(t, "rec 1", ctrl.Record(0).Title())
	require.Equal(t, "rec 3", ctrl.Record(1).Title())
	require.Equal(t, 0, ctrl.Collection().CurrentRow())
	require.Equal(t, 1, *removed)
}

// TestController_RemoveAll verifies the bulk reset: a single removal
// notification when records existed, nothing at all when already empty.
func TestController_RemoveAll(t *testing.T) {
	ctrl := signalController(t, 3)
	removed := countEvents(ctrl, EventObjectRemoved)
	refreshed := countEvents(ctrl, EventRefresh)

	ctrl.RemoveAll()
	require.Equal(t, 0, ctrl.Len())
	require.Equal(t, 1, *removed)
	require.Equal(t, 1, *refreshed)
	require.Equal(t, -1, ctrl.Collection().CurrentRow())

	ctrl.RemoveAll()
	require.Equal(t, 1, *removed, "removing from an empty collection emits nothing")
	require.Equal(t, 1, *refreshed)
}

// TestController_CopyPasteMetadata verifies the basic clipboard flow:
// paste merges into the target, overwriting same-key entries.
func TestController_CopyPasteMetadata(t *testing.T) {
	ctrl := signalController(t, 2)
	ctrl.Record(0).Metadata()["exposure"] = model.Scalar(0.5)
	ctrl.Record(1).Metadata()["exposure"] = model.Scalar(2)
	ctrl.Record(1).Metadata()["note"] = model.Text("keep")

	ctrl.CopyMetadata(0)
	ctrl.PasteMetadata([]int{1})

	meta := ctrl.Record(1).Metadata()
	require.Equal(t, model.Scalar(0.5), meta["exposure"], "clipboard entry overwrites")
	require.Equal(t, model.Text("keep"), meta["note"], "unrelated entries survive")
}

// TestController_CopyMetadataDisambiguates verifies that an unprefixed
// result shape is rewritten under the source row's positional prefix, so
// pasting onto a record holding a same-named result cannot collide.
func TestController_CopyMetadataDisambiguates(t *testing.T) {
	ctrl := signalController(t, 3)
	src := ctrl.Record(2).Metadata()
	src["_diam"] = model.Shape{Kind: model.ShapeCircle, Coords: []float64{1, 1, 5, 1}}
	src["diameter"] = model.Scalar(4)

	ctrl.CopyMetadata(2)
	clip := ctrl.Clipboard()

	require.NotContains(t, clip, "_diam", "unprefixed shape key is rewritten")
	require.Contains(t, clip, "_s002_diam")
	require.NotContains(t, clip, "diameter", "label-prefixed plain entries move too")
	require.Contains(t, clip, "s002_diameter")

	// Already-prefixed shapes are left alone on a second copy.
	ctrl.Record(0).SetMetadata(clip.Copy())
	ctrl.CopyMetadata(0)
	require.Contains(t, ctrl.Clipboard(), "_s002_diam")
}

// TestController_PasteIntoDistinctRecordKeepsBoth verifies the collision
// scenario end to end: the target's own result survives next to the pasted
// one.
func TestController_PasteIntoDistinctRecordKeepsBoth(t *testing.T) {
	ctrl := signalController(t, 2)
	ctrl.Record(0).Metadata()["_diam"] = model.Shape{Kind: model.ShapeCircle, Coords: []float64{1, 1, 5, 1}}
	ctrl.Record(1).Metadata()["_diam"] = model.Shape{Kind: model.ShapeCircle, Coords: []float64{9, 9, 12, 9}}

	ctrl.CopyMetadata(0)
	ctrl.PasteMetadata([]int{1})

	meta := ctrl.Record(1).Metadata()
	require.Contains(t, meta, "_diam", "the target's own result survives")
	require.Contains(t, meta, "_s000_diam", "the pasted result arrives prefixed")
	require.Equal(t, 9.0, meta["_diam"].(model.Shape).Coords[0])
}

// TestController_ClipboardSurvivesSourceRemoval verifies that the clipboard
// is a snapshot, not a live reference.
func TestController_ClipboardSurvivesSourceRemoval(t *testing.T) {
	ctrl := signalController(t, 2)
	ctrl.Record(0).Metadata()["tag"] = model.Text("from row 0")

	ctrl.CopyMetadata(0)
	ctrl.Remove([]int{0})

	ctrl.PasteMetadata([]int{0})
	require.Equal(t, model.Text("from row 0"), ctrl.Record(0).Metadata()["tag"])
}

// TestController_DeleteMetadata verifies clearing and the empty-rows no-op.
func TestController_DeleteMetadata(t *testing.T) {
	ctrl := signalController(t, 2)
	ctrl.Record(0).Metadata()["tag"] = model.Text("x")
	refreshed := countEvents(ctrl, EventRefresh)

	ctrl.DeleteMetadata(nil)
	require.Equal(t, 0, *refreshed, "no rows, no notification")

	ctrl.DeleteMetadata([]int{0})
	require.Empty(t, ctrl.Record(0).Metadata())
	require.Equal(t, 1, *refreshed)
}

// TestController_ListEntries verifies the display list format.
func TestController_ListEntries(t *testing.T) {
	ctrl := signalController(t, 2)
	require.Equal(t, []string{"s000: rec 0", "s001: rec 1"}, ctrl.ListEntries())
}

// TestController_MetadataStreamRoundTrip verifies that metadata exported
// from one record can be imported into another, shape entries included.
func TestController_MetadataStreamRoundTrip(t *testing.T) {
	ctrl := signalController(t, 2)
	ctrl.Record(0).Metadata()["note"] = model.Text("calibrated")
	ctrl.Record(0).Metadata()["gain"] = model.Scalar(1.5)
	ctrl.Record(0).Metadata()["_mark"] = model.Shape{
		Kind:   model.ShapeMarker,
		Coords: []float64{2, 3},
	}

	var buf bytes.Buffer
	require.NoError(t, ctrl.ExportMetadataTo(0, &buf))

	refreshed := countEvents(ctrl, EventRefresh)
	require.NoError(t, ctrl.ImportMetadataFrom(1, &buf))
	require.Equal(t, ctrl.Record(0).Metadata(), ctrl.Record(1).Metadata())
	require.Equal(t, 1, *refreshed)
}

// TestController_ImportMetadataMalformed verifies that bad input leaves
// the record untouched.
func TestController_ImportMetadataMalformed(t *testing.T) {
	ctrl := signalController(t, 1)
	ctrl.Record(0).Metadata()["keep"] = model.Text("me")

	err := ctrl.ImportMetadataFrom(0, strings.NewReader("not json"))
	require.Error(t, err)
	require.Equal(t, model.Text("me"), ctrl.Record(0).Metadata()["keep"])
}

// TestController_MetadataStreamBadRow verifies the out-of-range errors.
func TestController_MetadataStreamBadRow(t *testing.T) {
	ctrl := signalController(t, 1)
	require.Error(t, ctrl.ExportMetadataTo(5, &bytes.Buffer{}))
	require.Error(t, ctrl.ImportMetadataFrom(-1, strings.NewReader("{}")))
}
