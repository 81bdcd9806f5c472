package io

import (
	"encoding/binary"
	goimage "image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"databench/internal/model"
)

func writePNG(t *testing.T, img goimage.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// TestOpenImages_GrayKeepsDepth verifies that grayscale sources keep their
// native pixel type.
func TestOpenImages_GrayKeepsDepth(t *testing.T) {
	gray := goimage.NewGray(goimage.Rect(0, 0, 3, 2))
	gray.SetGray(2, 1, color.Gray{Y: 200})

	images, err := OpenImages(writePNG(t, gray))
	require.NoError(t, err)
	require.Len(t, images, 1)

	im := images[0]
	require.Equal(t, model.DtypeUint8, im.Dtype())
	w, h := im.Size()
	require.Equal(t, 3, w)
	require.Equal(t, 2, h)
	require.Equal(t, 200.0, im.Data().At(1, 2))
	require.Equal(t, "test.png", im.Title())
}

// TestOpenImages_ColorAveragesChannels verifies grayscale conversion of
// color sources: the mean over the four 8-bit channels, as float64.
func TestOpenImages_ColorAveragesChannels(t *testing.T) {
	rgba := goimage.NewNRGBA(goimage.Rect(0, 0, 1, 1))
	rgba.Set(0, 0, color.NRGBA{R: 100, G: 60, B: 20, A: 255})

	images, err := OpenImages(writePNG(t, rgba))
	require.NoError(t, err)

	im := images[0]
	require.Equal(t, model.DtypeFloat64, im.Dtype())
	require.InDelta(t, (100.0+60+20+255)/4, im.Data().At(0, 0), 0.5)
}

// TestOpenImages_MultiFrameNaming verifies that animation frames become
// separate records with an _Im<n> title suffix.
func TestOpenImages_MultiFrameNaming(t *testing.T) {
	palette := color.Palette{color.Gray{Y: 0}, color.Gray{Y: 255}}
	anim := &gif.GIF{}
	for i := 0; i < 2; i++ {
		frame := goimage.NewPaletted(goimage.Rect(0, 0, 2, 2), palette)
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 0)
	}

	path := filepath.Join(t.TempDir(), "anim.gif")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gif.EncodeAll(f, anim))
	require.NoError(t, f.Close())

	images, err := OpenImages(path)
	require.NoError(t, err)
	require.Len(t, images, 2)
	require.Equal(t, "anim.gif_Im0", images[0].Title())
	require.Equal(t, "anim.gif_Im1", images[1].Title())
}

// TestOpenImages_UnknownExtension verifies the sentinel for unregistered
// formats.
func TestOpenImages_UnknownExtension(t *testing.T) {
	_, err := OpenImages("data.xyz")
	require.ErrorIs(t, err, model.ErrUnparsableFormat)
}

// TestAcq_RoundTrip verifies the templated acquisition format: pixels and
// template fields survive a save and load cycle, and the template flattens
// into the loaded record's metadata.
func TestAcq_RoundTrip(t *testing.T) {
	data := mat.NewDense(2, 3, []float64{0, 100, 200, 300, 400, 65535})
	im, err := model.NewImage(model.ImageParam{Title: "scan", Data: data, Dtype: model.DtypeUint16})
	require.NoError(t, err)
	im.SetTemplate(&model.Template{
		Modality:      "XR",
		StationName:   "bench-2",
		BitsAllocated: 16,
		PixelSpacing:  [2]float64{0.2, 0.2},
	})

	path := filepath.Join(t.TempDir(), "scan.acq")
	require.NoError(t, SaveImage(path, im))

	images, err := OpenImages(path)
	require.NoError(t, err)
	require.Len(t, images, 1)

	got := images[0]
	require.Equal(t, model.DtypeUint16, got.Dtype())
	require.True(t, mat.Equal(data, got.Data()))
	require.Equal(t, "XR", got.Template().Modality)
	require.Equal(t, model.Text("bench-2"), got.Metadata()["StationName"])

	dx, dy := got.PixelSpacing()
	require.Equal(t, 0.2, dx)
	require.Equal(t, 0.2, dy)
}

// TestAcq_Truncated verifies that chopped or lying acquisition files are
// rejected instead of crashing or allocating per an oversized declared
// template length.
func TestAcq_Truncated(t *testing.T) {
	data := mat.NewDense(2, 3, []float64{0, 100, 200, 300, 400, 65535})
	im, err := model.NewImage(model.ImageParam{Title: "scan", Data: data, Dtype: model.DtypeUint16})
	require.NoError(t, err)

	dir := t.TempDir()
	valid := filepath.Join(dir, "scan.acq")
	require.NoError(t, SaveImage(valid, im))
	raw, err := os.ReadFile(valid)
	require.NoError(t, err)

	cases := map[string][]byte{
		"chopped header":      raw[:10],
		"chopped template":    raw[:20],
		"chopped pixel block": raw[:len(raw)-4],
	}
	// Header declaring a template longer than the whole file.
	lying := append([]byte(nil), raw...)
	binary.LittleEndian.PutUint32(lying[6:], 0xFFFFFFFF)
	cases["oversized template length"] = lying

	for name, content := range cases {
		path := filepath.Join(dir, "bad.acq")
		require.NoError(t, os.WriteFile(path, content, 0644))
		_, err := OpenImages(path)
		require.ErrorIs(t, err, model.ErrUnparsableFormat, name)
	}
}

// TestSaveImage_AcqRejectsWrongDtype verifies the pixel type constraint of
// the acquisition writer.
func TestSaveImage_AcqRejectsWrongDtype(t *testing.T) {
	data := mat.NewDense(1, 1, []float64{0.5})
	im, err := model.NewImage(model.ImageParam{Title: "f", Data: data, Dtype: model.DtypeFloat64})
	require.NoError(t, err)

	err = SaveImage(filepath.Join(t.TempDir(), "f.acq"), im)
	require.ErrorIs(t, err, model.ErrTypeConstraint)
}

// TestSavePNG_RoundTrip verifies the 16-bit grayscale export path.
func TestSavePNG_RoundTrip(t *testing.T) {
	data := mat.NewDense(1, 2, []float64{1000, 70000})
	im, err := model.NewImage(model.ImageParam{Title: "g16", Data: data, Dtype: model.DtypeUint16})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "g16.png")
	require.NoError(t, SaveImage(path, im))

	images, err := OpenImages(path)
	require.NoError(t, err)
	got := images[0]
	require.Equal(t, model.DtypeUint16, got.Dtype())
	require.Equal(t, 1000.0, got.Data().At(0, 0))
	require.Equal(t, 65535.0, got.Data().At(0, 1), "overflow clips at the depth maximum")
}

// TestFilters verifies format discovery for both directions.
func TestFilters(t *testing.T) {
	load := Filters(ModeLoad, model.DtypeUint8)
	require.Contains(t, load, "*.png")
	require.Contains(t, load, "*.gif")
	require.Contains(t, load, "*.acq")

	save := Filters(ModeSave, model.DtypeFloat64)
	require.Contains(t, save, "*.png")
	require.NotContains(t, save, "*.gif", "animations are read-only")
	require.NotContains(t, save, "*.acq", "acquisitions only store uint16")
}
