package io

import (
	"fmt"
	goimage "image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"databench/internal/model"

	// Register the stdlib and extended image decoders.
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Mode selects the direction a codec is queried for.
type Mode int

const (
	ModeLoad Mode = iota
	ModeSave
)

// frame is one decoded image plane plus its acquisition template, if the
// format carries one.
type frame struct {
	data     *mat.Dense
	dtype    model.Dtype
	template *model.Template
}

// codec binds a family of file extensions to load and save routines. A nil
// save means the format is read-only.
type codec struct {
	name string
	exts []string
	load func(path string) ([]frame, error)
	save func(path string, im *model.Image) error

	// saveDtypes restricts which pixel types save accepts; empty means any.
	saveDtypes []model.Dtype
}

var imageCodecs = []codec{
	{
		name: "Still images",
		exts: []string{".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp"},
		load: loadStill,
		save: savePNG,
	},
	{
		name: "Animations",
		exts: []string{".gif"},
		load: loadGIF,
	},
	{
		name:       "Acquisitions",
		exts:       []string{".acq"},
		load:       loadAcq,
		save:       saveAcq,
		saveDtypes: []model.Dtype{model.DtypeUint16},
	},
}

func findCodec(ext string) (*codec, bool) {
	ext = strings.ToLower(ext)
	for i := range imageCodecs {
		for _, e := range imageCodecs[i].exts {
			if e == ext {
				return &imageCodecs[i], true
			}
		}
	}
	return nil, false
}

// Filters lists the image formats usable in the given direction, one
// "Name (*.ext ...)" entry per line. For ModeSave only formats that accept
// the given pixel type are listed.
func Filters(mode Mode, dtype model.Dtype) string {
	var entries []string
	for _, c := range imageCodecs {
		if mode == ModeSave {
			if c.save == nil || !codecAccepts(c, dtype) {
				continue
			}
		}
		pats := make([]string, len(c.exts))
		for i, e := range c.exts {
			pats[i] = "*" + e
		}
		entries = append(entries, fmt.Sprintf("%s (%s)", c.name, strings.Join(pats, " ")))
	}
	return strings.Join(entries, "\n")
}

func codecAccepts(c codec, dtype model.Dtype) bool {
	if len(c.saveDtypes) == 0 {
		return true
	}
	for _, d := range c.saveDtypes {
		if d == dtype {
			return true
		}
	}
	return false
}

// OpenImages reads one or more image records from a file. Single-frame
// formats yield one record titled after the file; multi-frame formats
// append a _Im<n> suffix per frame.
func OpenImages(path string) ([]*model.Image, error) {
	c, ok := findCodec(filepath.Ext(path))
	if !ok {
		return nil, fmt.Errorf("%w: no image reader for %s", model.ErrUnparsableFormat, path)
	}
	frames, err := c.load(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	images := make([]*model.Image, 0, len(frames))
	for i, f := range frames {
		title := base
		if len(frames) > 1 {
			title = fmt.Sprintf("%s_Im%d", base, i)
		}
		im, err := model.NewImage(model.ImageParam{Title: title, Data: f.data, Dtype: f.dtype})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if f.template != nil {
			im.SetTemplate(f.template)
		}
		images = append(images, im)
	}
	return images, nil
}

// SaveImage writes an image record in the format matching the path's
// extension.
func SaveImage(path string, im *model.Image) error {
	c, ok := findCodec(filepath.Ext(path))
	if !ok || c.save == nil {
		return fmt.Errorf("%w: no image writer for %s", model.ErrUnparsableFormat, path)
	}
	if !codecAccepts(*c, im.Dtype()) {
		return fmt.Errorf("%w: %s does not store %s pixels", model.ErrTypeConstraint, c.name, im.Dtype())
	}
	return c.save(path, im)
}

func loadStill(path string) ([]frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := goimage.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", model.ErrUnparsableFormat, path, err)
	}
	data, dtype := imageToMatrix(img)
	return []frame{{data: data, dtype: dtype}}, nil
}

func loadGIF(path string) ([]frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", model.ErrUnparsableFormat, path, err)
	}
	frames := make([]frame, 0, len(anim.Image))
	for _, img := range anim.Image {
		data, dtype := imageToMatrix(img)
		frames = append(frames, frame{data: data, dtype: dtype})
	}
	return frames, nil
}

func savePNG(path string, im *model.Image) error {
	w, h := im.Size()
	data := im.Data()
	var out goimage.Image
	switch im.Dtype() {
	case model.DtypeUint16, model.DtypeInt16, model.DtypeInt32:
		gray := goimage.NewGray16(goimage.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				gray.SetGray16(x, y, gray16At(data, x, y))
			}
		}
		out = gray
	default:
		gray := goimage.NewGray(goimage.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				gray.SetGray(x, y, gray8At(data, x, y))
			}
		}
		out = gray
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// imageToMatrix flattens a decoded image into a row-major pixel matrix.
// Grayscale sources keep their native depth; anything with color channels
// is averaged over up to the first four channels.
func imageToMatrix(img goimage.Image) (*mat.Dense, model.Dtype) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := mat.NewDense(h, w, nil)
	switch src := img.(type) {
	case *goimage.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data.Set(y, x, float64(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y))
			}
		}
		return data, model.DtypeUint8
	case *goimage.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data.Set(y, x, float64(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y))
			}
		}
		return data, model.DtypeUint16
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				mean := (float64(r>>8) + float64(g>>8) + float64(b>>8) + float64(a>>8)) / 4
				data.Set(y, x, mean)
			}
		}
		return data, model.DtypeFloat64
	}
}

func gray8At(data *mat.Dense, x, y int) (px color.Gray) {
	v := data.At(y, x)
	px.Y = uint8(clampFloat(v, 0, 255))
	return px
}

func gray16At(data *mat.Dense, x, y int) (px color.Gray16) {
	v := data.At(y, x)
	px.Y = uint16(clampFloat(v, 0, 65535))
	return px
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sortedExts returns every known image extension, for dispatch checks.
func sortedExts() []string {
	var exts []string
	for _, c := range imageCodecs {
		exts = append(exts, c.exts...)
	}
	sort.Strings(exts)
	return exts
}
