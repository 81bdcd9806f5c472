package io

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"databench/internal/model"
)

// acqMagic opens every acquisition file. The trailing digit is the format
// revision.
var acqMagic = []byte("DBACQ1")

// acqHeader sits between the magic and the pixel block.
type acqHeader struct {
	TemplateLen uint32
	Width       uint32
	Height      uint32
}

// loadAcq reads a templated acquisition: magic, header, JSON template,
// then width*height little-endian uint16 pixels in row-major order.
func loadAcq(path string) ([]frame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !bytes.HasPrefix(raw, acqMagic) {
		return nil, fmt.Errorf("%w: %s is not an acquisition file", model.ErrUnparsableFormat, path)
	}
	rest := raw[len(acqMagic):]
	const hdrSize = 12 // three uint32 fields
	if len(rest) < hdrSize {
		return nil, fmt.Errorf("%w: %s has a truncated header", model.ErrUnparsableFormat, path)
	}
	hdr := acqHeader{
		TemplateLen: binary.LittleEndian.Uint32(rest[0:]),
		Width:       binary.LittleEndian.Uint32(rest[4:]),
		Height:      binary.LittleEndian.Uint32(rest[8:]),
	}
	rest = rest[hdrSize:]
	if uint64(hdr.TemplateLen) > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: %s has a truncated template", model.ErrUnparsableFormat, path)
	}
	tmpl := new(model.Template)
	if err := json.Unmarshal(rest[:hdr.TemplateLen], tmpl); err != nil {
		return nil, fmt.Errorf("%w: %s carries a malformed template: %v", model.ErrUnparsableFormat, path, err)
	}
	rest = rest[hdr.TemplateLen:]
	if hdr.Width == 0 || hdr.Height == 0 {
		return nil, fmt.Errorf("%w: %s declares an empty pixel block", model.ErrUnparsableFormat, path)
	}
	pixelBytes := uint64(hdr.Width) * uint64(hdr.Height) * 2
	if pixelBytes > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: %s has a truncated pixel block", model.ErrUnparsableFormat, path)
	}
	w, h := int(hdr.Width), int(hdr.Height)
	data := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			data.Set(y, x, float64(binary.LittleEndian.Uint16(rest[2*(y*w+x):])))
		}
	}
	return []frame{{data: data, dtype: model.DtypeUint16, template: tmpl}}, nil
}

// saveAcq writes a templated acquisition. The record must hold uint16
// pixels; a record without a template gets a default one.
func saveAcq(path string, im *model.Image) error {
	tmpl := im.Template()
	if tmpl == nil {
		tmpl = &model.Template{BitsAllocated: 16}
	}
	tmplJSON, err := json.Marshal(tmpl)
	if err != nil {
		return fmt.Errorf("failed to encode template for %s: %w", path, err)
	}
	w, h := im.Size()
	data := im.Data()
	pixels := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pixels[y*w+x] = uint16(clampFloat(data.At(y, x), 0, 65535))
		}
	}
	var buf bytes.Buffer
	buf.Write(acqMagic)
	hdr := acqHeader{TemplateLen: uint32(len(tmplJSON)), Width: uint32(w), Height: uint32(h)}
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	buf.Write(tmplJSON)
	if err := binary.Write(&buf, binary.LittleEndian, pixels); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
