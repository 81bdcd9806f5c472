// Package io provides file ingestion and export for records: delimited-text
// and binary-array readers for signals, a pluggable codec registry for
// images, and the JSON metadata import/export format.
package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"databench/internal/model"
)

// signalDelimiters are tried in order; the first one that parses the whole
// file wins.
var signalDelimiters = []string{"\t", ",", " ", ";"}

// OpenSignal reads a signal record from a delimited-text or binary-array
// file. The title is the file's base name.
func OpenSignal(path string) (*model.Signal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var table *mat.Dense
	if strings.EqualFold(filepath.Ext(path), ".mat") {
		table = new(mat.Dense)
		if err := table.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("%w: %s is not a binary array file", model.ErrUnparsableFormat, path)
		}
	} else {
		table, err = parseDelimited(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, path)
		}
	}
	sig, err := signalFromTable(filepath.Base(path), table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sig, nil
}

// SaveSignal writes the signal's row-stacked table: binary array for .mat,
// delimited text (one buffer row per line) otherwise.
func SaveSignal(path string, s *model.Signal, delimiter string) error {
	xydata := s.XYData()
	if xydata == nil {
		return fmt.Errorf("%w: signal %q holds no data", model.ErrInvalidShape, s.Title())
	}
	if strings.EqualFold(filepath.Ext(path), ".mat") {
		raw, err := xydata.MarshalBinary()
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		return os.WriteFile(path, raw, 0644)
	}
	if delimiter == "" {
		delimiter = ","
	}
	var sb strings.Builder
	rows, cols := xydata.Dims()
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			if col > 0 {
				sb.WriteString(delimiter)
			}
			sb.WriteString(strconv.FormatFloat(xydata.At(r, col), 'g', -1, 64))
		}
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// parseDelimited parses a numeric table, trying each known delimiter until
// one parses every line of the file.
func parseDelimited(data []byte) (*mat.Dense, error) {
	lines := dataLines(string(data))
	if len(lines) == 0 {
		return nil, model.ErrUnparsableFormat
	}
	for _, delim := range signalDelimiters {
		table, ok := parseWith(lines, delim)
		if ok {
			return table, nil
		}
	}
	return nil, model.ErrUnparsableFormat
}

// dataLines drops blank lines and "#" comments.
func dataLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func parseWith(lines []string, delim string) (*mat.Dense, bool) {
	var values []float64
	cols := -1
	for _, line := range lines {
		var fields []string
		if delim == " " {
			fields = strings.Fields(line)
		} else {
			fields = strings.Split(line, delim)
		}
		if cols == -1 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, false
		}
		for _, field := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, false
			}
			values = append(values, v)
		}
	}
	if cols < 1 {
		return nil, false
	}
	return mat.NewDense(len(lines), cols, values), true
}

// signalFromTable applies the table shape rule: 1-D data becomes y over an
// index ramp; a table whose short axis is columns holds the variables
// x,y[,dy] or x,y,dx,dy as columns; a row-major (transposed) table is
// flipped first.
func signalFromTable(title string, table *mat.Dense) (*model.Signal, error) {
	rows, cols := table.Dims()
	if rows == 1 || cols == 1 {
		n := rows * cols
		y := make([]float64, 0, n)
		for r := 0; r < rows; r++ {
			for col := 0; col < cols; col++ {
				y = append(y, table.At(r, col))
			}
		}
		x := make([]float64, n)
		if n > 1 {
			floats.Span(x, 0, float64(n-1))
		}
		return model.NewSignal(model.SignalParam{Title: title, X: x, Y: y})
	}
	variables := cols
	byColumn := true
	if cols < 2 || cols > 4 {
		if rows < 2 || rows > 4 {
			return nil, fmt.Errorf("%w: %dx%d table is not a signal layout", model.ErrInvalidShape, rows, cols)
		}
		variables = rows
		byColumn = false
	}
	samples := rows
	if !byColumn {
		samples = cols
	}
	at := func(variable, sample int) float64 {
		if byColumn {
			return table.At(sample, variable)
		}
		return table.At(variable, sample)
	}
	extract := func(variable int) []float64 {
		out := make([]float64, samples)
		for i := range out {
			out[i] = at(variable, i)
		}
		return out
	}
	p := model.SignalParam{Title: title, X: extract(0), Y: extract(1)}
	switch variables {
	case 3:
		p.DY = extract(2)
	case 4:
		p.DX = extract(2)
		p.DY = extract(3)
	}
	return model.NewSignal(p)
}
