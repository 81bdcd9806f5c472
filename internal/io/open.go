package io

import (
	"path/filepath"
	"strings"

	"databench/internal/model"
)

// signalExts are the extensions handled by the signal readers.
var signalExts = []string{".txt", ".csv", ".dat", ".mat"}

// IsImagePath reports whether the path's extension belongs to a registered
// image codec.
func IsImagePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range sortedExts() {
		if e == ext {
			return true
		}
	}
	return false
}

// IsSignalPath reports whether the path's extension belongs to a signal
// reader.
func IsSignalPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range signalExts {
		if e == ext {
			return true
		}
	}
	return false
}

// Open reads every record a file holds, dispatching on the extension.
func Open(path string) ([]model.Record, error) {
	if IsImagePath(path) {
		images, err := OpenImages(path)
		if err != nil {
			return nil, err
		}
		records := make([]model.Record, len(images))
		for i, im := range images {
			records[i] = im
		}
		return records, nil
	}
	sig, err := OpenSignal(path)
	if err != nil {
		return nil, err
	}
	return []model.Record{sig}, nil
}
