// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scan lists an input directory and partitions its files into image
// and signal candidates by file extension.
package scan

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pdiddy/media-batch/pkg/types"
)

// Candidates holds the absolute paths selected for each transform, sorted
// by file name.
type Candidates struct {
	Images  []string
	Signals []string
}

// ImageSeq yields the image candidates in order.
func (c Candidates) ImageSeq() iter.Seq[string] {
	return slices.Values(c.Images)
}

// SignalSeq yields the signal candidates in order.
func (c Candidates) SignalSeq() iter.Seq[string] {
	return slices.Values(c.Signals)
}

// Empty reports whether no file matched either extension set.
func (c Candidates) Empty() bool {
	return len(c.Images) == 0 && len(c.Signals) == 0
}

// Scan reads the immediate entries of inputDir. Regular files whose names end
// with one of exts.ImageExts become image candidates; files ending with
// exts.SignalExt become signal candidates. Subdirectories and other files are
// ignored. Suffix matching is case-sensitive.
//
// A missing or unreadable directory returns an error wrapping
// types.ErrFileSystem.
func Scan(inputDir string, exts types.Extensions) (Candidates, error) {
	abs, err := filepath.Abs(inputDir)
	if err != nil {
		return Candidates{}, fmt.Errorf("resolving input directory %s: %w: %w", inputDir, types.ErrFileSystem, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return Candidates{}, fmt.Errorf("reading input directory %s: %w: %w", abs, types.ErrFileSystem, err)
	}

	var c Candidates
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		switch {
		case hasAnySuffix(name, exts.ImageExts):
			c.Images = append(c.Images, filepath.Join(abs, name))
		case exts.SignalExt != "" && strings.HasSuffix(name, exts.SignalExt):
			c.Signals = append(c.Signals, filepath.Join(abs, name))
		}
	}

	// os.ReadDir already sorts by name; keep the order explicit.
	slices.Sort(c.Images)
	slices.Sort(c.Signals)
	return c, nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
