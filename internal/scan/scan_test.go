// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scan

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/media-batch/pkg/types"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func defaultExts() types.Extensions {
	return types.DefaultPipelineConfig().Extensions
}

func TestScan(t *testing.T) {
	tests := []struct {
		name        string
		files       []string
		dirs        []string
		wantImages  []string
		wantSignals []string
	}{
		{
			name:        "partitions by extension",
			files:       []string{"b.png", "a.jpg", "s.csv", "notes.txt"},
			wantImages:  []string{"a.jpg", "b.png"},
			wantSignals: []string{"s.csv"},
		},
		{
			name:  "only unrelated files",
			files: []string{"readme.txt"},
		},
		{
			name:       "matching is case sensitive",
			files:      []string{"UPPER.PNG", "photo.Jpg", "data.CSV", "ok.png"},
			wantImages: []string{"ok.png"},
		},
		{
			name:        "subdirectories are skipped",
			files:       []string{"x.csv"},
			dirs:        []string{"nested.png", "more.csv"},
			wantSignals: []string{"x.csv"},
		},
		{
			name:  "jpeg suffix is not in the default list",
			files: []string{"photo.jpeg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				writeFile(t, dir, f)
			}
			for _, d := range tt.dirs {
				require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0o755))
			}

			c, err := Scan(dir, defaultExts())
			require.NoError(t, err)

			assert.Equal(t, tt.wantImages, baseNames(c.Images))
			assert.Equal(t, tt.wantSignals, baseNames(c.Signals))
			assert.Equal(t, len(tt.wantImages) == 0 && len(tt.wantSignals) == 0, c.Empty())
		})
	}
}

func TestScan_AbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png")
	writeFile(t, dir, "s.csv")

	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, dir)
	require.NoError(t, err)

	c, err := Scan(rel, defaultExts())
	require.NoError(t, err)

	require.Len(t, c.Images, 1)
	require.Len(t, c.Signals, 1)
	assert.True(t, filepath.IsAbs(c.Images[0]))
	assert.Equal(t, filepath.Join(dir, "a.png"), c.Images[0])
	assert.Equal(t, filepath.Join(dir, "s.csv"), c.Signals[0])
}

func TestScan_CustomExtensions(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"a.bmp", "b.png", "c.tsv", "d.csv"} {
		writeFile(t, dir, f)
	}

	c, err := Scan(dir, types.Extensions{ImageExts: []string{".bmp"}, SignalExt: ".tsv"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.bmp"}, baseNames(c.Images))
	assert.Equal(t, []string{"c.tsv"}, baseNames(c.Signals))
}

func TestScan_MissingDirectory(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "does-not-exist"), defaultExts())
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFileSystem)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScan_PathIsAFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "plain")

	_, err := Scan(filepath.Join(dir, "plain"), defaultExts())
	assert.ErrorIs(t, err, types.ErrFileSystem)
}

func TestCandidates_Seq(t *testing.T) {
	c := Candidates{
		Images:  []string{"/in/a.png", "/in/b.jpg"},
		Signals: []string{"/in/s.csv"},
	}

	assert.Equal(t, c.Images, slices.Collect(c.ImageSeq()))
	assert.Equal(t, c.Signals, slices.Collect(c.SignalSeq()))

	var empty Candidates
	assert.Empty(t, slices.Collect(empty.ImageSeq()))
	assert.True(t, empty.Empty())
}

func baseNames(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}
