// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/media-batch/pkg/types"
)

// redLuma is color.GrayModel applied to opaque pure red:
// (19595*0xffff + 1<<15) >> 24.
const redLuma = 76

func solidRGBA(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	return img
}

func TestGrayscale_SolidRedPNG(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	src := filepath.Join(inDir, "a.png")
	writePNG(t, src, solidRGBA(10, 10, color.RGBA{R: 255, A: 255}))

	res, err := Grayscale(src, outDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "a.png"), res.OutputPath)
	assert.Equal(t, "png", res.Format)
	assert.Equal(t, 10, res.Width)
	assert.Equal(t, 10, res.Height)

	out := decodeFile(t, res.OutputPath)
	gray, ok := out.(*image.Gray)
	require.True(t, ok, "output decodes as %T, want *image.Gray", out)
	assert.Equal(t, image.Rect(0, 0, 10, 10), gray.Bounds())
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			require.Equal(t, uint8(redLuma), gray.GrayAt(x, y).Y, "pixel (%d,%d)", x, y)
		}
	}
}

func TestGrayscale_JPEG(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	src := filepath.Join(inDir, "photo.jpg")
	writeJPEG(t, src, solidRGBA(16, 8, color.RGBA{R: 128, G: 128, B: 128, A: 255}))

	res, err := Grayscale(src, outDir)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", res.Format)

	out := decodeFile(t, res.OutputPath)
	gray, ok := out.(*image.Gray)
	require.True(t, ok, "output decodes as %T, want *image.Gray", out)
	assert.Equal(t, 16, gray.Bounds().Dx())
	assert.Equal(t, 8, gray.Bounds().Dy())
	assert.InDelta(t, 128, int(gray.GrayAt(4, 4).Y), 3)
}

func TestGrayscale_OtherContainers(t *testing.T) {
	for _, name := range []string{"scan.bmp", "scan.tif", "scan.tiff"} {
		t.Run(name, func(t *testing.T) {
			inDir, outDir := t.TempDir(), t.TempDir()
			src := filepath.Join(inDir, name)
			require.NoError(t, Encode(src, solidRGBA(7, 5, color.RGBA{G: 200, A: 255})))

			res, err := Grayscale(src, outDir)
			require.NoError(t, err)

			out := decodeFile(t, res.OutputPath)
			assert.Equal(t, image.Rect(0, 0, 7, 5), out.Bounds())
			r, g, b, _ := out.At(3, 3).RGBA()
			assert.Equal(t, r, g, "output pixel is not gray")
			assert.Equal(t, g, b, "output pixel is not gray")
		})
	}
}

func TestGrayscale_Idempotent(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	src := filepath.Join(inDir, "a.png")
	img := solidRGBA(12, 9, color.RGBA{R: 10, G: 120, B: 240, A: 255})
	img.Set(3, 4, color.RGBA{R: 250, A: 255})
	writePNG(t, src, img)

	res, err := Grayscale(src, outDir)
	require.NoError(t, err)
	first, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)

	_, err = Grayscale(src, outDir)
	require.NoError(t, err)
	second, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGrayscale_CorruptSource(t *testing.T) {
	inDir, outDir := t.TempDir(), t.TempDir()
	src := filepath.Join(inDir, "broken.png")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0o644))

	_, err := Grayscale(src, outDir)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrDecode)

	_, statErr := os.Stat(filepath.Join(outDir, "broken.png"))
	assert.True(t, os.IsNotExist(statErr), "no output should be written for a corrupt source")
}

func TestGrayscale_MissingSource(t *testing.T) {
	_, err := Grayscale(filepath.Join(t.TempDir(), "gone.png"), t.TempDir())
	assert.ErrorIs(t, err, types.ErrDecode)
}

func TestGrayscale_UnwritableOutput(t *testing.T) {
	inDir := t.TempDir()
	src := filepath.Join(inDir, "a.png")
	writePNG(t, src, solidRGBA(2, 2, color.White))

	_, err := Grayscale(src, filepath.Join(t.TempDir(), "missing", "dir"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIO)
}

func TestToGray(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want uint8
	}{
		{"white", color.White, 255},
		{"black", color.Black, 0},
		{"red", color.RGBA{R: 255, A: 255}, redLuma},
		{"green", color.RGBA{G: 255, A: 255}, 150},
		{"blue", color.RGBA{B: 255, A: 255}, 29},
		{"translucent red keeps its color", color.NRGBA{R: 255, A: 128}, redLuma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
			for y := 0; y < 2; y++ {
				for x := 0; x < 3; x++ {
					img.Set(x, y, tt.c)
				}
			}
			gray := ToGray(img)
			assert.Equal(t, tt.want, gray.GrayAt(1, 1).Y)
		})
	}
}

func TestToGray_OffsetBounds(t *testing.T) {
	full := solidRGBA(8, 8, color.Black)
	full.Set(5, 6, color.White)
	sub := full.SubImage(image.Rect(4, 4, 8, 8))

	gray := ToGray(sub)
	assert.Equal(t, image.Rect(0, 0, 4, 4), gray.Bounds())
	assert.Equal(t, uint8(255), gray.GrayAt(1, 2).Y)
	assert.Equal(t, uint8(0), gray.GrayAt(0, 0).Y)
}

func TestEncode_UnsupportedExtension(t *testing.T) {
	err := Encode(filepath.Join(t.TempDir(), "out.gif"), image.NewGray(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, types.ErrIO)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.png"))
	assert.True(t, Supported("a.JPG"))
	assert.True(t, Supported("/x/y.jpeg"))
	assert.True(t, Supported("a.tiff"))
	assert.False(t, Supported("a.gif"))
	assert.False(t, Supported("noext"))
}
