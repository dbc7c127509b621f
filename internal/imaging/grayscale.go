// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imaging converts raster images to single-channel luminance and
// writes them back in the container format implied by the file extension.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pdiddy/media-batch/pkg/types"
)

// JPEGQuality is the quality used when the output container is JPEG.
const JPEGQuality = 75

// Result describes one converted image.
type Result struct {
	OutputPath string
	Format     string // decoded source format, e.g. "png"
	Width      int
	Height     int
}

type encodeFunc func(w io.Writer, img image.Image) error

var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// encoders maps a lowercased output extension to its container encoder.
var encoders = map[string]encodeFunc{
	".png":  pngEncoder.Encode,
	".jpg":  encodeJPEG,
	".jpeg": encodeJPEG,
	".bmp":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// Supported reports whether Grayscale can write an output with the
// extension of path.
func Supported(path string) bool {
	_, ok := encoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Grayscale decodes srcPath, converts it to luminance, and writes the result
// to <outputDir>/<basename(srcPath)> using the same container type.
// It creates or overwrites exactly one file.
func Grayscale(srcPath, outputDir string) (Result, error) {
	img, format, err := Decode(srcPath)
	if err != nil {
		return Result{}, err
	}

	gray := ToGray(img)
	outPath := filepath.Join(outputDir, filepath.Base(srcPath))
	if err := Encode(outPath, gray); err != nil {
		return Result{}, err
	}

	b := gray.Bounds()
	return Result{
		OutputPath: outPath,
		Format:     format,
		Width:      b.Dx(),
		Height:     b.Dy(),
	}, nil
}

// Decode opens path and decodes it, inferring the format from its content.
// Failures wrap types.ErrDecode.
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening image %s: %w: %w", path, types.ErrDecode, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decoding image %s: %w: %w", path, types.ErrDecode, err)
	}
	return img, format, nil
}

// ToGray converts img to an 8-bit grayscale image anchored at the origin,
// using the ITU-R 601-2 luma weights of color.GrayModel
// (0.299 R + 0.587 G + 0.114 B). Alpha is ignored: translucent pixels are
// converted from their straight color.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if isOpaque(img) {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			c.A = 0xff
			row[x] = color.GrayModel.Convert(c).(color.Gray).Y
		}
	}
	return dst
}

func isOpaque(img image.Image) bool {
	o, ok := img.(interface{ Opaque() bool })
	return ok && o.Opaque()
}

// Encode writes img to path in the container matching the lowercased path
// extension. Failures, including an unsupported extension, wrap types.ErrIO.
func Encode(path string, img image.Image) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	enc, ok := encoders[ext]
	if !ok {
		return fmt.Errorf("writing image %s: %w: no encoder for extension %q", path, types.ErrIO, ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating image %s: %w: %w", path, types.ErrIO, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing image %s: %w: %w", path, types.ErrIO, cerr)
		}
	}()

	if err := enc(f, img); err != nil {
		return fmt.Errorf("encoding image %s: %w: %w", path, types.ErrIO, err)
	}
	return nil
}
