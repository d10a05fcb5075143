package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned for image formats the writer cannot encode losslessly.
var ErrUnsupportedFormat = errors.New("capture: unsupported format")

// Format is a lossless image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatBMP  Format = "bmp"
)

// ParseFormat resolves a format name, case-insensitively. "tif" is accepted for TIFF.
//
// Parameters:
//   - name: the format name
//
// Returns:
//   - Format: the resolved format
//   - error: ErrUnsupportedFormat when the name is not a known lossless format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "png":
		return FormatPNG, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	case "bmp":
		return FormatBMP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Extension returns the file extension including the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Encode writes img to w in the given format.
//
// Parameters:
//   - w: the destination
//   - img: the image to encode
//   - f: the format
//
// Returns:
//   - error: ErrUnsupportedFormat or an encoder error
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
}
