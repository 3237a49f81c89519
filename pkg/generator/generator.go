// Package generator encodes finished canvases to image files.
//
// Every artifact follows one path: flatten the canvas to opaque RGB, then
// encode it in the format named by the file extension.
package generator

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/paint"
)

// Format is an output encoding.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// DefaultQuality is the JPEG quality used when Options.Quality is unset.
const DefaultQuality = 95

// Options controls encoding.
type Options struct {
	Quality int // JPEG only, 1-100
}

var extensions = map[string]Format{
	".jpg":  JPEG,
	".jpeg": JPEG,
	".png":  PNG,
	".bmp":  BMP,
	".tif":  TIFF,
	".tiff": TIFF,
}

// FormatOf returns the format for a file name or bare extension.
func FormatOf(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" && strings.HasPrefix(name, ".") {
		ext = strings.ToLower(name)
	}
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unsupported image format %q: use .jpg, .png, .bmp or .tiff", ext)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

// Write flattens img and writes it to path in the format implied by the
// extension. Parent directories must exist.
func Write(path string, img image.Image, opts Options) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := Encode(w, format, img, opts); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Encode flattens img to opaque RGB and encodes it to w.
func Encode(w io.Writer, format Format, img image.Image, opts Options) error {
	rgb := paint.Flatten(img)
	switch format {
	case JPEG:
		return writeJPEG(w, rgb, opts.Quality)
	case PNG:
		return writePNG(w, rgb)
	case BMP:
		return writeBMP(w, rgb)
	case TIFF:
		return writeTIFF(w, rgb)
	}
	return errors.New(errors.ErrCodeInvalidInput, "unsupported image format %q", format)
}
