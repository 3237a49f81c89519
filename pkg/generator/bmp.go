// bmp.go — BMP and TIFF writers backed by golang.org/x/image.
package generator

import (
	"fmt"
	"image"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func writeBMP(w io.Writer, img image.Image) error {
	if err := bmp.Encode(w, img); err != nil {
		return fmt.Errorf("encode BMP: %w", err)
	}
	return nil
}

func writeTIFF(w io.Writer, img image.Image) error {
	if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
		return fmt.Errorf("encode TIFF: %w", err)
	}
	return nil
}
