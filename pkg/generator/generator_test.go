package generator

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/paint"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name string
		want Format
		ok   bool
	}{
		{"raw_image.jpg", JPEG, true},
		{"a/b/COVER.JPEG", JPEG, true},
		{"x.png", PNG, true},
		{".bmp", BMP, true},
		{"x.tif", TIFF, true},
		{"x.avi", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.name)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("FormatOf(%q) = %q, %v; want %q", tt.name, got, err, tt.want)
		}
		if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("FormatOf(%q) error = %v, want INVALID_INPUT", tt.name, err)
		}
	}
}

func TestWriteEveryFormat(t *testing.T) {
	src := paint.NewCanvas(40, 30, color.NRGBA{200, 40, 10, 255})
	dir := t.TempDir()

	decoders := map[string]func([]byte) (image.Image, error){
		"out.jpg":  func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) },
		"out.png":  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
		"out.bmp":  func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
		"out.tiff": func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) },
	}
	for name, decode := range decoders {
		path := filepath.Join(dir, name)
		if err := Write(path, src, Options{}); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		img, err := decode(data)
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 30 {
			t.Errorf("%s: size %v", name, img.Bounds())
		}
		r, _, _, _ := img.At(20, 15).RGBA()
		if r>>8 < 190 {
			t.Errorf("%s: red channel %d", name, r>>8)
		}
	}
}

func TestEncodeFlattensAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(1, 1, color.NRGBA{255, 255, 255, 127})

	var buf bytes.Buffer
	if err := Encode(&buf, PNG, src, Options{}); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				t.Fatalf("pixel (%d,%d) alpha %d, want opaque", x, y, a)
			}
		}
	}
	if r, _, _, _ := img.At(1, 1).RGBA(); r>>8 < 120 || r>>8 > 135 {
		t.Errorf("half-white over black = %d, want about 127", r>>8)
	}
}

func TestWriteUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.gif")
	if err := Write(path, paint.NewCanvas(2, 2, color.White), Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file created for an unsupported format")
	}
}

func TestContentType(t *testing.T) {
	if JPEG.ContentType() != "image/jpeg" || PNG.ContentType() != "image/png" {
		t.Error("unexpected content types")
	}
}
