// file.go — Crop an image file on disk into one JPEG per mode.
package crop

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// FileOptions controls CropFile.
type FileOptions struct {
	OutDir  string // defaults to the source directory
	Quality int    // JPEG quality, defaults to 95
}

// CropFile crops the image at path to target once per mode and writes
// "<stem>_<target>_<mode>.jpg" files. The target is validated before the
// source is opened. Returned paths follow the order of modes.
func CropFile(path string, target Preset, modes []Mode, opts FileOptions) ([]string, error) {
	if len(modes) == 0 {
		modes = DefaultModes
	}
	for _, m := range modes {
		if _, err := ParseMode(string(m)); err != nil {
			return nil, err
		}
	}
	if opts.Quality <= 0 {
		opts.Quality = 95
	}
	if opts.OutDir == "" {
		opts.OutDir = filepath.Dir(path)
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	var out []string
	for _, m := range modes {
		img, err := Crop(src, target.Width, target.Height, m)
		if err != nil {
			return out, err
		}
		dst := filepath.Join(opts.OutDir, fmt.Sprintf("%s_%s_%s.jpg", stem, target.Name, m))
		if err := imaging.Save(img, dst, imaging.JPEGQuality(opts.Quality)); err != nil {
			return out, fmt.Errorf("save %s: %w", dst, err)
		}
		out = append(out, dst)
	}
	return out, nil
}
