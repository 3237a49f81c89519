// Package crop reshapes rasters to an exact target size.
//
// crop.go — Crop planning and application. A source whose aspect ratio is within
// RatioTolerance of the target is resized directly. Otherwise it is scaled to cover
// the target and a target-sized window is chosen by one of four modes.
package crop

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/paint"
)

// Mode selects which region of the source survives the crop.
type Mode string

const (
	Center      Mode = "center"       // centred; nudged upward for wide targets
	GoldenRatio Mode = "golden_ratio" // free axis offset at 0.618 of the slack
	Smart       Mode = "smart"        // centred horizontally, a quarter of the slack from the top
	TopHeavy    Mode = "top_heavy"    // centred horizontally, top edge kept
)

// Modes lists every mode in a stable order.
var Modes = []Mode{Center, GoldenRatio, Smart, TopHeavy}

// DefaultModes are the modes generated when a caller asks for "all".
var DefaultModes = []Mode{Center, GoldenRatio, Smart}

const (
	// RatioTolerance is the relative aspect-ratio difference below which no crop happens.
	RatioTolerance = 0.05

	goldenRatio = 0.618
	wideRatio   = 1.5
	wideBias    = 0.2
)

// MaxScaledPixels bounds the intermediate cover-scaled raster.
const MaxScaledPixels = 4 * paint.MaxDimension * paint.MaxDimension

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "unknown crop mode %q", s)
}

// Plan describes how a source becomes a target-sized raster.
type Plan struct {
	Mode   Mode
	Target image.Point // output size, always exact

	// Resize is true when the ratios already match; Scaled and Window are then unused.
	Resize bool

	Scaled image.Point     // source size after cover scaling
	Window image.Rectangle // crop window in scaled-source coordinates, Target-sized
}

// NewPlan computes the crop plan for a source of size src.
func NewPlan(src image.Point, tw, th int, mode Mode) (Plan, error) {
	if !paint.InRange(tw, th) {
		return Plan{}, errors.New(errors.ErrCodeInvalidInput, "invalid target size %dx%d", tw, th)
	}
	if src.X <= 0 || src.Y <= 0 {
		return Plan{}, errors.New(errors.ErrCodeInvalidInput, "empty source image")
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return Plan{}, err
	}

	p := Plan{Mode: mode, Target: image.Pt(tw, th)}

	srcRatio := float64(src.X) / float64(src.Y)
	targetRatio := float64(tw) / float64(th)
	if math.Abs(srcRatio-targetRatio)/targetRatio < RatioTolerance {
		p.Resize = true
		return p, nil
	}

	p.Scaled = coverSize(src, tw, th)
	if p.Scaled.X*p.Scaled.Y > MaxScaledPixels {
		return Plan{}, errors.New(errors.ErrCodeInvalidInput,
			"source %dx%d would scale to %dx%d for a %dx%d target", src.X, src.Y, p.Scaled.X, p.Scaled.Y, tw, th)
	}
	slackX := p.Scaled.X - tw
	slackY := p.Scaled.Y - th

	var x, y int
	switch mode {
	case Center:
		x = slackX / 2
		if targetRatio > wideRatio {
			y = int(float64(slackY) * wideBias)
		} else {
			y = slackY / 2
		}
	case GoldenRatio:
		x = int(float64(slackX) * goldenRatio)
		y = int(float64(slackY) * goldenRatio)
	case Smart:
		x = slackX / 2
		y = slackY / 4
	case TopHeavy:
		x = slackX / 2
		y = 0
	}

	x = anchor(x, tw, p.Scaled.X)
	y = anchor(y, th, p.Scaled.Y)
	p.Window = image.Rect(x, y, x+tw, y+th)
	return p, nil
}

// Apply executes a plan against src. The result is exactly p.Target in size.
func Apply(src image.Image, p Plan) *image.NRGBA {
	if p.Resize {
		return imaging.Resize(src, p.Target.X, p.Target.Y, imaging.Lanczos)
	}

	scaled := src
	if src.Bounds().Size() != p.Scaled {
		scaled = imaging.Resize(src, p.Scaled.X, p.Scaled.Y, imaging.Lanczos)
	}
	return imaging.Crop(scaled, p.Window.Add(scaled.Bounds().Min))
}

// Crop reshapes src to exactly tw×th using mode.
func Crop(src image.Image, tw, th int, mode Mode) (*image.NRGBA, error) {
	p, err := NewPlan(src.Bounds().Size(), tw, th, mode)
	if err != nil {
		return nil, err
	}
	return Apply(src, p), nil
}

// CropToPreset looks the preset up before touching src.
func CropToPreset(src image.Image, preset string, mode Mode) (*image.NRGBA, error) {
	pr, err := LookupPreset(preset)
	if err != nil {
		return nil, err
	}
	return Crop(src, pr.Width, pr.Height, mode)
}

// coverSize scales src uniformly so it covers tw×th on both axes.
func coverSize(src image.Point, tw, th int) image.Point {
	scale := math.Max(float64(tw)/float64(src.X), float64(th)/float64(src.Y))
	w := int(math.Round(float64(src.X) * scale))
	h := int(math.Round(float64(src.Y) * scale))
	return image.Pt(max(w, tw), max(h, th))
}

// anchor clamps a window offset so [off, off+size) lies inside [0, limit).
// A window that would overrun the far edge is re-anchored against it.
func anchor(off, size, limit int) int {
	if off+size > limit {
		off = limit - size
	}
	return max(off, 0)
}
