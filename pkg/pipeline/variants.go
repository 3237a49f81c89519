// variants.go — One crop per (preset, mode), optionally in parallel.
package pipeline

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	"github.com/xob0t/covercraft/pkg/crop"
	"github.com/xob0t/covercraft/pkg/errors"
)

type variant struct {
	preset crop.Preset
	mode   crop.Mode
	img    image.Image
	err    error
}

func (v variant) name() string { return fmt.Sprintf("%s/%s", v.preset.Name, v.mode) }

// cropVariants fills r.variants in (preset, mode) order. Workers only read
// the base canvas and write their own slot, so the outcome does not depend
// on scheduling.
func (r *run) cropVariants(ctx context.Context) {
	slots := make([]variant, 0, len(r.targets)*len(r.modes))
	for _, t := range r.targets {
		for _, m := range r.modes {
			slots = append(slots, variant{preset: t, mode: m})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.p.opts.Workers, 1))
	for i := range slots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				slots[i].err = err
				return nil
			}
			slots[i].img, slots[i].err = cropSafely(r.canvas, slots[i].preset, slots[i].mode)
			return nil
		})
	}
	_ = g.Wait()

	for _, v := range slots {
		if v.err != nil {
			r.warn(errors.ErrCodePartialFailure, v.name(), fmt.Sprintf("crop variant %s failed: %s", v.name(), errors.UserMessage(v.err)))
			continue
		}
		r.p.logger.Debug("variant cropped", "variant", v.name())
	}
	r.variants = slots
}

// cropSafely is crop.Crop with panics reported as errors.
func cropSafely(src image.Image, p crop.Preset, m crop.Mode) (img image.Image, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New(errors.ErrCodeInternal, "crop panicked: %v", rec)
		}
	}()
	out, err := crop.Crop(src, p.Width, p.Height, m)
	if err != nil {
		return nil, err
	}
	return out, nil
}
