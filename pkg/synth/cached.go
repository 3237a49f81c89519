// cached.go — Synthesizer decorator that stores results in a cache.Cache.
package synth

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xob0t/covercraft/pkg/cache"
)

// Cached serves repeated requests from a cache. Cache failures are logged
// and otherwise ignored.
type Cached struct {
	next   Synthesizer
	cache  cache.Cache
	model  string
	ttl    time.Duration
	logger *log.Logger
}

// NewCached wraps next. model is part of every key.
func NewCached(next Synthesizer, c cache.Cache, model string, ttl time.Duration, logger *log.Logger) *Cached {
	if logger == nil {
		logger = log.Default()
	}
	if c == nil {
		c = cache.NullCache{}
	}
	return &Cached{next: next, cache: c, model: model, ttl: ttl, logger: logger}
}

// Key returns the cache key for req.
func (s *Cached) Key(req Request) string {
	return cache.Key("synth", s.model, req.Prompt, req.Size(), req.Quality)
}

// Synthesize implements Synthesizer.
func (s *Cached) Synthesize(ctx context.Context, req Request) (image.Image, error) {
	key := s.Key(req)

	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("synth cache read failed", "err", err)
	}
	if hit {
		img, err := png.Decode(bytes.NewReader(data))
		if err == nil {
			s.logger.Debug("synth cache hit", "size", req.Size())
			return img, nil
		}
		s.logger.Warn("synth cache entry corrupt", "err", err)
		_ = s.cache.Delete(ctx, key)
	}

	img, err := s.next.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		s.logger.Warn("synth cache encode failed", "err", err)
		return img, nil
	}
	if err := s.cache.Set(ctx, key, buf.Bytes(), s.ttl); err != nil {
		s.logger.Warn("synth cache write failed", "err", err)
	}
	return img, nil
}
