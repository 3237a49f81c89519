// wire.go — Builds the pipeline and its collaborators from the configuration.
package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/xob0t/covercraft/internal/config"
	"github.com/xob0t/covercraft/pkg/background"
	"github.com/xob0t/covercraft/pkg/cache"
	"github.com/xob0t/covercraft/pkg/crop"
	"github.com/xob0t/covercraft/pkg/fonts"
	"github.com/xob0t/covercraft/pkg/pipeline"
	"github.com/xob0t/covercraft/pkg/publish"
	"github.com/xob0t/covercraft/pkg/synth"
	"github.com/xob0t/covercraft/pkg/template"
)

// app holds the wired components of one command invocation.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	cache  cache.Cache
}

func newApp(ctx context.Context) *app {
	return &app{cfg: configFromContext(ctx), logger: loggerFromContext(ctx)}
}

// Close releases the synthesis cache.
func (a *app) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}

// synthesizer returns nil when no API key is configured, so every generated
// background uses its style fallback.
func (a *app) synthesizer(ctx context.Context) (synth.Synthesizer, error) {
	if !a.cfg.HasAPIKey() {
		a.logger.Warn("no API key configured, generated backgrounds will use their style fallback")
		return nil, nil
	}
	client := synth.NewClient(synth.Config{
		BaseURL: a.cfg.API.BaseURL,
		APIKey:  a.cfg.API.Key,
		Model:   a.cfg.API.Model,
		Timeout: a.cfg.API.Timeout,
	})

	c := a.cfg.Cache
	switch c.Driver {
	case "file":
		fc, err := cache.NewFileCache(c.Dir)
		if err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
		a.cache = fc
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		a.cache = rc
	default:
		return client, nil
	}
	a.logger.Debug("synthesis cache enabled", "driver", c.Driver)
	return synth.NewCached(client, a.cache, a.cfg.API.Model, c.TTL, a.logger), nil
}

func (a *app) fonts() *fonts.Resolver {
	var sources []fonts.Source
	if len(a.cfg.Paths.Fonts) > 0 {
		sources = append(sources, fonts.NewDirSource(a.cfg.Paths.Fonts...))
	}
	sources = append(sources, fonts.SystemSource(), fonts.EmbeddedSource{})
	return fonts.NewResolver(a.logger, sources...)
}

func (a *app) templates() (*template.Store, error) {
	store := template.NewStore(a.cfg.Paths.Templates, a.logger)
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// pipelineOptions are the config-derived options; callers may override them.
func (a *app) pipelineOptions(ctx context.Context) (pipeline.Options, error) {
	s, err := a.synthesizer(ctx)
	if err != nil {
		return pipeline.Options{}, err
	}
	store, err := a.templates()
	if err != nil {
		return pipeline.Options{}, err
	}
	out := a.cfg.Output
	return pipeline.Options{
		Templates: store,
		Composer:  background.NewComposer(s, a.logger),
		Fonts:     a.fonts(),
		Logger:    a.logger,
		OutputDir: a.cfg.Paths.Output,
		Presets:   out.Presets,
		Modes:     a.cfg.Modes(),
		ShareCard: out.ShareCard,
		Preview:   out.Preview,
		Quality:   out.Quality,
		Workers:   out.Workers,
	}, nil
}

// publishers builds the requested publishers. project may be a path or
// "auto" to search below the working directory.
func (a *app) publishers(project string, upload bool) ([]publish.Publisher, error) {
	var pubs []publish.Publisher
	switch project {
	case "":
	case "auto":
		root, err := publish.FindProject(".")
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, publish.ProjectPublisher{Root: root})
	default:
		pubs = append(pubs, publish.ProjectPublisher{Root: project})
	}

	if upload {
		st := a.cfg.Storage
		s3, err := publish.NewS3Publisher(publish.S3Options{
			Endpoint:  st.Endpoint,
			Region:    st.Region,
			Bucket:    st.Bucket,
			AccessKey: st.AccessKey,
			SecretKey: st.SecretKey,
			PublicURL: st.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		if s3 == nil {
			return nil, fmt.Errorf("--upload needs storage.bucket and S3 credentials")
		}
		pubs = append(pubs, s3)
	}
	return pubs, nil
}

// parseModes accepts crop mode names and "all".
func parseModes(names []string) ([]crop.Mode, error) {
	var out []crop.Mode
	for _, n := range names {
		if n == "all" {
			out = append(out, crop.DefaultModes...)
			continue
		}
		m, err := crop.ParseMode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
