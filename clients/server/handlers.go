// handlers.go — API endpoints over the template store, crop engine and pipeline.
package server

import (
	"bytes"
	"encoding/json"
	"image"
	"io"
	"net/http"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"

	"github.com/xob0t/covercraft/pkg/crop"
	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/generator"
	"github.com/xob0t/covercraft/pkg/pipeline"
	"github.com/xob0t/covercraft/pkg/template"
)

// ── Templates ──

type templateResponse struct {
	Info     template.Info `json:"info"`
	Warnings []string      `json:"warnings,omitempty"`
	Document string        `json:"document"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	if s.opts.Templates == nil {
		writeJSON(w, http.StatusOK, []template.Info{})
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Templates.List())
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.opts.Templates == nil {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "template %q not found", id))
		return
	}
	loaded, ok := s.opts.Templates.Get(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "template %q not found", id))
		return
	}
	doc, err := template.Marshal(loaded.Doc)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := templateResponse{Warnings: loaded.Warnings, Document: string(doc)}
	for _, info := range s.opts.Templates.List() {
		if info.ID == id {
			resp.Info = info
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Presets ──

type presetsResponse struct {
	Presets []crop.Preset `json:"presets"`
	Modes   []crop.Mode   `json:"modes"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presetsResponse{Presets: crop.Presets(), Modes: crop.Modes})
}

// ── Covers ──

type coverRequest struct {
	Template string   `json:"template"`
	Variant  string   `json:"variant"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Presets  []string `json:"presets"`
	Modes    []string `json:"modes"`
	Author   string   `json:"author"`
	QRURL    string   `json:"qr_url"`

	// Prompt mode, used when Prompt is set.
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
	Size   string `json:"size"`
}

type coverResponse struct {
	*pipeline.Manifest
	URLs map[string]string `json:"urls"` // file name → /files URL
}

func (s *Server) handleCreateCover(w http.ResponseWriter, r *http.Request) {
	if s.opts.Pipeline == nil {
		s.writeError(w, errors.New(errors.ErrCodeInternal, "no pipeline configured"))
		return
	}
	var req coverRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, badRequest("decode request: %v", err))
		return
	}

	var (
		m   *pipeline.Manifest
		err error
	)
	if req.Prompt != "" {
		m, err = s.opts.Pipeline.RunPrompt(r.Context(), pipeline.PromptRequest{
			Prompt: req.Prompt, Style: req.Style, Size: req.Size,
			Title: req.Title, Subtitle: req.Subtitle,
			Presets: req.Presets, Modes: req.Modes,
			Author: req.Author, QRURL: req.QRURL,
		})
	} else {
		if req.Template == "" {
			s.writeError(w, badRequest("template or prompt is required"))
			return
		}
		m, err = s.opts.Pipeline.Run(r.Context(), pipeline.Request{
			Template: req.Template, Variant: req.Variant,
			Title: req.Title, Subtitle: req.Subtitle,
			Presets: req.Presets, Modes: req.Modes,
			Author: req.Author, QRURL: req.QRURL,
		})
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	urls := make(map[string]string)
	for _, p := range append(m.Paths(), filepath.Join(m.Dir, pipeline.ManifestFile)) {
		name := filepath.Base(p)
		urls[name] = "/files/" + m.RunID + "/" + name
	}
	writeJSON(w, http.StatusCreated, coverResponse{Manifest: m, URLs: urls})
}

// ── Crop ──

func (s *Server) handleCrop(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUpload)
	if err := r.ParseMultipartForm(s.opts.MaxUpload); err != nil {
		s.writeError(w, badRequest("parse form: %v", err))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, badRequest("image file is required"))
		return
	}
	defer file.Close()

	presetName := r.FormValue("preset")
	if presetName == "" {
		presetName = pipeline.DefaultPresets[0]
	}
	target, err := crop.ParseTarget(presetName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	modeName := r.FormValue("mode")
	if modeName == "" {
		modeName = string(crop.Center)
	}
	mode, err := crop.ParseMode(modeName)
	if err != nil {
		s.writeError(w, err)
		return
	}

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		s.writeError(w, badRequest("decode image: %v", err))
		return
	}
	if cfg.Width*cfg.Height > crop.MaxScaledPixels {
		s.writeError(w, badRequest("image %dx%d is too large", cfg.Width, cfg.Height))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "rewind upload"))
		return
	}
	src, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		s.writeError(w, badRequest("decode image: %v", err))
		return
	}
	img, err := crop.Crop(src, target.Width, target.Height, mode)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := generator.Encode(&buf, generator.JPEG, img, generator.Options{}); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode crop"))
		return
	}
	w.Header().Set("Content-Type", generator.JPEG.ContentType())
	w.Header().Set("Content-Disposition", `inline; filename="`+pipeline.VariantFile(target.Name, string(mode))+`"`)
	_, _ = w.Write(buf.Bytes())
}

// ── Files ──

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	run, name := chi.URLParam(r, "run"), chi.URLParam(r, "name")
	if !safeName(run) || !safeName(name) {
		s.writeError(w, badRequest("invalid file path"))
		return
	}
	path := filepath.Join(s.opts.OutputDir, run, name)
	if _, err := generator.FormatOf(name); err != nil && name != pipeline.ManifestFile {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "file %s/%s not found", run, name))
		return
	}
	if !fileExists(path) {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "file %s/%s not found", run, name))
		return
	}
	http.ServeFile(w, r, path)
}
