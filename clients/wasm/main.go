//go:build js && wasm

// covercraft WASM — client-side cropping and template previews.
// Compiled with: GOOS=js GOARCH=wasm go build -o covercraft.wasm ./clients/wasm/
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"sync"
	"syscall/js"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/xob0t/covercraft/pkg/crop"
	"github.com/xob0t/covercraft/pkg/fonts"
	"github.com/xob0t/covercraft/pkg/generator"
	"github.com/xob0t/covercraft/pkg/pipeline"
	"github.com/xob0t/covercraft/pkg/template"
)

var (
	setupOnce sync.Once
	store     *template.Store
	pipe      *pipeline.Pipeline
)

// setup loads the embedded templates. There is no filesystem, synthesizer or
// system font directory in the browser, so generated backgrounds always use
// their style fallback and text uses the embedded fonts.
func setup() {
	setupOnce.Do(func() {
		logger := log.New(io.Discard)
		store = template.NewStore("", logger)
		_ = store.Load()
		pipe = pipeline.New(pipeline.Options{
			Templates: store,
			Fonts:     fonts.NewResolver(logger, fonts.EmbeddedSource{}),
			Logger:    logger,
		})
	})
}

func main() {
	fmt.Println("covercraft WASM loaded")

	js.Global().Set("goListTemplates", js.FuncOf(listTemplates))
	js.Global().Set("goListPresets", js.FuncOf(listPresets))
	js.Global().Set("goRenderTemplate", js.FuncOf(renderTemplate))
	js.Global().Set("goCropImage", js.FuncOf(cropImage))
	js.Global().Set("goReady", js.ValueOf(true))

	select {}
}

func errorValue(format string, args ...any) js.Value {
	return js.ValueOf("error: " + fmt.Sprintf(format, args...))
}

func jsonValue(v any) js.Value {
	data, err := json.Marshal(v)
	if err != nil {
		return errorValue("encode: %v", err)
	}
	return js.ValueOf(string(data))
}

// encodeJPEG returns img as base64 JPEG.
func encodeJPEG(img image.Image) js.Value {
	var buf bytes.Buffer
	if err := generator.Encode(&buf, generator.JPEG, img, generator.Options{Quality: pipeline.DefaultPreviewQuality}); err != nil {
		return errorValue("encode: %v", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// goListTemplates() — JSON array of template summaries.
func listTemplates(this js.Value, args []js.Value) interface{} {
	setup()
	return jsonValue(store.List())
}

// goListPresets() — JSON array of crop presets.
func listPresets(this js.Value, args []js.Value) interface{} {
	return jsonValue(crop.Presets())
}

// goRenderTemplate(id, variant, title, subtitle) — render the full canvas and
// return base64 JPEG.
func renderTemplate(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorValue("need id, variant, title[, subtitle]")
	}
	setup()
	req := pipeline.Request{
		Template: args[0].String(),
		Variant:  args[1].String(),
		Title:    args[2].String(),
	}
	if len(args) > 3 {
		req.Subtitle = args[3].String()
	}

	img, warnings, err := pipe.Render(context.Background(), req)
	if err != nil {
		return errorValue("render: %v", err)
	}
	for _, w := range warnings {
		fmt.Printf("warning [%s] %s: %s\n", w.Code, w.Subject, w.Message)
	}
	return encodeJPEG(img)
}

// goCropImage(base64Data, preset, mode) — crop an uploaded image and return
// base64 JPEG. preset may be a preset name or "WxH".
func cropImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return errorValue("need base64Data, preset, mode")
	}
	data, err := base64.StdEncoding.DecodeString(args[0].String())
	if err != nil {
		return errorValue("invalid base64: %v", err)
	}
	target, err := crop.ParseTarget(args[1].String())
	if err != nil {
		return errorValue("%v", err)
	}
	mode, err := crop.ParseMode(args[2].String())
	if err != nil {
		return errorValue("%v", err)
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return errorValue("decode image: %v", err)
	}
	img, err := crop.Crop(src, target.Width, target.Height, mode)
	if err != nil {
		return errorValue("crop: %v", err)
	}
	return encodeJPEG(img)
}
