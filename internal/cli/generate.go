// generate.go — The generate command: render a cover from a template or a prompt.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xob0t/covercraft/pkg/errors"
	"github.com/xob0t/covercraft/pkg/pipeline"
	"github.com/xob0t/covercraft/pkg/publish"
)

// generateOpts holds the flags of the generate command.
type generateOpts struct {
	template string
	variant  string
	title    string
	subtitle string

	prompt string // prompt mode when set
	style  string
	size   string

	presets []string
	modes   []string
	output  string
	workers int

	author string
	qrURL  string

	noShareCard bool
	noPreview   bool

	project string // project path or "auto"
	upload  bool
}

func newGenerateCmd() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a cover from a template or a prompt",
		Example: `  covercraft generate -t center_title --title "智谱上市579亿"
  covercraft generate -t center_title --variant 清新风格 --title "Hello" --mode all
  covercraft generate --prompt "misty mountains at dawn" --style fresh --title "Travel notes"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.prompt == "" && strings.TrimSpace(opts.title) == "" {
				return fmt.Errorf("--title is required in template mode")
			}
			return runGenerate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.template, "template", "t", "center_title", "template id")
	f.StringVar(&opts.variant, "variant", "", "template variant name")
	f.StringVar(&opts.title, "title", "", "cover title")
	f.StringVar(&opts.subtitle, "subtitle", "", "cover subtitle")
	f.StringVar(&opts.prompt, "prompt", "", "synthesize the canvas from this prompt instead of a template")
	f.StringVar(&opts.style, "style", "", "fallback style for --prompt (tech, fresh, minimal, warm, business)")
	f.StringVar(&opts.size, "size", "", "canvas size for --prompt, WxH")
	f.StringSliceVarP(&opts.presets, "preset", "p", nil, "crop presets or WxH sizes (repeatable)")
	f.StringSliceVarP(&opts.modes, "mode", "m", nil, "crop modes or all (repeatable)")
	f.StringVarP(&opts.output, "output", "o", "", "output directory")
	f.IntVar(&opts.workers, "workers", 0, "parallel crop workers")
	f.StringVar(&opts.author, "author", "", "share card author line")
	f.StringVar(&opts.qrURL, "qr", "", "share card QR code URL")
	f.BoolVar(&opts.noShareCard, "no-share-card", false, "skip the share card")
	f.BoolVar(&opts.noPreview, "no-preview", false, "skip the preview grid")
	f.StringVar(&opts.project, "project", "", `copy results into <project>/assets/images ("auto" searches below the working directory)`)
	f.BoolVar(&opts.upload, "upload", false, "upload results to the configured S3 bucket")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOpts) error {
	ctx := cmd.Context()
	a := newApp(ctx)
	defer a.Close()

	pubs, err := a.publishers(opts.project, opts.upload)
	if err != nil {
		return err
	}

	popts, err := a.pipelineOptions(ctx)
	if err != nil {
		return err
	}
	if opts.output != "" {
		popts.OutputDir = opts.output
	}
	if opts.workers > 0 {
		popts.Workers = opts.workers
	}
	if opts.noShareCard {
		popts.ShareCard = false
	}
	if opts.noPreview {
		popts.Preview = false
	}
	p := pipeline.New(popts)

	prog := newProgress(a.logger)
	var m *pipeline.Manifest
	if opts.prompt != "" {
		m, err = p.RunPrompt(ctx, pipeline.PromptRequest{
			Prompt: opts.prompt, Style: opts.style, Size: opts.size,
			Title: opts.title, Subtitle: opts.subtitle,
			Presets: opts.presets, Modes: opts.modes,
			Author: opts.author, QRURL: opts.qrURL,
		})
	} else {
		m, err = p.Run(ctx, pipeline.Request{
			Template: opts.template, Variant: opts.variant,
			Title: opts.title, Subtitle: opts.subtitle,
			Presets: opts.presets, Modes: opts.modes,
			Author: opts.author, QRURL: opts.qrURL,
		})
	}
	if err != nil {
		return err
	}
	prog.done("Cover generated")

	problems := publish.All(ctx, m, pubs...)
	for _, msg := range problems {
		m.Warnings = append(m.Warnings, pipeline.Warning{
			Code: errors.ErrCodePartialFailure, Stage: pipeline.StagePersisted, Subject: "publish", Message: msg,
		})
	}
	if len(pubs) > 0 {
		if err := m.Save(); err != nil {
			return err
		}
	}

	printManifest(cmd.OutOrStdout(), m)
	return nil
}

func printManifest(w io.Writer, m *pipeline.Manifest) {
	printSuccess(w, "%s", StyleTitle.Render(m.RunID))
	if m.TemplateID != "" {
		tpl := m.TemplateID
		if m.Variant != "" {
			tpl += " / " + m.Variant
		}
		printKeyValue(w, "template", tpl)
	} else {
		printKeyValue(w, "prompt", m.Prompt)
	}
	printKeyValue(w, "canvas", fmt.Sprintf("%dx%d", m.Canvas.Width, m.Canvas.Height))
	printKeyValue(w, "variants", fmt.Sprintf("%d", m.VariantCount()))
	printKeyValue(w, "directory", m.Dir)

	for _, p := range m.Paths() {
		printFile(w, p)
	}
	for _, p := range m.Published {
		printInfo(w, "published %s", p)
	}
	for _, warn := range m.Warnings {
		printWarning(w, "[%s] %s: %s", warn.Stage, warn.Subject, warn.Message)
	}
}
