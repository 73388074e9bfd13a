package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benoitkugler/svgrender/svgdoc"
)

// renderOpts holds the command-line flags for the render command.
// Unset flags fall back to the [render] table of the configuration.
type renderOpts struct {
	output     string
	format     string
	width      float64
	height     float64
	dpi        float64
	id         string
	background string
	pdfEngine  string
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render an SVG file to PNG, JPEG or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromContext(cmd.Context()).Render
			flags := cmd.Flags()
			if flags.Changed("width") {
				cfg.Width = opts.width
			}
			if flags.Changed("height") {
				cfg.Height = opts.height
			}
			if flags.Changed("dpi") {
				cfg.DPI = opts.dpi
			}
			if flags.Changed("background") {
				cfg.Background = opts.background
			}
			if flags.Changed("pdf-engine") {
				cfg.PDFEngine = opts.pdfEngine
			}
			switch {
			case flags.Changed("format"):
				cfg.Format = opts.format
			case opts.output != "" && filepath.Ext(opts.output) != "":
				cfg.Format = filepath.Ext(opts.output)
			}
			return runRender(cmd.Context(), args[0], cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input file with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png (default), jpeg, pdf")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "output width (pixels, or points for PDF)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "output height (pixels, or points for PDF)")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", 0, "resolution used for physical units")
	cmd.Flags().StringVar(&opts.id, "id", "", "only render the element with this id")
	cmd.Flags().StringVar(&opts.background, "background", "", "background color (raster formats)")
	cmd.Flags().StringVar(&opts.pdfEngine, "pdf-engine", "", "PDF writer: gofpdf (default), contentstream")

	return cmd
}

func runRender(ctx context.Context, input string, cfg RenderConfig, opts renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	if cfg.DPI <= 0 {
		return fmt.Errorf("invalid dpi %g", cfg.DPI)
	}
	shaper, err := newShaper(configFromContext(ctx).Text, logger)
	if err != nil {
		return err
	}
	j, err := newJob(cfg, shaper, logger)
	if err != nil {
		return err
	}
	j.subtree = opts.id

	doc, err := svgdoc.ReadFile(input, svgdoc.WithLogger(logger))
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + j.format
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := j.run(doc, f); err != nil {
		f.Close()
		os.Remove(output)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", output))
	return nil
}
