package cli

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgpdf"
	"github.com/benoitkugler/svgrender/svgraster"
	"github.com/benoitkugler/svgrender/svgtext"
)

const jpegQuality = 90

// job describes one rendering, shared by the render
// command and the HTTP server.
type job struct {
	format        string
	width, height float64 // zero for the intrinsic size
	dpi           float64
	background    color.Color
	subtree       string
	pdfEngine     svgpdf.Engine

	shaper *svgtext.Shaper
	logger *log.Logger
}

// newJob builds a job from the render defaults.
func newJob(cfg RenderConfig, shaper *svgtext.Shaper, logger *log.Logger) (job, error) {
	format, err := parseFormat(cfg.Format)
	if err != nil {
		return job{}, err
	}
	bg, err := parseBackground(cfg.Background)
	if err != nil {
		return job{}, err
	}
	engine, err := parsePDFEngine(cfg.PDFEngine)
	if err != nil {
		return job{}, err
	}
	return job{
		format:     format,
		width:      cfg.Width,
		height:     cfg.Height,
		dpi:        cfg.DPI,
		background: bg,
		pdfEngine:  engine,
		shaper:     shaper,
		logger:     logger,
	}, nil
}

// contentType returns the MIME type of the output.
func (j job) contentType() string {
	switch j.format {
	case formatPDF:
		return "application/pdf"
	case formatJPEG:
		return "image/jpeg"
	default:
		return "image/png"
	}
}

// outputSize completes the requested size with the intrinsic one,
// preserving the aspect ratio when only one side is given.
func (j job) outputSize(intrinsic svgraster.Size) (w, h float64) {
	w, h = j.width, j.height
	switch {
	case w > 0 && h > 0:
	case w > 0 && intrinsic.W > 0:
		h = w * intrinsic.H / intrinsic.W
	case h > 0 && intrinsic.H > 0:
		w = h * intrinsic.W / intrinsic.H
	default:
		w, h = intrinsic.W, intrinsic.H
	}
	return w, h
}

func (j job) rasterOptions() []svgraster.Option {
	return []svgraster.Option{
		svgraster.WithLogger(j.logger),
		svgraster.WithDPI(j.dpi),
		svgraster.WithShaper(j.shaper),
	}
}

// run draws doc and writes the encoded result to w.
func (j job) run(doc *svgdoc.Document, w io.Writer) error {
	if j.format == formatPDF {
		return j.runPDF(doc, w)
	}

	opts := j.rasterOptions()
	intrinsic, err := svgraster.Dimensions(doc, j.subtree, opts...)
	if err != nil {
		return err
	}
	fw, fh := j.outputSize(intrinsic)
	width, height := int(math.Ceil(fw)), int(math.Ceil(fh))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %gx%g", svgraster.ErrEmptyViewport, fw, fh)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	bg := j.background
	if bg == nil && j.format == formatJPEG {
		bg = color.White
	}
	if bg != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	viewport := svgraster.Viewport{Width: float64(width), Height: float64(height)}
	if err := svgraster.Render(doc, img, viewport, j.subtree, opts...); err != nil {
		return err
	}
	j.logger.Debug("rendered", "width", width, "height", height, "format", j.format)

	if j.format == formatJPEG {
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
	}
	return imaging.Encode(w, img, imaging.PNG)
}

// runPDF writes a one page document. The size is in points.
func (j job) runPDF(doc *svgdoc.Document, w io.Writer) error {
	if j.background != nil {
		j.logger.Debug("background is ignored in PDF output")
	}
	var viewport svgpdf.Viewport
	if j.width > 0 || j.height > 0 {
		intrinsic, err := svgraster.Dimensions(doc, j.subtree, j.rasterOptions()...)
		if err != nil {
			return err
		}
		// intrinsic size in points
		intrinsic.W *= 72 / j.dpi
		intrinsic.H *= 72 / j.dpi
		viewport.Width, viewport.Height = j.outputSize(intrinsic)
	}
	return svgpdf.Render(doc, w, viewport,
		svgpdf.WithLogger(j.logger),
		svgpdf.WithDPI(j.dpi),
		svgpdf.WithShaper(j.shaper),
		svgpdf.WithSubtree(j.subtree),
		svgpdf.WithEngine(j.pdfEngine),
	)
}

// newShaper loads the fonts of the text configuration.
func newShaper(cfg TextConfig, logger *log.Logger) (*svgtext.Shaper, error) {
	shaper := svgtext.NewShaper()
	if cfg.FontDir != "" {
		n, err := shaper.LoadDir(cfg.FontDir)
		if err != nil {
			return nil, fmt.Errorf("loading fonts: %w", err)
		}
		logger.Debug("fonts loaded", "dir", cfg.FontDir, "count", n)
	}
	if cfg.DefaultFamily != "" {
		shaper.SetFallback(cfg.DefaultFamily)
	}
	return shaper, nil
}
