package svgpdf

import (
	"errors"
	"fmt"
	"io"

	"github.com/benoitkugler/pdf/contentstream"
	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgpdf/alt"
	"github.com/benoitkugler/svgrender/svgtext"
	"github.com/charmbracelet/log"
	"github.com/jung-kurt/gofpdf"
	"seehuhn.de/go/geom/matrix"
)

var ErrNilDocument = errors.New("svgpdf: nil document")

// Viewport is the size of the page, in points. A zero size
// uses the intrinsic size of the document.
type Viewport struct {
	Width, Height float64
}

// Engine selects the library writing the PDF file.
type Engine uint8

const (
	// EngineFpdf uses github.com/jung-kurt/gofpdf.
	EngineFpdf Engine = iota
	// EngineContentStream writes the content stream with
	// github.com/benoitkugler/pdf (see package alt).
	EngineContentStream
)

type config struct {
	opts   svgdraw.Options
	engine Engine
}

// Option customizes the rendering.
type Option func(*config)

// WithLogger sets the logger used while rendering.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.opts.Logger = l } }

// WithDPI sets the resolution of the user space: one user unit is
// 72/dpi points.
func WithDPI(dpi float64) Option { return func(c *config) { c.opts.DPI = dpi } }

// WithShaper sets the text shaper, which holds the fonts.
func WithShaper(s *svgtext.Shaper) Option { return func(c *config) { c.opts.Shaper = s } }

// WithSubtree only renders the element with the given id.
func WithSubtree(id string) Option { return func(c *config) { c.opts.Subtree = id } }

// WithEngine selects the PDF writer, defaulting to EngineFpdf.
func WithEngine(e Engine) Option { return func(c *config) { c.engine = e } }

// page is the geometry of the output page.
type page struct {
	viewport Viewport
	base     matrix.Matrix // from the document user space to the page
	docSize  svgdraw.Size
}

func layout(doc *svgdoc.Document, cfg config, viewport Viewport) (page, error) {
	dpi := cfg.opts.DPI
	if dpi <= 0 {
		dpi = svgdraw.DefaultDPI
	}

	full := cfg.opts
	full.Subtree = ""
	docSize, err := svgdraw.Dimensions(doc, full)
	if err != nil {
		return page{}, err
	}
	ox, oy, sw, sh := 0., 0., docSize.W, docSize.H
	if cfg.opts.Subtree != "" {
		ext, ok, err := svgdraw.Measure(doc, cfg.opts)
		if err != nil {
			return page{}, err
		}
		if ok {
			ox, oy, sw, sh = ext.LLx, ext.LLy, ext.URx-ext.LLx, ext.URy-ext.LLy
		}
	}
	if !(sw > 0 && sh > 0) {
		return page{}, fmt.Errorf("svgpdf: empty drawing (%gx%g)", sw, sh)
	}
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = Viewport{sw * 72 / dpi, sh * 72 / dpi}
	}
	base := matrix.Translate(-ox, -oy).Mul(matrix.Scale(viewport.Width/sw, viewport.Height/sh))
	return page{viewport: viewport, base: base, docSize: docSize}, nil
}

// Render writes a one page PDF document with the drawing of doc.
func Render(doc *svgdoc.Document, w io.Writer, viewport Viewport, opts ...Option) error {
	if doc == nil {
		return ErrNilDocument
	}
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	pg, err := layout(doc, cfg, viewport)
	if err != nil {
		return err
	}
	if cfg.engine == EngineContentStream {
		return renderContentStream(doc, w, pg, cfg)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pg.viewport.Width, Ht: pg.viewport.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	ctx, err := svgdraw.NewDrawingCtx(doc, NewRenderer(pdf), pg.base, pg.docSize, cfg.opts)
	if err != nil {
		return err
	}
	ctx.Draw()
	return pdf.Output(w)
}

func renderContentStream(doc *svgdoc.Document, w io.Writer, pg page, cfg config) error {
	height := pg.viewport.Height
	cs := contentstream.NewAppearance(pg.viewport.Width, height)
	ctx, err := svgdraw.NewDrawingCtx(doc, alt.NewRenderer(&cs), pg.base, pg.docSize, cfg.opts)
	if err != nil {
		return err
	}
	// the PDF y axis points upward
	cs.Ops(
		contentstream.OpSave{},
		contentstream.OpConcat{Matrix: model.Matrix{1, 0, 0, -1, 0, height}},
	)
	ctx.Draw()
	cs.Ops(contentstream.OpRestore{})

	var out model.Document
	out.Catalog.Pages.Kids = append(out.Catalog.Pages.Kids, cs.ToPageObject(true))
	return out.Write(w, nil)
}
