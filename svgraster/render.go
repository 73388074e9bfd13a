package svgraster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgtext"
	"github.com/charmbracelet/log"
	"golang.org/x/image/draw"
	"golang.org/x/text/language"
	"seehuhn.de/go/geom/matrix"
)

var (
	ErrNilDocument   = errors.New("svgraster: nil document")
	ErrEmptyViewport = errors.New("svgraster: empty viewport")
	// ErrSurfaceTooLarge is reported (and logged) when an intermediate
	// surface exceeds the configured pixel budget.
	ErrSurfaceTooLarge = errors.New("svgraster: surface too large")
)

// Size is the intrinsic size of a document.
type Size = svgdraw.Size

// Viewport is the rectangle of the destination image
// in which the document is drawn.
type Viewport struct {
	X, Y, Width, Height float64
}

type config struct {
	logger      *log.Logger
	dpi         float64
	shaper      *svgtext.Shaper
	languages   []language.Tag
	maxPixels   int
	surfaceHook func(image.Rectangle)
	background  color.Color
}

// Option customizes the rendering.
type Option func(*config)

// WithLogger sets the logger used while rendering.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.logger = l } }

// WithDPI sets the resolution used to convert physical units.
func WithDPI(dpi float64) Option { return func(c *config) { c.dpi = dpi } }

// WithShaper sets the text shaper, which holds the fonts.
func WithShaper(s *svgtext.Shaper) Option { return func(c *config) { c.shaper = s } }

// WithLanguages sets the user languages, used by systemLanguage tests.
func WithLanguages(langs ...language.Tag) Option { return func(c *config) { c.languages = langs } }

// WithMaxSurfacePixels bounds the size of the intermediate surfaces.
// Layers which would exceed it are not drawn.
func WithMaxSurfacePixels(n int) Option { return func(c *config) { c.maxPixels = n } }

// WithSurfaceHook registers a function called for each
// intermediate surface allocation.
func WithSurfaceHook(fn func(image.Rectangle)) Option {
	return func(c *config) { c.surfaceHook = fn }
}

// WithBackground fills the output with c before drawing.
// It is only used by RenderToImage.
func WithBackground(c color.Color) Option { return func(cf *config) { cf.background = c } }

func newConfig(opts []Option) *config {
	cfg := &config{maxPixels: 1 << 26}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (cfg *config) drawOptions(subtree string) svgdraw.Options {
	return svgdraw.Options{
		DPI:       cfg.dpi,
		Logger:    cfg.logger,
		Shaper:    cfg.shaper,
		Languages: cfg.languages,
		Subtree:   subtree,
	}
}

// Dimensions returns the intrinsic size of the document, or of
// the element subtreeID if not empty.
func Dimensions(doc *svgdoc.Document, subtreeID string, opts ...Option) (Size, error) {
	if doc == nil {
		return Size{}, ErrNilDocument
	}
	return svgdraw.Dimensions(doc, newConfig(opts).drawOptions(subtreeID))
}

// Render draws the document (or the element subtreeID, if not empty)
// on dst, scaling its intrinsic size to viewport.
func Render(doc *svgdoc.Document, dst draw.Image, viewport Viewport, subtreeID string, opts ...Option) error {
	if doc == nil {
		return ErrNilDocument
	}
	if !(viewport.Width > 0 && viewport.Height > 0) {
		return ErrEmptyViewport
	}
	cfg := newConfig(opts)
	docSize, err := svgdraw.Dimensions(doc, cfg.drawOptions(""))
	if err != nil {
		return err
	}

	// the rectangle drawn, in the user space of the root
	ox, oy, w, h := 0., 0., docSize.W, docSize.H
	if subtreeID != "" {
		ext, ok, err := svgdraw.Measure(doc, cfg.drawOptions(subtreeID))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		ox, oy, w, h = ext.LLx, ext.LLy, ext.URx-ext.LLx, ext.URy-ext.LLy
	}
	if !(w > 0 && h > 0) {
		return nil
	}

	b := dst.Bounds()
	if b.Empty() {
		return nil
	}
	surface := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	base := matrix.Translate(-ox, -oy).
		Mul(matrix.Scale(viewport.Width/w, viewport.Height/h)).
		Mul(matrix.Translate(viewport.X-float64(b.Min.X), viewport.Y-float64(b.Min.Y)))

	rd := newRenderer(surface, cfg)
	ctx, err := svgdraw.NewDrawingCtx(doc, rd, base, docSize, cfg.drawOptions(subtreeID))
	if err != nil {
		return err
	}
	ctx.Draw()

	draw.Draw(dst, b, surface, image.Point{}, draw.Over)
	return nil
}

// RenderToImage reads an SVG document and draws it on a new
// image, with the intrinsic size of the document.
func RenderToImage(r io.Reader, opts ...Option) (*image.RGBA, error) {
	cfg := newConfig(opts)
	var docOpts []svgdoc.Option
	if cfg.logger != nil {
		docOpts = append(docOpts, svgdoc.WithLogger(cfg.logger))
	}
	doc, err := svgdoc.ReadDocument(r, docOpts...)
	if err != nil {
		return nil, err
	}
	size, err := Dimensions(doc, "", opts...)
	if err != nil {
		return nil, err
	}
	w, h := int(math.Ceil(size.W)), int(math.Ceil(size.H))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %gx%g", ErrEmptyViewport, size.W, size.H)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if cfg.background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(cfg.background), image.Point{}, draw.Src)
	}
	err = Render(doc, img, Viewport{Width: float64(w), Height: float64(h)}, "", opts...)
	return img, err
}
