// Implements a raster backend to render SVG images,
// by wrapping rasterx.
package svgraster

import (
	"image"
	"image/color"
	"math"

	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
	"github.com/benoitkugler/svgrender/svgtext"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

var _ svgdraw.Backend = (*Renderer)(nil) // assert interface conformance

// maxPatternTile bounds the size (in pixels) of pattern tiles.
const maxPatternTile = 4096

// Renderer draws on premultiplied RGBA surfaces, all of the same size.
type Renderer struct {
	cfg           *config
	width, height int

	surface *image.RGBA  // nil inside a layer which could not be allocated
	clip    *image.Alpha // nil when not clipped
	frames  []frame

	scanner *rasterx.ScannerGV
	dasher  *rasterx.Dasher // to avoid shared state
	filler  *rasterx.Filler // we use separated instance
}

// frame is what a discrete layer saves when pushed.
type frame struct {
	surface  *image.RGBA
	clip     *image.Alpha
	isolated bool
}

// NewRenderer returns a renderer drawing on surface, whose
// origin must be (0, 0).
func NewRenderer(surface *image.RGBA, opts ...Option) *Renderer {
	return newRenderer(surface, newConfig(opts))
}

func newRenderer(surface *image.RGBA, cfg *config) *Renderer {
	w, h := surface.Rect.Dx(), surface.Rect.Dy()
	scanner := rasterx.NewScannerGV(w, h, surface, surface.Bounds())
	return &Renderer{
		cfg:     cfg,
		width:   w,
		height:  h,
		surface: surface,
		scanner: scanner,
		dasher:  rasterx.NewDasher(w, h, scanner),
		filler:  rasterx.NewFiller(w, h, scanner),
	}
}

// child returns a renderer drawing on another surface of the
// same size, used for masks and pattern tiles.
func (rd *Renderer) child(surface *image.RGBA) *Renderer {
	return newRenderer(surface, rd.cfg)
}

func (rd *Renderer) setSurface(s *image.RGBA) {
	rd.surface = s
	if s != nil {
		rd.scanner.Dest = s
	}
}

func (rd *Renderer) bounds() image.Rectangle { return image.Rect(0, 0, rd.width, rd.height) }

// fixedAdder feeds a path to a rasterx adder, mapping it
// to the device space.
type fixedAdder struct {
	to rasterx.Adder
	m  matrix.Matrix
}

func (a fixedAdder) pt(p svgpath.Point) fixed.Point26_6 {
	x, y := svgpath.Apply(a.m, p.X, p.Y)
	return fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
}

func (a fixedAdder) Start(p svgpath.Point)        { a.to.Start(a.pt(p)) }
func (a fixedAdder) Line(b svgpath.Point)         { a.to.Line(a.pt(b)) }
func (a fixedAdder) QuadBezier(b, c svgpath.Point) { a.to.QuadBezier(a.pt(b), a.pt(c)) }
func (a fixedAdder) CubeBezier(b, c, d svgpath.Point) {
	a.to.CubeBezier(a.pt(b), a.pt(c), a.pt(d))
}
func (a fixedAdder) Stop(closeLoop bool) { a.to.Stop(closeLoop) }

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgstyle.Round:     rasterx.Round,
		svgstyle.Bevel:     rasterx.Bevel,
		svgstyle.Miter:     rasterx.Miter,
		svgstyle.MiterClip: rasterx.MiterClip,
		svgstyle.Arc:       rasterx.Arc,
		svgstyle.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgstyle.NilCap:       nil,
		svgstyle.ButtCap:      rasterx.ButtCap,
		svgstyle.SquareCap:    rasterx.SquareCap,
		svgstyle.RoundCap:     rasterx.RoundCap,
		svgstyle.CubicCap:     rasterx.CubicCap,
		svgstyle.QuadraticCap: rasterx.QuadraticCap,
	}

	gapToFunc = [...]rasterx.GapFunc{
		svgstyle.NilGap:       rasterx.FlatGap,
		svgstyle.FlatGap:      rasterx.FlatGap,
		svgstyle.RoundGap:     rasterx.RoundGap,
		svgstyle.CubicGap:     rasterx.CubicGap,
		svgstyle.QuadraticGap: rasterx.QuadraticGap,
	}
)

// RenderPath fills then strokes path.
func (rd *Renderer) RenderPath(ctx *svgdraw.DrawingCtx, path svgpath.Path, bounds rect.Rect) {
	if rd.surface == nil {
		return
	}
	st := ctx.State()
	adder := fixedAdder{m: st.Affine}

	if src := rd.paintSource(ctx, ctx.FillPaint(), st.FillOpacity.Value, bounds); src != nil {
		rd.filler.Clear()
		rd.filler.SetWinding(st.FillRule.Value == svgstyle.NonZero)
		rd.filler.SetColor(src)
		adder.to = rd.filler
		path.AddTo(adder)
		rd.filler.Draw()
	}

	scale := svgpath.ExpansionFactor(st.Affine)
	width := ctx.StrokeWidth() * scale
	if width <= 0 {
		return
	}
	src := rd.paintSource(ctx, ctx.StrokePaint(), st.StrokeOpacity.Value, bounds)
	if src == nil {
		return
	}
	dashes, offset := ctx.Dashes()
	for i := range dashes {
		dashes[i] *= scale
	}
	trail := capToFunc[st.Cap.Value]
	lead := trail
	if st.LeadCap.Value != svgstyle.NilCap {
		lead = capToFunc[st.LeadCap.Value]
	}
	rd.dasher.Clear()
	rd.dasher.SetStroke(
		fixed.Int26_6(width*64), fixed.Int26_6(st.MiterLimit.Value*64), lead, trail,
		gapToFunc[st.Gap.Value], joinToJoin[st.Join.Value], dashes, offset*scale,
	)
	rd.dasher.SetColor(src)
	adder.to = rd.dasher
	path.AddTo(adder)
	rd.dasher.Draw()
}

// RenderText draws the outlines of the glyphs, as a path.
func (rd *Renderer) RenderText(ctx *svgdraw.DrawingCtx, line *svgtext.Line, x, y float64) {
	path := line.Path(x, y)
	if bounds, ok := path.Extents(); ok {
		rd.RenderPath(ctx, path, bounds)
	}
}

// RenderSurface draws img, scaled to the user space rectangle (x, y, w, h).
func (rd *Renderer) RenderSurface(ctx *svgdraw.DrawingCtx, img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if rd.surface == nil || b.Empty() {
		return
	}
	m := matrix.Translate(-float64(b.Min.X), -float64(b.Min.Y)).
		Mul(matrix.Scale(w/float64(b.Dx()), h/float64(b.Dy()))).
		Mul(matrix.Translate(x, y)).
		Mul(ctx.State().Affine)
	s2d := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
	var opts draw.Options
	if rd.clip != nil {
		opts.DstMask = rd.clip
	}
	draw.BiLinear.Transform(rd.surface, s2d, img, b, draw.Over, &opts)
}

// AddClippingRect restricts the current clip to a user space rectangle.
func (rd *Renderer) AddClippingRect(ctx *svgdraw.DrawingCtx, x, y, w, h float64) {
	if rd.surface == nil {
		return
	}
	var path svgpath.Path
	path.AddRect(x, y, w, h)
	mask := image.NewAlpha(rd.bounds())
	fillMask(mask, path.Transform(ctx.State().Affine))
	rd.clip = intersect(rd.clip, mask)
}

// ---------------------------------- paint ----------------------------------

// paintSource resolves p to a color source accepted by rasterx
// scanners, or nil for nothing to paint. The current clip is
// applied to the source.
func (rd *Renderer) paintSource(ctx *svgdraw.DrawingCtx, p svgdraw.Paint, opacity float64, bounds rect.Rect) interface{} {
	var src interface{}
	switch p := p.(type) {
	case svgdraw.SolidPaint:
		c := color.NRGBA(p)
		c.A = uint8(float64(c.A)*opacity + 0.5)
		src = c
	case *svgdraw.Gradient:
		src = gradientSource(p, bounds, ctx.State().Affine, opacity)
	case *svgdraw.Pattern:
		src = rd.patternSource(ctx, p, bounds, opacity)
	}
	if src == nil || rd.clip == nil {
		return src
	}
	return clipSource(src, rd.clip)
}

func toMatrix2D(m matrix.Matrix) rasterx.Matrix2D {
	return rasterx.Matrix2D{A: m[0], B: m[1], C: m[2], D: m[3], E: m[4], F: m[5]}
}

// gradientSource uses the objectBoundingBox mode of rasterx with a unit
// box, so that the gradient to device transform is fully supported.
func gradientSource(g *svgdraw.Gradient, bounds rect.Rect, affine matrix.Matrix, opacity float64) interface{} {
	if len(g.Stops) == 0 {
		return nil
	}
	last := g.Stops[len(g.Stops)-1]
	if len(g.Stops) == 1 || g.Radial && g.Points[4] <= 0 ||
		!g.Radial && g.Points[0] == g.Points[2] && g.Points[1] == g.Points[3] {
		// degenerate gradients use the last stop
		return rasterx.ApplyOpacity(opaque(last.Color), float64(last.Color.A)/0xFF*opacity)
	}
	toDevice := g.UserMatrix(bounds).Mul(affine)
	if _, ok := svgpath.Invert(toDevice); !ok {
		return nil
	}
	out := rasterx.Gradient{
		Points:   g.Points,
		Matrix:   toMatrix2D(toDevice),
		Spread:   rasterx.SpreadMethod(g.Spread),
		Units:    rasterx.ObjectBoundingBox,
		IsRadial: g.Radial,
	}
	out.Bounds.W, out.Bounds.H = 1, 1
	out.Stops = make([]rasterx.GradStop, len(g.Stops))
	for i, s := range g.Stops {
		out.Stops[i] = rasterx.GradStop{
			StopColor: opaque(s.Color),
			Offset:    s.Offset,
			Opacity:   float64(s.Color.A) / 0xFF,
		}
	}
	return out.GetColorFunction(opacity)
}

func opaque(c color.NRGBA) color.NRGBA {
	c.A = 0xFF
	return c
}

// patternSource renders one tile of the pattern and repeats it.
func (rd *Renderer) patternSource(ctx *svgdraw.DrawingCtx, p *svgdraw.Pattern, bounds rect.Rect, opacity float64) interface{} {
	tile, content := p.Tile(bounds)
	tw, th := tile.URx-tile.LLx, tile.URy-tile.LLy
	if !(tw > 0 && th > 0) {
		return nil
	}
	toDevice := p.Transform.Mul(ctx.State().Affine)
	inv, ok := svgpath.Invert(toDevice)
	if !ok {
		return nil
	}
	scale := svgpath.ExpansionFactor(toDevice)
	pw := min(max(int(math.Ceil(tw*scale)), 1), maxPatternTile)
	ph := min(max(int(math.Ceil(th*scale)), 1), maxPatternTile)
	sx, sy := float64(pw)/tw, float64(ph)/th

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	ctx.DrawPattern(p, rd.child(img), content.Mul(matrix.Translate(-tile.LLx, -tile.LLy)).Mul(matrix.Scale(sx, sy)))

	alpha := uint32(opacity*0xFFFF + 0.5)
	return rasterx.ColorFunc(func(x, y int) color.Color {
		px, py := svgpath.Apply(inv, float64(x)+0.5, float64(y)+0.5)
		u := math.Mod(px-tile.LLx, tw)
		if u < 0 {
			u += tw
		}
		v := math.Mod(py-tile.LLy, th)
		if v < 0 {
			v += th
		}
		c := img.RGBAAt(min(int(u*sx), pw-1), min(int(v*sy), ph-1))
		if alpha >= 0xFFFF {
			return c
		}
		return scaleColor(c, alpha)
	})
}

// scaleColor multiplies the premultiplied c by f / 0xFFFF.
func scaleColor(c color.Color, f uint32) color.RGBA64 {
	r, g, b, a := c.RGBA()
	return color.RGBA64{uint16(r * f / 0xFFFF), uint16(g * f / 0xFFFF), uint16(b * f / 0xFFFF), uint16(a * f / 0xFFFF)}
}

// clipSource multiplies the alpha of src by the clip coverage.
func clipSource(src interface{}, clip *image.Alpha) rasterx.ColorFunc {
	var f rasterx.ColorFunc
	switch s := src.(type) {
	case rasterx.ColorFunc:
		f = s
	case color.Color:
		f = func(int, int) color.Color { return s }
	default:
		return func(int, int) color.Color { return color.Transparent }
	}
	return func(x, y int) color.Color {
		m := clip.AlphaAt(x, y).A
		switch m {
		case 0:
			return color.Transparent
		case 0xFF:
			return f(x, y)
		}
		return scaleColor(f(x, y), uint32(m)*0x101)
	}
}
