// Alternative implementation of PDF rendering, writing the content
// stream directly with github.com/benoitkugler/pdf.
//
// Compared to the gofpdf backend, transparency is expressed with
// graphic state dictionaries, curves are kept as Bezier segments and
// clip paths use all their shapes. Masks, filters, patterns and
// embedded images are still ignored.
package alt

import (
	"image"
	"image/color"

	"github.com/benoitkugler/pdf/contentstream"
	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
	"github.com/benoitkugler/svgrender/svgtext"
	"seehuhn.de/go/geom/rect"
)

var _ svgdraw.Backend = (*Renderer)(nil) // assert interface conformance

// Renderer writes to a content stream whose device space is the page
// space, with the origin at the top left corner.
type Renderer struct {
	pdf *contentstream.Appearance

	// cached graphic states, by opacity
	fillStates   map[float64]*model.GraphicState
	strokeStates map[float64]*model.GraphicState

	frames []float64 // opacity of the layers
}

// NewRenderer return a renderer which will
// write to the given `pdf`.
func NewRenderer(cs *contentstream.Appearance) *Renderer {
	return &Renderer{
		pdf:          cs,
		fillStates:   make(map[float64]*model.GraphicState),
		strokeStates: make(map[float64]*model.GraphicState),
		frames:       []float64{1},
	}
}

func (r *Renderer) opacity() float64 { return r.frames[len(r.frames)-1] }

// pather writes a device space path.
type pather struct {
	pdf     *contentstream.Appearance
	current svgpath.Point
}

func (p *pather) Start(a svgpath.Point) {
	p.pdf.Ops(contentstream.OpMoveTo{X: a.X, Y: a.Y})
	p.current = a
}

func (p *pather) Line(b svgpath.Point) {
	p.pdf.Ops(contentstream.OpLineTo{X: b.X, Y: b.Y})
	p.current = b
}

// QuadBezier is written as the equivalent cubic curve.
func (p *pather) QuadBezier(b, c svgpath.Point) {
	a := p.current
	p.pdf.Ops(contentstream.OpCubicTo{
		X1: a.X + 2*(b.X-a.X)/3, Y1: a.Y + 2*(b.Y-a.Y)/3,
		X2: c.X + 2*(b.X-c.X)/3, Y2: c.Y + 2*(b.Y-c.Y)/3,
		X3: c.X, Y3: c.Y,
	})
	p.current = c
}

func (p *pather) CubeBezier(b, c, d svgpath.Point) {
	p.pdf.Ops(contentstream.OpCubicTo{X1: b.X, Y1: b.Y, X2: c.X, Y2: c.Y, X3: d.X, Y3: d.Y})
	p.current = d
}

func (p *pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.Ops(contentstream.OpClosePath{})
	}
}

var (
	capStyles = [...]uint8{
		svgstyle.NilCap:       0,
		svgstyle.ButtCap:      0,
		svgstyle.RoundCap:     1,
		svgstyle.SquareCap:    2,
		svgstyle.CubicCap:     1,
		svgstyle.QuadraticCap: 1,
	}
	joinStyles = [...]uint8{
		svgstyle.Miter:     0,
		svgstyle.Round:     1,
		svgstyle.Bevel:     2,
		svgstyle.Arc:       1,
		svgstyle.MiterClip: 0,
		svgstyle.ArcClip:   1,
	}
)

// solidColor reduces a paint to a plain color. Gradients use their
// first stop.
func solidColor(p svgdraw.Paint) (color.NRGBA, bool) {
	switch p := p.(type) {
	case svgdraw.SolidPaint:
		return color.NRGBA{R: p.R, G: p.G, B: p.B, A: p.A}, true
	case *svgdraw.Gradient:
		return p.Stops[0].Color, true
	}
	return color.NRGBA{}, false
}

// setAlpha selects a graphic state with the given opacity, for
// fills or strokes.
func (r *Renderer) setAlpha(opacity float64, stroke bool) {
	cache := r.fillStates
	if stroke {
		cache = r.strokeStates
	}
	gs, ok := cache[opacity]
	if !ok {
		gs = &model.GraphicState{BM: []model.Name{"Normal"}}
		if stroke {
			gs.CA = model.ObjFloat(opacity)
		} else {
			gs.Ca = model.ObjFloat(opacity)
		}
		cache[opacity] = gs
	}
	name := r.pdf.AddExtGState(gs)
	r.pdf.Ops(contentstream.OpSetExtGState{Dict: name})
}

// RenderPath fills then strokes path.
func (r *Renderer) RenderPath(ctx *svgdraw.DrawingCtx, path svgpath.Path, _ rect.Rect) {
	st := ctx.State()
	device := path.Transform(st.Affine)

	if c, ok := solidColor(ctx.FillPaint()); ok {
		r.pdf.SetColorFill(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
		r.setAlpha(r.opacity()*st.FillOpacity.Value*float64(c.A)/0xFF, false)
		device.AddTo(&pather{pdf: r.pdf})
		if st.FillRule.Value == svgstyle.EvenOdd {
			r.pdf.Ops(contentstream.OpEOFill{})
		} else {
			r.pdf.Ops(contentstream.OpFill{})
		}
	} else if _, isPattern := ctx.FillPaint().(*svgdraw.Pattern); isPattern {
		ctx.Logger().Debug("patterns are not supported in PDF output")
	}

	scale := svgpath.ExpansionFactor(st.Affine)
	width := ctx.StrokeWidth() * scale
	if width <= 0 {
		return
	}
	c, ok := solidColor(ctx.StrokePaint())
	if !ok {
		return
	}
	dashes, offset := ctx.Dashes()
	for i := range dashes {
		dashes[i] *= scale
	}
	r.pdf.SetColorStroke(color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
	r.setAlpha(r.opacity()*st.StrokeOpacity.Value*float64(c.A)/0xFF, true)
	r.pdf.Ops(
		contentstream.OpSetDash{Dash: model.DashPattern{Array: dashes, Phase: offset * scale}},
		contentstream.OpSetLineWidth{W: width},
		contentstream.OpSetLineCap{Style: capStyles[st.Cap.Value]},
		contentstream.OpSetLineJoin{Style: joinStyles[st.Join.Value]},
		contentstream.OpSetMiterLimit{Limit: st.MiterLimit.Value},
	)
	device.AddTo(&pather{pdf: r.pdf})
	r.pdf.Ops(contentstream.OpStroke{})
}

// RenderText draws the outlines of the glyphs.
func (r *Renderer) RenderText(ctx *svgdraw.DrawingCtx, line *svgtext.Line, x, y float64) {
	path := line.Path(x, y)
	if bounds, ok := path.Extents(); ok {
		r.RenderPath(ctx, path, bounds)
	}
}

func (r *Renderer) RenderSurface(ctx *svgdraw.DrawingCtx, _ image.Image, _, _, _, _ float64) {
	ctx.Logger().Debug("images are not supported in PDF output")
}

// PushDiscreteLayer saves the graphic state and installs the user
// space clip path of the layer. Group opacity is applied to each
// element.
func (r *Renderer) PushDiscreteLayer(ctx *svgdraw.DrawingCtx, layer *svgdraw.Layer) {
	r.frames = append(r.frames, r.opacity()*layer.Opacity)
	r.pdf.Ops(contentstream.OpSave{})
	if layer.Mask != nil || layer.Filter != nil || layer.CompOp != svgstyle.CompSrcOver {
		ctx.Logger().Debug("unsupported layer effect in PDF output")
	}
	if layer.LateClip != nil {
		ctx.Logger().Debug("objectBoundingBox clip paths are not supported in PDF output")
	}
	if layer.Clip == nil {
		return
	}
	rec := clipWriter{pather: pather{pdf: r.pdf}}
	ctx.DrawLayerClip(layer, &rec)
	if rec.shapes == 0 {
		// an empty clip path hides the content
		r.pdf.Ops(contentstream.OpMoveTo{}, contentstream.OpClosePath{})
	}
	r.pdf.Ops(contentstream.OpClip{}, contentstream.OpEndPath{})
}

// PopDiscreteLayer restores the graphic state, ending the clips
// of the layer.
func (r *Renderer) PopDiscreteLayer(*svgdraw.DrawingCtx, *svgdraw.Layer) {
	r.pdf.Ops(contentstream.OpRestore{})
	r.frames = r.frames[:len(r.frames)-1]
}

// AddClippingRect clips the current layer, until it is popped.
func (r *Renderer) AddClippingRect(ctx *svgdraw.DrawingCtx, x, y, w, h float64) {
	var path svgpath.Path
	path.AddRect(x, y, w, h)
	path.Transform(ctx.State().Affine).AddTo(&pather{pdf: r.pdf})
	r.pdf.Ops(contentstream.OpClip{}, contentstream.OpEndPath{})
}

// clipWriter writes the outlines of the shapes of a clip path as
// one path, whose union is the clipping region.
type clipWriter struct {
	pather
	shapes int
}

func (c *clipWriter) RenderPath(ctx *svgdraw.DrawingCtx, path svgpath.Path, _ rect.Rect) {
	c.shapes++
	path.Transform(ctx.State().Affine).AddTo(&c.pather)
}

func (c *clipWriter) RenderText(ctx *svgdraw.DrawingCtx, line *svgtext.Line, x, y float64) {
	c.RenderPath(ctx, line.Path(x, y), rect.Rect{})
}

func (*clipWriter) RenderSurface(*svgdraw.DrawingCtx, image.Image, float64, float64, float64, float64) {
}
func (*clipWriter) PushDiscreteLayer(*svgdraw.DrawingCtx, *svgdraw.Layer)                 {}
func (*clipWriter) PopDiscreteLayer(*svgdraw.DrawingCtx, *svgdraw.Layer)                  {}
func (*clipWriter) AddClippingRect(*svgdraw.DrawingCtx, float64, float64, float64, float64) {}
