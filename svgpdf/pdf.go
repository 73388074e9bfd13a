// Implements a PDF backend to render SVG images,
// by wrapping github.com/jung-kurt/gofpdf.
//
// The output is vector based, at the price of a reduced fidelity:
// masks, filters and composite operators are ignored, group opacity
// is applied to each element, gradients only use their first and last
// stops, and patterns are not drawn.
package svgpdf

import (
	"bytes"
	"image"
	"image/png"
	"math"

	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
	"github.com/benoitkugler/svgrender/svgtext"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

var _ svgdraw.Backend = (*Renderer)(nil) // assert interface conformance

// Renderer draws on the current page of a PDF document, whose
// unit must be the point. The device space is the page space,
// with the origin at the top left corner.
type Renderer struct {
	pdf    *gofpdf.Fpdf
	frames []frame
}

// frame is the graphic state of a discrete layer.
type frame struct {
	opacity float64
	clips   int // number of nested clips to end
}

// NewRenderer return a renderer which will
// write to the given `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	return &Renderer{pdf: pdf, frames: []frame{{opacity: 1}}}
}

func (r *Renderer) current() *frame { return &r.frames[len(r.frames)-1] }

// pather writes a device space path to the PDF content stream.
type pather struct {
	pdf *gofpdf.Fpdf
}

func (p pather) Start(a svgpath.Point)        { p.pdf.MoveTo(a.X, a.Y) }
func (p pather) Line(b svgpath.Point)         { p.pdf.LineTo(b.X, b.Y) }
func (p pather) QuadBezier(b, c svgpath.Point) { p.pdf.CurveTo(b.X, b.Y, c.X, c.Y) }
func (p pather) CubeBezier(b, c, d svgpath.Point) {
	p.pdf.CurveBezierCubicTo(b.X, b.Y, c.X, c.Y, d.X, d.Y)
}

func (p pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

var (
	capToStyle = [...]string{
		svgstyle.NilCap:       "butt",
		svgstyle.ButtCap:      "butt",
		svgstyle.SquareCap:    "square",
		svgstyle.RoundCap:     "round",
		svgstyle.CubicCap:     "round",
		svgstyle.QuadraticCap: "round",
	}
	joinToStyle = [...]string{
		svgstyle.Miter:     "miter",
		svgstyle.Round:     "round",
		svgstyle.Bevel:     "bevel",
		svgstyle.Arc:       "round",
		svgstyle.MiterClip: "miter",
		svgstyle.ArcClip:   "round",
	}
)

// RenderPath fills then strokes path.
func (r *Renderer) RenderPath(ctx *svgdraw.DrawingCtx, path svgpath.Path, bounds rect.Rect) {
	st := ctx.State()
	device := path.Transform(st.Affine)
	opacity := r.current().opacity

	switch p := ctx.FillPaint().(type) {
	case svgdraw.SolidPaint:
		r.pdf.SetFillColor(int(p.R), int(p.G), int(p.B))
		r.pdf.SetAlpha(opacity*st.FillOpacity.Value*float64(p.A)/0xFF, "Normal")
		device.AddTo(pather{r.pdf})
		if st.FillRule.Value == svgstyle.EvenOdd {
			r.pdf.DrawPath("F*")
		} else {
			r.pdf.DrawPath("F")
		}
	case *svgdraw.Gradient:
		r.pdf.SetAlpha(opacity*st.FillOpacity.Value, "Normal")
		r.fillGradient(p, device, p.UserMatrix(bounds).Mul(st.Affine))
	case *svgdraw.Pattern:
		ctx.Logger().Debug("patterns are not supported in PDF output")
	}

	scale := svgpath.ExpansionFactor(st.Affine)
	width := ctx.StrokeWidth() * scale
	if width <= 0 {
		return
	}
	var c [4]uint8
	switch p := ctx.StrokePaint().(type) {
	case svgdraw.SolidPaint:
		c = [4]uint8{p.R, p.G, p.B, p.A}
	case *svgdraw.Gradient:
		// reduced to its first stop
		s := p.Stops[0].Color
		c = [4]uint8{s.R, s.G, s.B, s.A}
	default:
		return
	}
	r.pdf.SetDrawColor(int(c[0]), int(c[1]), int(c[2]))
	r.pdf.SetAlpha(opacity*st.StrokeOpacity.Value*float64(c[3])/0xFF, "Normal")
	r.pdf.SetLineWidth(width)
	r.pdf.SetLineCapStyle(capToStyle[st.Cap.Value])
	r.pdf.SetLineJoinStyle(joinToStyle[st.Join.Value])
	dashes, offset := ctx.Dashes()
	for i := range dashes {
		dashes[i] *= scale
	}
	r.pdf.SetDashPattern(dashes, offset*scale)
	device.AddTo(pather{r.pdf})
	r.pdf.DrawPath("D")
}

// fillGradient paints the gradient, clipped to the (device) path.
// toDevice maps the gradient space to the device space.
func (r *Renderer) fillGradient(g *svgdraw.Gradient, device svgpath.Path, toDevice matrix.Matrix) {
	ext, ok := device.Extents()
	w, h := ext.URx-ext.LLx, ext.URy-ext.LLy
	if !ok || w <= 0 || h <= 0 {
		return
	}
	// gofpdf gradients use coordinates normalized to the
	// painted rectangle, with the origin at the bottom left
	normalize := func(x, y float64) (float64, float64) {
		x, y = svgpath.Apply(toDevice, x, y)
		return (x - ext.LLx) / w, 1 - (y - ext.LLy) / h
	}
	c1, c2 := g.Stops[0].Color, g.Stops[len(g.Stops)-1].Color

	r.pdf.ClipPolygon(polygon(device), false)
	if g.Radial {
		cx, cy := normalize(g.Points[0], g.Points[1])
		fx, fy := normalize(g.Points[2], g.Points[3])
		radius := g.Points[4] * svgpath.ExpansionFactor(toDevice) / math.Sqrt(w*h)
		r.pdf.RadialGradient(ext.LLx, ext.LLy, w, h, int(c1.R), int(c1.G), int(c1.B), int(c2.R), int(c2.G), int(c2.B), fx, fy, cx, cy, radius)
	} else {
		x1, y1 := normalize(g.Points[0], g.Points[1])
		x2, y2 := normalize(g.Points[2], g.Points[3])
		r.pdf.LinearGradient(ext.LLx, ext.LLy, w, h, int(c1.R), int(c1.G), int(c1.B), int(c2.R), int(c2.G), int(c2.B), x1, y1, x2, y2)
	}
	r.pdf.ClipEnd()
}

// RenderText draws the outlines of the glyphs.
func (r *Renderer) RenderText(ctx *svgdraw.DrawingCtx, line *svgtext.Line, x, y float64) {
	path := line.Path(x, y)
	if bounds, ok := path.Extents(); ok {
		r.RenderPath(ctx, path, bounds)
	}
}

// RenderSurface embeds img as a PNG image.
func (r *Renderer) RenderSurface(ctx *svgdraw.DrawingCtx, img image.Image, x, y, w, h float64) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		ctx.Logger().Debug("encoding image", "err", err)
		return
	}
	name := uuid.NewString()
	opts := gofpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}
	r.pdf.RegisterImageOptionsReader(name, opts, &buf)

	// the image is drawn in the unit square
	m := matrix.Scale(w, h).Mul(matrix.Translate(x, y)).Mul(ctx.State().Affine)
	r.pdf.TransformBegin()
	r.pdf.Transform(r.pageMatrix(m))
	r.pdf.ImageOptions(name, 0, 0, 1, 1, false, opts, 0, "")
	r.pdf.TransformEnd()
}

// pageMatrix expresses m, which acts on the page space, in the
// PDF space, whose y axis points upward.
func (r *Renderer) pageMatrix(m matrix.Matrix) gofpdf.TransformMatrix {
	_, H := r.pdf.GetPageSize()
	return gofpdf.TransformMatrix{
		A: m[0], B: -m[1], C: -m[2], D: m[3],
		E: m[2]*H + m[4],
		F: H - m[3]*H - m[5],
	}
}

// PushDiscreteLayer only supports opacity and user space clip paths.
func (r *Renderer) PushDiscreteLayer(ctx *svgdraw.DrawingCtx, layer *svgdraw.Layer) {
	r.frames = append(r.frames, frame{opacity: r.current().opacity * layer.Opacity})
	if layer.Mask != nil || layer.Filter != nil || layer.CompOp != svgstyle.CompSrcOver {
		ctx.Logger().Debug("unsupported layer effect in PDF output")
	}
	if layer.LateClip != nil {
		ctx.Logger().Debug("objectBoundingBox clip paths are not supported in PDF output")
	}
	if layer.Clip == nil {
		return
	}
	var rec clipRecorder
	b := ctx.DrawLayerClip(layer, &rec)
	switch {
	case len(rec.polygons) == 1:
		r.pdf.ClipPolygon(rec.polygons[0], false)
	default:
		// several shapes: clip to their extents
		ext, ok := b.Device()
		if !ok {
			ext = rect.Rect{}
		}
		r.pdf.ClipRect(ext.LLx, ext.LLy, ext.URx-ext.LLx, ext.URy-ext.LLy, false)
	}
	r.current().clips++
}

// PopDiscreteLayer ends the clips of the layer.
func (r *Renderer) PopDiscreteLayer(*svgdraw.DrawingCtx, *svgdraw.Layer) {
	for range r.current().clips {
		r.pdf.ClipEnd()
	}
	r.frames = r.frames[:len(r.frames)-1]
}

// AddClippingRect clips the current layer.
func (r *Renderer) AddClippingRect(ctx *svgdraw.DrawingCtx, x, y, w, h float64) {
	var path svgpath.Path
	path.AddRect(x, y, w, h)
	r.pdf.ClipPolygon(polygon(path.Transform(ctx.State().Affine)), false)
	r.current().clips++
}

// clipRecorder collects the device space outlines of a clip path.
type clipRecorder struct {
	polygons [][]gofpdf.PointType
}

func (c *clipRecorder) RenderPath(ctx *svgdraw.DrawingCtx, path svgpath.Path, _ rect.Rect) {
	c.polygons = append(c.polygons, polygon(path.Transform(ctx.State().Affine)))
}

func (c *clipRecorder) RenderText(ctx *svgdraw.DrawingCtx, line *svgtext.Line, x, y float64) {
	c.RenderPath(ctx, line.Path(x, y), rect.Rect{})
}

func (*clipRecorder) RenderSurface(*svgdraw.DrawingCtx, image.Image, float64, float64, float64, float64) {
}
func (*clipRecorder) PushDiscreteLayer(*svgdraw.DrawingCtx, *svgdraw.Layer)                 {}
func (*clipRecorder) PopDiscreteLayer(*svgdraw.DrawingCtx, *svgdraw.Layer)                  {}
func (*clipRecorder) AddClippingRect(*svgdraw.DrawingCtx, float64, float64, float64, float64) {}
