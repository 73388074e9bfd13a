package svgraster

import (
	"image"
	"image/draw"

	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgtext"
	"golang.org/x/image/vector"
	"seehuhn.de/go/geom/rect"
)

// vectorAdder feeds a device space path to a vector.Rasterizer.
type vectorAdder struct{ z *vector.Rasterizer }

func (a vectorAdder) Start(p svgpath.Point) { a.z.MoveTo(float32(p.X), float32(p.Y)) }
func (a vectorAdder) Line(b svgpath.Point)  { a.z.LineTo(float32(b.X), float32(b.Y)) }
func (a vectorAdder) QuadBezier(b, c svgpath.Point) {
	a.z.QuadTo(float32(b.X), float32(b.Y), float32(c.X), float32(c.Y))
}
func (a vectorAdder) CubeBezier(b, c, d svgpath.Point) {
	a.z.CubeTo(float32(b.X), float32(b.Y), float32(c.X), float32(c.Y), float32(d.X), float32(d.Y))
}

// Stop always closes: clip geometry is filled, never stroked.
func (a vectorAdder) Stop(bool) { a.z.ClosePath() }

// fillMask adds the coverage of the device space path to mask.
func fillMask(mask *image.Alpha, path svgpath.Path) {
	b := mask.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	path.AddTo(vectorAdder{z})
	z.Draw(mask, b, image.Opaque, image.Point{})
}

// intersect returns the product of the two masks. a may be nil,
// meaning no clip; b is modified.
func intersect(a, b *image.Alpha) *image.Alpha {
	if a == nil {
		return b
	}
	for i, v := range a.Pix {
		b.Pix[i] = uint8(uint32(v) * uint32(b.Pix[i]) / 0xFF)
	}
	return b
}

// clipRenderer rasterizes the geometry of a clip path: every shape
// is filled with full opacity, whatever its paint.
type clipRenderer struct {
	mask *image.Alpha
}

var _ svgdraw.Backend = clipRenderer{}

func (c clipRenderer) RenderPath(ctx *svgdraw.DrawingCtx, path svgpath.Path, _ rect.Rect) {
	fillMask(c.mask, path.Transform(ctx.State().Affine))
}

func (c clipRenderer) RenderText(ctx *svgdraw.DrawingCtx, line *svgtext.Line, x, y float64) {
	c.RenderPath(ctx, line.Path(x, y), rect.Rect{})
}

func (clipRenderer) RenderSurface(*svgdraw.DrawingCtx, image.Image, float64, float64, float64, float64) {
}
func (clipRenderer) PushDiscreteLayer(*svgdraw.DrawingCtx, *svgdraw.Layer)                 {}
func (clipRenderer) PopDiscreteLayer(*svgdraw.DrawingCtx, *svgdraw.Layer)                  {}
func (clipRenderer) AddClippingRect(*svgdraw.DrawingCtx, float64, float64, float64, float64) {}

// clipMask rasterizes the clip path of the layer into a new mask.
func (rd *Renderer) clipMask(ctx *svgdraw.DrawingCtx, layer *svgdraw.Layer) *image.Alpha {
	mask := image.NewAlpha(rd.bounds())
	ctx.DrawLayerClip(layer, clipRenderer{mask})
	return mask
}

// luminanceMask converts the content of a mask surface to an alpha
// mask, using the linearRGB luminance coefficients on premultiplied
// values.
func luminanceMask(img *image.RGBA) *image.Alpha {
	out := image.NewAlpha(img.Bounds())
	for i := 0; i+3 < len(img.Pix); i += 4 {
		p := img.Pix[i : i+4 : i+4]
		l := 0.2126*float64(p[0]) + 0.7152*float64(p[1]) + 0.0722*float64(p[2])
		out.Pix[i/4] = uint8(min(l+0.5, 0xFF))
	}
	return out
}

// scaledMask returns a mask uniform to opacity, restricted by m
// if not nil.
func scaledMask(m *image.Alpha, bounds image.Rectangle, opacity float64) image.Image {
	o := uint8(opacity*0xFF + 0.5)
	if m == nil {
		return image.NewUniform(image.Alpha{A: o})
	}
	if o == 0xFF {
		return m
	}
	out := image.NewAlpha(bounds)
	draw.Draw(out, bounds, m, image.Point{}, draw.Src)
	for i, v := range out.Pix {
		out.Pix[i] = uint8(uint32(v) * uint32(o) / 0xFF)
	}
	return out
}
