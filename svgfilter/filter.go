// Package svgfilter implements the SVG filter primitives, applied
// on the surface of a discrete layer when it is composited.
//
// Surfaces are premultiplied *image.RGBA in device space. Every
// intermediate result has the bounds of the source surface, and is
// transparent outside of its primitive subregion.
package svgfilter

import (
	"image"
	"io"
	"math"

	"github.com/benoitkugler/svgrender/svgbbox"
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
	"github.com/charmbracelet/log"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Filter is a filter element applied to some content.
type Filter struct {
	Doc  *svgdoc.Document
	Node *svgdoc.Node // of kind svgdoc.KindFilter

	// Bbox is the extents of the filtered content. Its affine maps
	// the user space of the content to the device space.
	Bbox     svgbbox.Bbox
	Resolver svgstyle.Resolver
	Logger   *log.Logger // optional
}

// run stores the state of one application.
type run struct {
	f      *Filter
	attrs  *svgdoc.Filter
	affine matrix.Matrix
	bbox   rect.Rect

	userRegion rect.Rect       // in user space
	region     image.Rectangle // in device space

	source, background *image.RGBA
	results            map[string]*image.RGBA
	last               *image.RGBA
}

// Apply returns the result of the filter on source, a new surface
// with the same bounds. background is a snapshot of the surface
// below the content, used by BackgroundImage, and may be nil.
func (f Filter) Apply(source, background *image.RGBA) *image.RGBA {
	if f.Logger == nil {
		f.Logger = log.New(io.Discard)
	}
	r := &run{
		f:          &f,
		attrs:      f.Node.Payload.(*svgdoc.Filter),
		affine:     f.Bbox.Affine,
		bbox:       f.Bbox.Rect,
		source:     source,
		background: background,
		results:    make(map[string]*image.RGBA),
	}
	out := image.NewRGBA(source.Bounds())
	if r.attrs.Units == svgdoc.ObjectBoundingBox && f.Bbox.Virgin {
		// empty content: empty region
		return out
	}
	a := r.attrs
	r.userRegion = r.userRect(a.Units, a.X, a.Y, a.Width, a.Height)
	r.region = r.deviceRect(r.userRegion).Intersect(source.Bounds())
	if r.region.Empty() {
		return out
	}

	doc := f.Doc
	for c := doc.FirstChild(f.Node); c != nil; c = doc.NextSibling(c) {
		p, ok := c.Payload.(svgdoc.FilterPrimitive)
		if !ok {
			continue
		}
		res := r.apply(c, p)
		if res == nil {
			f.Logger.Debug("unsupported filter primitive", "tag", c.Tag)
			continue
		}
		if name := p.Common().Result; name != "" {
			r.results[name] = res
		}
		r.last = res
	}
	if r.last == nil {
		// no primitive: the element is not rendered
		return out
	}
	copyRect(out, r.last, r.region)
	return out
}

func (r *run) apply(n *svgdoc.Node, p svgdoc.FilterPrimitive) *image.RGBA {
	sub := r.subregion(p.Common())
	switch p := p.(type) {
	case *svgdoc.GaussianBlur:
		sx, sy := r.primitiveScale(p.StdDevX, p.StdDevY)
		sx *= math.Hypot(r.affine[0], r.affine[1])
		sy *= math.Hypot(r.affine[2], r.affine[3])
		return gaussianBlur(r.input(p.In), sub, sx, sy)
	case *svgdoc.Offset:
		dx, dy := r.primitiveScale(p.DX, p.DY)
		// linear part only
		ddx := dx*r.affine[0] + dy*r.affine[2]
		ddy := dx*r.affine[1] + dy*r.affine[3]
		return offset(r.input(p.In), sub, ddx, ddy)
	case *svgdoc.Flood:
		st := &n.State
		c := st.FloodColor.Value.Resolve(st.CurrentColor.Value)
		c.A = uint8(float64(c.A)*st.FloodOpacity.Value + 0.5)
		return flood(r.source.Bounds(), sub, c)
	case *svgdoc.ColorMatrix:
		m, ok := colorMatrixFor(p.Type, p.Values)
		if !ok {
			r.f.Logger.Debug("invalid feColorMatrix values", "values", p.Values)
		}
		return applyColorMatrix(r.input(p.In), sub, m)
	case *svgdoc.Merge:
		var inputs []*image.RGBA
		for c := r.f.Doc.FirstChild(n); c != nil; c = r.f.Doc.NextSibling(c) {
			if mn, ok := c.Payload.(*svgdoc.MergeNode); ok {
				inputs = append(inputs, r.input(mn.In))
			}
		}
		return merge(r.source.Bounds(), sub, inputs)
	case *svgdoc.Composite:
		return composite(r.input(p.In), r.input(p.In2), sub, p.Operator, [4]float64{p.K1, p.K2, p.K3, p.K4})
	case *svgdoc.Blend:
		return blend(r.input(p.In), r.input(p.In2), sub, p.Mode)
	}
	return nil
}

// input returns the surface named by in.
func (r *run) input(in string) *image.RGBA {
	switch in {
	case svgdoc.SourceGraphic:
		return r.source
	case svgdoc.SourceAlpha:
		return alphaOnly(r.source)
	case svgdoc.BackgroundImage:
		if r.background == nil {
			return image.NewRGBA(r.source.Bounds())
		}
		return r.background
	case svgdoc.BackgroundAlpha:
		if r.background == nil {
			return image.NewRGBA(r.source.Bounds())
		}
		return alphaOnly(r.background)
	case svgdoc.FillPaint, svgdoc.StrokePaint:
		return image.NewRGBA(r.source.Bounds())
	}
	if res, ok := r.results[in]; ok {
		return res
	}
	if in != "" {
		r.f.Logger.Debug("unknown filter input", "in", in)
	}
	// default input
	if r.last != nil {
		return r.last
	}
	return r.source
}

// primitiveScale converts lengths given in the primitive units to
// the user space.
func (r *run) primitiveScale(x, y float64) (float64, float64) {
	if r.attrs.PrimitiveUnits == svgdoc.ObjectBoundingBox {
		return x * (r.bbox.URx - r.bbox.LLx), y * (r.bbox.URy - r.bbox.LLy)
	}
	return x, y
}

func (r *run) userRect(units svgdoc.Units, x, y, w, h svgstyle.Length) rect.Rect {
	res := r.f.Resolver
	var x0, y0, x1, y1 float64
	if units == svgdoc.ObjectBoundingBox {
		bw, bh := r.bbox.URx-r.bbox.LLx, r.bbox.URy-r.bbox.LLy
		x0 = r.bbox.LLx + x.ResolveBox(res, svgstyle.Horizontal, bw)
		y0 = r.bbox.LLy + y.ResolveBox(res, svgstyle.Vertical, bh)
		x1 = x0 + w.ResolveBox(res, svgstyle.Horizontal, bw)
		y1 = y0 + h.ResolveBox(res, svgstyle.Vertical, bh)
	} else {
		x0, y0 = x.Resolve(res, svgstyle.Horizontal), y.Resolve(res, svgstyle.Vertical)
		x1 = x0 + w.Resolve(res, svgstyle.Horizontal)
		y1 = y0 + h.Resolve(res, svgstyle.Vertical)
	}
	return rect.Rect{LLx: x0, LLy: y0, URx: x1, URy: y1}
}

// subregion returns the device rectangle of a primitive. Missing
// attributes default to the filter region.
func (r *run) subregion(p *svgdoc.Primitive) image.Rectangle {
	res := r.f.Resolver
	obb := r.attrs.PrimitiveUnits == svgdoc.ObjectBoundingBox
	bw, bh := r.bbox.URx-r.bbox.LLx, r.bbox.URy-r.bbox.LLy
	resolve := func(l svgstyle.Length, axis svgstyle.Axis, box float64) float64 {
		if obb {
			return l.ResolveBox(res, axis, box)
		}
		return l.Resolve(res, axis)
	}

	u := r.userRegion
	if p.X.Set {
		x := resolve(p.X.Value, svgstyle.Horizontal, bw)
		if obb {
			x += r.bbox.LLx
		}
		u.URx, u.LLx = u.URx+x-u.LLx, x
	}
	if p.Y.Set {
		y := resolve(p.Y.Value, svgstyle.Vertical, bh)
		if obb {
			y += r.bbox.LLy
		}
		u.URy, u.LLy = u.URy+y-u.LLy, y
	}
	if p.Width.Set {
		u.URx = u.LLx + resolve(p.Width.Value, svgstyle.Horizontal, bw)
	}
	if p.Height.Set {
		u.URy = u.LLy + resolve(p.Height.Value, svgstyle.Vertical, bh)
	}
	return r.deviceRect(u).Intersect(r.region)
}

// deviceRect returns the pixels covered by the user space rectangle.
func (r *run) deviceRect(u rect.Rect) image.Rectangle {
	if !(u.URx > u.LLx && u.URy > u.LLy) {
		return image.Rectangle{}
	}
	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{u.LLx, u.LLy}, {u.URx, u.LLy}, {u.LLx, u.URy}, {u.URx, u.URy}} {
		x, y := svgpath.Apply(r.affine, c[0], c[1])
		xMin, xMax = min(xMin, x), max(xMax, x)
		yMin, yMax = min(yMin, y), max(yMax, y)
	}
	return image.Rect(int(math.Floor(xMin)), int(math.Floor(yMin)), int(math.Ceil(xMax)), int(math.Ceil(yMax)))
}
