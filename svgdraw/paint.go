package svgdraw

import (
	"image/color"

	"github.com/benoitkugler/svgrender/svgbbox"
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgstyle"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Paint is a resolved paint server: nil (nothing to paint),
// SolidPaint, *Gradient or *Pattern.
type Paint interface {
	isPaint()
}

func (SolidPaint) isPaint() {}
func (*Gradient) isPaint()  {}
func (*Pattern) isPaint()   {}

// SolidPaint is a plain color.
type SolidPaint color.NRGBA

// GradientStop is a resolved gradient stop, whose color
// includes the stop opacity.
type GradientStop struct {
	Offset float64
	Color  color.NRGBA
}

// Gradient is a resolved linear or radial gradient. Its
// coordinates are fractions of the bounding box of the painted
// object for ObjectBoundingBox units, user units otherwise.
type Gradient struct {
	Radial bool
	// X1, Y1, X2, Y2 for linear gradients;
	// CX, CY, FX, FY, R for radial ones.
	Points    [5]float64
	Units     svgdoc.Units
	Transform matrix.Matrix // gradientTransform
	Spread    svgdoc.SpreadMethod
	Stops     []GradientStop // at least two
}

// UserMatrix returns the transform from the gradient
// coordinates to the user space, for an object whose
// extents are bounds.
func (g *Gradient) UserMatrix(bounds rect.Rect) matrix.Matrix {
	if g.Units == svgdoc.ObjectBoundingBox {
		return g.Transform.Mul(bboxMatrix(svgbbox.FromRect(matrix.Identity, bounds)))
	}
	return g.Transform
}

// Pattern is a resolved pattern.
type Pattern struct {
	// Content is the pattern element whose children
	// are the content of the tile.
	Content *svgdoc.Node

	// fractions of the bounding box for ObjectBoundingBox units
	X, Y, Width, Height float64
	Units               svgdoc.Units
	ContentUnits        svgdoc.Units
	Transform           matrix.Matrix // patternTransform
	ViewBox             svgstyle.Field[svgdoc.ViewBox]
	AspectRatio         svgdoc.AspectRatio
}

// Tile returns the tile rectangle in the pattern space, and the
// transform from the content coordinates to the pattern space,
// for an object whose extents are bounds. The pattern space is
// mapped to the user space by Transform.
func (p *Pattern) Tile(bounds rect.Rect) (tile rect.Rect, content matrix.Matrix) {
	x, y, w, h := p.X, p.Y, p.Width, p.Height
	bw, bh := bounds.URx-bounds.LLx, bounds.URy-bounds.LLy
	if p.Units == svgdoc.ObjectBoundingBox {
		x, y = bounds.LLx+x*bw, bounds.LLy+y*bh
		w, h = w*bw, h*bh
	}
	tile = rect.Rect{LLx: x, LLy: y, URx: x + w, URy: y + h}
	switch {
	case p.ViewBox.Set && !isDegenerate(p.ViewBox.Value.W, p.ViewBox.Value.H):
		content = p.AspectRatio.Fit(p.ViewBox.Value, x, y, w, h)
	case p.ContentUnits == svgdoc.ObjectBoundingBox:
		content = matrix.Scale(bw, bh).Mul(matrix.Translate(bounds.LLx, bounds.LLy))
	default:
		content = matrix.Identity
	}
	return tile, content
}

// FillPaint resolves the fill of the current state.
func (ctx *DrawingCtx) FillPaint() Paint { return ctx.ResolvePaint(ctx.State().Fill.Value) }

// StrokePaint resolves the stroke of the current state.
func (ctx *DrawingCtx) StrokePaint() Paint { return ctx.ResolvePaint(ctx.State().Stroke.Value) }

// ResolvePaint resolves ps in the current state: references are
// followed through their 'href' chain, and missing or invalid
// references are replaced by the fallback color, if any.
func (ctx *DrawingCtx) ResolvePaint(ps *svgstyle.PaintServer) Paint {
	if ps == nil {
		return nil
	}
	current := ctx.State().CurrentColor.Value
	if ps.Kind == svgstyle.PaintSolid {
		return SolidPaint(ps.Color.Resolve(current))
	}
	n := ctx.acquireKind(ps.IRI, svgdoc.KindLinearGradient, svgdoc.KindRadialGradient, svgdoc.KindPattern)
	if n == nil {
		if ps.Fallback != nil {
			return SolidPaint(ps.Fallback.Color.Resolve(current))
		}
		return nil
	}
	defer ctx.Release(n)
	if n.Kind == svgdoc.KindPattern {
		if p := ctx.resolvePattern(n); p != nil {
			return p
		}
		return nil
	}
	return ctx.resolveGradient(n)
}

// hrefChain returns n followed by the nodes it references,
// through the href function, as long as they are of one of
// the given kinds. Every node but n is acquired, and must be
// released by the caller, in reverse order.
func (ctx *DrawingCtx) hrefChain(n *svgdoc.Node, href func(*svgdoc.Node) string, kinds ...svgdoc.Kind) []*svgdoc.Node {
	chain := []*svgdoc.Node{n}
	for id := href(n); id != ""; {
		next := ctx.acquireKind(id, kinds...)
		if next == nil {
			break
		}
		chain = append(chain, next)
		id = href(next)
	}
	return chain
}

func (ctx *DrawingCtx) releaseChain(chain []*svgdoc.Node) {
	for i := len(chain) - 1; i >= 1; i-- {
		ctx.Release(chain[i])
	}
}

func gradientAttrs(n *svgdoc.Node) *svgdoc.GradientAttrs {
	switch p := n.Payload.(type) {
	case *svgdoc.LinearGradient:
		return &p.GradientAttrs
	case *svgdoc.RadialGradient:
		return &p.GradientAttrs
	}
	return nil
}

// lengthAttr resolves the nearest explicit length of the chain.
type lengthAttr struct {
	value svgstyle.Length
	set   bool
}

func (l *lengthAttr) merge(f svgdoc.LengthField) {
	if !l.set && f.Set {
		l.value, l.set = f.Value, true
	}
}

func (ctx *DrawingCtx) resolveGradient(n *svgdoc.Node) Paint {
	chain := ctx.hrefChain(n, func(n *svgdoc.Node) string { return gradientAttrs(n).Href },
		svgdoc.KindLinearGradient, svgdoc.KindRadialGradient)
	defer ctx.releaseChain(chain)

	out := &Gradient{Radial: n.Kind == svgdoc.KindRadialGradient, Transform: matrix.Identity}
	var (
		unitsSet, transformSet, spreadSet bool
		attrs                             [5]lengthAttr
		stops                             *svgdoc.Node
	)
	// the nearest explicit value wins
	for _, c := range chain {
		a := gradientAttrs(c)
		if !unitsSet && a.Units.Set {
			out.Units, unitsSet = a.Units.Value, true
		}
		if !transformSet && a.Transform.Set {
			out.Transform, transformSet = a.Transform.Value, true
		}
		if !spreadSet && a.Spread.Set {
			out.Spread, spreadSet = a.Spread.Value, true
		}
		if stops == nil && ctx.doc.FirstChild(c) != nil {
			for s := ctx.doc.FirstChild(c); s != nil; s = ctx.doc.NextSibling(s) {
				if s.Kind == svgdoc.KindStop {
					stops = c
					break
				}
			}
		}
		switch p := c.Payload.(type) {
		case *svgdoc.LinearGradient:
			if out.Radial {
				continue
			}
			for i, f := range [...]svgdoc.LengthField{p.X1, p.Y1, p.X2, p.Y2} {
				attrs[i].merge(f)
			}
		case *svgdoc.RadialGradient:
			if !out.Radial {
				continue
			}
			for i, f := range [...]svgdoc.LengthField{p.CX, p.CY, p.FX, p.FY, p.R} {
				attrs[i].merge(f)
			}
		}
	}
	if !unitsSet {
		out.Units = svgdoc.ObjectBoundingBox
	}

	// defaults
	half := svgstyle.Length{Value: 0.5, Unit: svgstyle.UnitPercent}
	if out.Radial {
		for _, i := range [...]int{0, 1, 4} {
			if !attrs[i].set {
				attrs[i].value = half
			}
		}
		if !attrs[2].set {
			attrs[2].value = attrs[0].value
		}
		if !attrs[3].set {
			attrs[3].value = attrs[1].value
		}
	} else if !attrs[2].set {
		attrs[2].value = svgstyle.Length{Value: 1, Unit: svgstyle.UnitPercent}
	}
	axes := [5]svgstyle.Axis{svgstyle.Horizontal, svgstyle.Vertical, svgstyle.Horizontal, svgstyle.Vertical, svgstyle.Diagonal}
	res := ctx.Resolver()
	for i, a := range attrs {
		if out.Units == svgdoc.ObjectBoundingBox {
			out.Points[i] = a.value.ResolveBox(res, axes[i], 1)
		} else {
			out.Points[i] = a.value.Resolve(res, axes[i])
		}
	}

	if stops != nil {
		out.Stops = ctx.resolveStops(stops)
	}
	switch len(out.Stops) {
	case 0:
		return nil
	case 1:
		return SolidPaint(out.Stops[0].Color)
	}
	return out
}

func (ctx *DrawingCtx) resolveStops(n *svgdoc.Node) []GradientStop {
	var (
		out  []GradientStop
		last float64
	)
	for c := ctx.doc.FirstChild(n); c != nil; c = ctx.doc.NextSibling(c) {
		if c.Kind != svgdoc.KindStop {
			continue
		}
		offset := max(c.Payload.(*svgdoc.Stop).Offset, last)
		last = offset
		col := c.State.StopColor.Value.Resolve(c.State.CurrentColor.Value)
		col.A = uint8(float64(col.A)*c.State.StopOpacity.Value + 0.5)
		out = append(out, GradientStop{Offset: offset, Color: col})
	}
	return out
}

func (ctx *DrawingCtx) resolvePattern(n *svgdoc.Node) *Pattern {
	chain := ctx.hrefChain(n, func(n *svgdoc.Node) string { return n.Payload.(*svgdoc.Pattern).Href }, svgdoc.KindPattern)
	defer ctx.releaseChain(chain)

	out := &Pattern{
		Units:        svgdoc.ObjectBoundingBox,
		ContentUnits: svgdoc.UserSpaceOnUse,
		Transform:    matrix.Identity,
		AspectRatio:  svgdoc.DefaultAspectRatio,
	}
	var (
		unitsSet, contentUnitsSet, transformSet, aspectSet bool
		attrs                                              [4]lengthAttr
	)
	for _, c := range chain {
		p := c.Payload.(*svgdoc.Pattern)
		if !unitsSet && p.Units.Set {
			out.Units, unitsSet = p.Units.Value, true
		}
		if !contentUnitsSet && p.ContentUnits.Set {
			out.ContentUnits, contentUnitsSet = p.ContentUnits.Value, true
		}
		if !transformSet && p.Transform.Set {
			out.Transform, transformSet = p.Transform.Value, true
		}
		if !out.ViewBox.Set && p.ViewBox.Set {
			out.ViewBox = p.ViewBox
		}
		if !aspectSet && p.AspectRatio.Set {
			out.AspectRatio, aspectSet = p.AspectRatio.Value, true
		}
		if out.Content == nil && ctx.doc.FirstChild(c) != nil {
			out.Content = c
		}
		for i, f := range [...]svgdoc.LengthField{p.X, p.Y, p.Width, p.Height} {
			attrs[i].merge(f)
		}
	}
	if out.Content == nil {
		return nil
	}

	res := ctx.Resolver()
	dst := [4]*float64{&out.X, &out.Y, &out.Width, &out.Height}
	for i, a := range attrs {
		axis := svgstyle.Horizontal
		if i%2 == 1 {
			axis = svgstyle.Vertical
		}
		if out.Units == svgdoc.ObjectBoundingBox {
			*dst[i] = a.value.ResolveBox(res, axis, 1)
		} else {
			*dst[i] = a.value.Resolve(res, axis)
		}
	}
	if isDegenerate(out.Width, out.Height) {
		return nil
	}
	return out
}

// DrawPattern draws the content of p on b. content maps the
// content coordinates to the device space of b.
func (ctx *DrawingCtx) DrawPattern(p *Pattern, b Backend, content matrix.Matrix) {
	node := ctx.acquireNode(p.Content)
	if node == nil {
		return
	}
	defer ctx.Release(node)

	saved := ctx.backend
	ctx.backend = b
	defer func() { ctx.backend = saved }()

	ctx.pushBboxFrame()
	defer ctx.popBboxFrame()
	ctx.pushState(&node.State, svgstyle.ModeOverrideStyle)
	defer ctx.popState()
	st := ctx.State()
	st.Affine = content
	st.ClipPath, st.Mask, st.Filter, st.Opacity = "", "", "", 1

	for c := ctx.doc.FirstChild(node); c != nil; c = ctx.doc.NextSibling(c) {
		ctx.DrawNode(c, svgstyle.ModeReinherit)
	}
}
