package svgdraw

import (
	"math"

	"github.com/benoitkugler/svgrender/svgbbox"
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// drawShape renders path with the current state, followed by
// its markers if withMarkers is true.
func (ctx *DrawingCtx) drawShape(path svgpath.Path, withMarkers bool) {
	if !ctx.State().Visible.Value {
		return
	}
	ext, ok := path.Extents()
	if !ok {
		return
	}
	ctx.PushDiscreteLayer()
	ctx.backend.RenderPath(ctx, path, ext)

	st := ctx.State()
	if st.Stroke.Value != nil {
		hw := ctx.StrokeWidth() / 2
		ext = rect.Rect{LLx: ext.LLx - hw, LLy: ext.LLy - hw, URx: ext.URx + hw, URy: ext.URy + hw}
	}
	ctx.InsertBbox(svgbbox.FromRect(st.Affine, ext))

	if withMarkers {
		ctx.drawMarkers(path)
	}
	ctx.PopDiscreteLayer()
}

func drawPath(ctx *DrawingCtx, n *svgdoc.Node) {
	ctx.drawShape(n.Payload.(*svgdoc.PathData).Data, true)
}

func drawRect(ctx *DrawingCtx, n *svgdoc.Node) {
	r := n.Payload.(*svgdoc.Rect)
	x, y := ctx.Normalize(r.X, svgstyle.Horizontal), ctx.Normalize(r.Y, svgstyle.Vertical)
	w, h := ctx.Normalize(r.Width, svgstyle.Horizontal), ctx.Normalize(r.Height, svgstyle.Vertical)
	if isDegenerate(w, h) {
		return
	}
	var rx, ry float64
	switch {
	case r.RX.Set && r.RY.Set:
		rx, ry = ctx.Normalize(r.RX.Value, svgstyle.Horizontal), ctx.Normalize(r.RY.Value, svgstyle.Vertical)
	case r.RX.Set:
		rx = ctx.Normalize(r.RX.Value, svgstyle.Horizontal)
		ry = rx
	case r.RY.Set:
		ry = ctx.Normalize(r.RY.Value, svgstyle.Vertical)
		rx = ry
	}
	var path svgpath.Path
	if rx > 0 && ry > 0 {
		path.AddRoundRect(x, y, w, h, rx, ry)
	} else {
		path.AddRect(x, y, w, h)
	}
	ctx.drawShape(path, false)
}

func drawCircle(ctx *DrawingCtx, n *svgdoc.Node) {
	c := n.Payload.(*svgdoc.Circle)
	r := ctx.Normalize(c.R, svgstyle.Diagonal)
	if r <= 0 {
		return
	}
	var path svgpath.Path
	path.AddEllipse(ctx.Normalize(c.CX, svgstyle.Horizontal), ctx.Normalize(c.CY, svgstyle.Vertical), r, r)
	ctx.drawShape(path, false)
}

func drawEllipse(ctx *DrawingCtx, n *svgdoc.Node) {
	e := n.Payload.(*svgdoc.Ellipse)
	rx, ry := ctx.Normalize(e.RX, svgstyle.Horizontal), ctx.Normalize(e.RY, svgstyle.Vertical)
	if isDegenerate(rx, ry) {
		return
	}
	var path svgpath.Path
	path.AddEllipse(ctx.Normalize(e.CX, svgstyle.Horizontal), ctx.Normalize(e.CY, svgstyle.Vertical), rx, ry)
	ctx.drawShape(path, false)
}

func drawLine(ctx *DrawingCtx, n *svgdoc.Node) {
	l := n.Payload.(*svgdoc.Line)
	var path svgpath.Path
	path.Start(svgpath.Point{X: ctx.Normalize(l.X1, svgstyle.Horizontal), Y: ctx.Normalize(l.Y1, svgstyle.Vertical)})
	path.Line(svgpath.Point{X: ctx.Normalize(l.X2, svgstyle.Horizontal), Y: ctx.Normalize(l.Y2, svgstyle.Vertical)})
	ctx.drawShape(path, true)
}

func drawPoly(ctx *DrawingCtx, n *svgdoc.Node) {
	var path svgpath.Path
	path.AddPolyline(n.Payload.(*svgdoc.Poly).Points, n.Kind == svgdoc.KindPolygon)
	ctx.drawShape(path, true)
}

// drawSvg handles both the root element and nested
// svg elements, which establish a new viewport.
func drawSvg(ctx *DrawingCtx, n *svgdoc.Node) {
	s := n.Payload.(*svgdoc.Svg)
	var x, y, w, h float64
	nested := n != ctx.doc.Root
	if nested {
		wl, hl := s.Size()
		x, y = ctx.Normalize(s.X, svgstyle.Horizontal), ctx.Normalize(s.Y, svgstyle.Vertical)
		w, h = ctx.Normalize(wl, svgstyle.Horizontal), ctx.Normalize(hl, svgstyle.Vertical)
		if isDegenerate(w, h) {
			return
		}
	} else {
		w, h = ctx.size.W, ctx.size.H
	}

	ctx.PushDiscreteLayer()
	st := ctx.State()
	if nested && !st.Overflow.Value {
		ctx.backend.AddClippingRect(ctx, x, y, w, h)
	}
	vb := svgdoc.ViewBox{W: w, H: h}
	if s.ViewBox.Set && !isDegenerate(s.ViewBox.Value.W, s.ViewBox.Value.H) {
		vb = s.ViewBox.Value
		st.Affine = s.AspectRatio.Fit(vb, x, y, w, h).Mul(st.Affine)
	} else {
		st.Affine = matrix.Translate(x, y).Mul(st.Affine)
	}
	ctx.pushViewBox(vb)
	for c := ctx.doc.FirstChild(n); c != nil; c = ctx.doc.NextSibling(c) {
		ctx.DrawNode(c, svgstyle.ModeReinherit)
	}
	ctx.popViewBox()
	ctx.PopDiscreteLayer()
}

// drawUse draws the referenced element, whose unset properties
// are taken from the use element.
func drawUse(ctx *DrawingCtx, n *svgdoc.Node) {
	u := n.Payload.(*svgdoc.Use)
	x, y := ctx.Normalize(u.X, svgstyle.Horizontal), ctx.Normalize(u.Y, svgstyle.Vertical)
	ctx.withAcquired(u.Href, func(target *svgdoc.Node) {
		st := ctx.State()
		st.Affine = matrix.Translate(x, y).Mul(st.Affine)

		if target.Kind != svgdoc.KindSymbol {
			ctx.PushDiscreteLayer()
			ctx.DrawNode(target, svgstyle.ModeDominate)
			ctx.PopDiscreteLayer()
			return
		}

		sym := target.Payload.(*svgdoc.Symbol)
		w, h := svgstyle.Length{Value: 1, Unit: svgstyle.UnitPercent}, svgstyle.Length{Value: 1, Unit: svgstyle.UnitPercent}
		if u.Width.Set {
			w = u.Width.Value
		}
		if u.Height.Set {
			h = u.Height.Value
		}
		vw, vh := ctx.Normalize(w, svgstyle.Horizontal), ctx.Normalize(h, svgstyle.Vertical)
		if isDegenerate(vw, vh) {
			return
		}

		ctx.PushDiscreteLayer()
		ctx.pushState(&target.State, svgstyle.ModeDominate)
		ctx.PushDiscreteLayer()
		st = ctx.State()
		if !st.Overflow.Value {
			ctx.backend.AddClippingRect(ctx, 0, 0, vw, vh)
		}
		vb := svgdoc.ViewBox{W: vw, H: vh}
		if sym.ViewBox.Set && !isDegenerate(sym.ViewBox.Value.W, sym.ViewBox.Value.H) {
			vb = sym.ViewBox.Value
			st.Affine = sym.AspectRatio.Fit(vb, 0, 0, vw, vh).Mul(st.Affine)
		}
		ctx.pushViewBox(vb)
		for c := ctx.doc.FirstChild(target); c != nil; c = ctx.doc.NextSibling(c) {
			ctx.DrawNode(c, svgstyle.ModeDominate)
		}
		ctx.popViewBox()
		ctx.PopDiscreteLayer()
		ctx.popState()
		ctx.PopDiscreteLayer()
	})
}

func drawImage(ctx *DrawingCtx, n *svgdoc.Node) {
	im := n.Payload.(*svgdoc.Image)
	if im.Img == nil || !ctx.State().Visible.Value {
		return
	}
	x, y := ctx.Normalize(im.X, svgstyle.Horizontal), ctx.Normalize(im.Y, svgstyle.Vertical)
	w, h := ctx.Normalize(im.Width, svgstyle.Horizontal), ctx.Normalize(im.Height, svgstyle.Vertical)
	bounds := im.Img.Bounds()
	if isDegenerate(w, h) || bounds.Empty() {
		return
	}
	m := im.AspectRatio.Fit(svgdoc.ViewBox{W: float64(bounds.Dx()), H: float64(bounds.Dy())}, x, y, w, h)
	ix, iy := svgpath.Apply(m, 0, 0)
	iw, ih := float64(bounds.Dx())*m[0], float64(bounds.Dy())*m[3]

	ctx.PushDiscreteLayer()
	if im.AspectRatio.Slice {
		ctx.backend.AddClippingRect(ctx, x, y, w, h)
	}
	ctx.backend.RenderSurface(ctx, im.Img, ix, iy, iw, ih)
	ctx.InsertBbox(svgbbox.FromRect(ctx.State().Affine, rect.Rect{LLx: x, LLy: y, URx: x + w, URy: y + h}))
	ctx.PopDiscreteLayer()
}

// ------------------------------- markers -------------------------------

func (ctx *DrawingCtx) drawMarkers(path svgpath.Path) {
	st := ctx.State()
	start, mid, end := st.StartMarker.Value, st.MiddleMarker.Value, st.EndMarker.Value
	if start == "" && mid == "" && end == "" {
		return
	}
	for _, v := range path.Vertices() {
		id := mid
		switch v.Kind {
		case svgpath.VertexStart:
			id = start
		case svgpath.VertexEnd:
			id = end
		}
		if id != "" {
			ctx.drawMarker(id, v)
		}
	}
}

// drawMarker draws the marker id at the vertex v. The state of
// the marker is built from its own ancestors, not from the
// shape referencing it.
func (ctx *DrawingCtx) drawMarker(id string, v svgpath.Vertex) {
	node := ctx.acquireKind(id, svgdoc.KindMarker)
	if node == nil {
		return
	}
	defer ctx.Release(node)

	m := node.Payload.(*svgdoc.Marker)
	parent := ctx.State()
	strokeWidth := ctx.StrokeWidth()
	parentAffine := parent.Affine
	w, h := ctx.Normalize(m.Width, svgstyle.Horizontal), ctx.Normalize(m.Height, svgstyle.Vertical)
	if isDegenerate(w, h) {
		return
	}
	refX, refY := ctx.Normalize(m.RefX, svgstyle.Horizontal), ctx.Normalize(m.RefY, svgstyle.Vertical)

	content := matrix.Identity
	clip := svgdoc.ViewBox{W: w, H: h}
	if m.ViewBox.Set && !isDegenerate(m.ViewBox.Value.W, m.ViewBox.Value.H) {
		clip = m.ViewBox.Value
		content = m.AspectRatio.Fit(clip, 0, 0, w, h)
	}
	rx, ry := svgpath.Apply(content, refX, refY)
	affine := content.Mul(matrix.Translate(-rx, -ry))
	if m.Units == svgdoc.StrokeWidth {
		affine = affine.Mul(matrix.Scale(strokeWidth, strokeWidth))
	}
	angle := m.Orient * math.Pi / 180
	if m.OrientAuto {
		angle = v.Angle
	}
	affine = affine.Mul(svgpath.Rotate(angle)).Mul(matrix.Translate(v.X, v.Y)).Mul(parentAffine)

	st := ctx.ancestorState(node)
	st.Affine = affine
	ctx.pushRawState(st)
	defer ctx.popState()
	ctx.pushState(&node.State, svgstyle.ModeNoOp)
	defer ctx.popState()

	ctx.pushViewBox(clip)
	defer ctx.popViewBox()
	ctx.PushDiscreteLayer()
	if !ctx.State().Overflow.Value {
		ctx.backend.AddClippingRect(ctx, clip.X, clip.Y, clip.W, clip.H)
	}
	for c := ctx.doc.FirstChild(node); c != nil; c = ctx.doc.NextSibling(c) {
		ctx.DrawNode(c, svgstyle.ModeReinherit)
	}
	ctx.PopDiscreteLayer()
}
