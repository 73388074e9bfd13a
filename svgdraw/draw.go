// Given a parsed SVG document, implements how to
// draw it on screen.
// This requires a driver implementing the actual draw operations,
// such as a rasterizer to output .png images or a pdf writer.
//
// The DrawingCtx walks the document tree, computes the effective
// state of each node and calls the Backend with geometry expressed
// in user space. Isolation (opacity, masks, filters, composite
// operators and clip paths) is expressed through discrete layers.
package svgdraw

import (
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgstyle"
	"golang.org/x/text/language"
)

type drawFunc func(ctx *DrawingCtx, n *svgdoc.Node)

// drawFuncs is the per kind dispatch table. Kinds without
// entry (resources, descriptive elements) are not drawn when
// met in the tree.
var drawFuncs map[svgdoc.Kind]drawFunc

func init() {
	drawFuncs = map[svgdoc.Kind]drawFunc{
		svgdoc.KindSvg:      drawSvg,
		svgdoc.KindGroup:    drawGroup,
		svgdoc.KindSwitch:   drawSwitch,
		svgdoc.KindUse:      drawUse,
		svgdoc.KindPath:     drawPath,
		svgdoc.KindRect:     drawRect,
		svgdoc.KindCircle:   drawCircle,
		svgdoc.KindEllipse:  drawEllipse,
		svgdoc.KindLine:     drawLine,
		svgdoc.KindPolyline: drawPoly,
		svgdoc.KindPolygon:  drawPoly,
		svgdoc.KindText:     drawText,
		svgdoc.KindImage:    drawImage,
	}
}

// DrawNode draws n and its children, entering the state of n
// with the given cascade mode.
func (ctx *DrawingCtx) DrawNode(n *svgdoc.Node, mode svgstyle.CascadeMode) {
	if len(ctx.drawsub) != 0 {
		if ctx.drawsub[0] != n {
			return
		}
		saved := ctx.drawsub
		ctx.drawsub = ctx.drawsub[1:]
		defer func() { ctx.drawsub = saved }()
	}
	if st := n.State; st.Visible.Set && !st.Visible.Value {
		return
	}
	if !ctx.conditionsPass(n) {
		return
	}
	fn := drawFuncs[n.Kind]
	if fn == nil {
		return
	}

	ctx.pushState(&n.State, mode)
	defer ctx.popState()
	fn(ctx, n)
}

// conditionsPass evaluates the conditional processing
// attributes of n.
func (ctx *DrawingCtx) conditionsPass(n *svgdoc.Node) bool {
	if !n.State.CondTrue {
		return false
	}
	if n.SystemLanguage == nil {
		return true
	}
	for _, lang := range n.SystemLanguage {
		for _, user := range ctx.opts.Languages {
			if matchLanguage(lang, user) {
				return true
			}
		}
	}
	return false
}

// matchLanguage returns true if the two tags have the same
// language, and agree on the script and region they both specify:
// "en" matches "en-US", but "zh-Hant" does not match "zh-Hans".
func matchLanguage(a, b language.Tag) bool {
	baseA, scriptA, regionA := a.Raw()
	baseB, scriptB, regionB := b.Raw()
	if baseA != baseB {
		return false
	}
	if scriptA != (language.Script{}) && scriptB != (language.Script{}) && scriptA != scriptB {
		return false
	}
	return regionA == (language.Region{}) || regionB == (language.Region{}) || regionA == regionB
}

// drawChildren draws the children of n, inside a discrete layer.
func (ctx *DrawingCtx) drawChildren(n *svgdoc.Node, mode svgstyle.CascadeMode) {
	ctx.PushDiscreteLayer()
	for c := ctx.doc.FirstChild(n); c != nil; c = ctx.doc.NextSibling(c) {
		ctx.DrawNode(c, mode)
	}
	ctx.PopDiscreteLayer()
}

func drawGroup(ctx *DrawingCtx, n *svgdoc.Node) {
	ctx.drawChildren(n, svgstyle.ModeReinherit)
}

func drawSwitch(ctx *DrawingCtx, n *svgdoc.Node) {
	ctx.PushDiscreteLayer()
	for c := ctx.doc.FirstChild(n); c != nil; c = ctx.doc.NextSibling(c) {
		if ctx.conditionsPass(c) {
			ctx.DrawNode(c, svgstyle.ModeReinherit)
			break
		}
	}
	ctx.PopDiscreteLayer()
}
