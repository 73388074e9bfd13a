package svgdraw

import (
	"strings"

	"github.com/benoitkugler/svgrender/svgbbox"
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
	"github.com/benoitkugler/svgrender/svgtext"
	"seehuhn.de/go/geom/rect"
)

// FontDesc returns the font selected by the current state.
func (ctx *DrawingCtx) FontDesc() svgtext.FontDesc {
	st := ctx.State()
	return svgtext.FontDesc{
		Family:        st.FontFamily.Value,
		Size:          st.FontSize.Value.Value,
		Weight:        st.FontWeight.Value,
		Italic:        st.FontStyle.Value != svgstyle.FontStyleNormal,
		Lang:          st.Lang.Value,
		RightToLeft:   st.TextDir.Value == svgstyle.RightToLeft,
		LetterSpacing: ctx.Normalize(st.LetterSpacing.Value, svgstyle.Horizontal),
	}
}

// textLayout positions the chunks of a text element, following
// the current text position.
type textLayout struct {
	ctx     *DrawingCtx
	measure bool // only advance, without drawing
	x, y    float64

	lastSpace bool // for white space collapsing
}

func firstLength(ctx *DrawingCtx, ls []svgstyle.Length, axis svgstyle.Axis) (float64, bool) {
	if len(ls) == 0 {
		return 0, false
	}
	return ctx.Normalize(ls[0], axis), true
}

func drawText(ctx *DrawingCtx, n *svgdoc.Node) {
	t := n.Payload.(*svgdoc.Text)
	x, _ := firstLength(ctx, t.X, svgstyle.Horizontal)
	y, _ := firstLength(ctx, t.Y, svgstyle.Vertical)
	dx, _ := firstLength(ctx, t.DX, svgstyle.Horizontal)
	dy, _ := firstLength(ctx, t.DY, svgstyle.Vertical)
	x, y = x+dx, y+dy

	// the anchor applies to the whole text
	lay := textLayout{ctx: ctx, measure: true, lastSpace: true}
	lay.children(n)
	advance := lay.x
	switch ctx.State().TextAnchor.Value {
	case svgstyle.AnchorMiddle:
		x -= advance / 2
	case svgstyle.AnchorEnd:
		x -= advance
	}

	ctx.PushDiscreteLayer()
	lay = textLayout{ctx: ctx, x: x, y: y, lastSpace: true}
	lay.children(n)
	ctx.PopDiscreteLayer()
}

func (l *textLayout) children(n *svgdoc.Node) {
	doc := l.ctx.doc
	for c := doc.FirstChild(n); c != nil; c = doc.NextSibling(c) {
		switch c.Kind {
		case svgdoc.KindChars:
			l.chars(c.Payload.(*svgdoc.Chars).Text)
		case svgdoc.KindTSpan:
			l.tspan(c)
		case svgdoc.KindTRef:
			l.tref(c)
		}
	}
}

func (l *textLayout) tspan(n *svgdoc.Node) {
	ctx := l.ctx
	if !ctx.conditionsPass(n) {
		return
	}
	ctx.pushState(&n.State, svgstyle.ModeReinherit)
	defer ctx.popState()

	t := n.Payload.(*svgdoc.Text)
	if !l.measure {
		if x, ok := firstLength(ctx, t.X, svgstyle.Horizontal); ok {
			l.x = x
		}
		if y, ok := firstLength(ctx, t.Y, svgstyle.Vertical); ok {
			l.y = y
		}
	}
	dx, _ := firstLength(ctx, t.DX, svgstyle.Horizontal)
	dy, _ := firstLength(ctx, t.DY, svgstyle.Vertical)
	l.x, l.y = l.x+dx, l.y+dy
	l.children(n)
}

// tref draws the character content of the referenced element.
func (l *textLayout) tref(n *svgdoc.Node) {
	ctx := l.ctx
	ctx.withAcquired(n.Payload.(*svgdoc.TRef).Href, func(target *svgdoc.Node) {
		var sb strings.Builder
		collectChars(ctx.doc, target, &sb)
		l.chars(sb.String())
	})
}

func collectChars(doc *svgdoc.Document, n *svgdoc.Node, sb *strings.Builder) {
	for c := doc.FirstChild(n); c != nil; c = doc.NextSibling(c) {
		if c.Kind == svgdoc.KindChars {
			sb.WriteString(c.Payload.(*svgdoc.Chars).Text)
		} else {
			collectChars(doc, c, sb)
		}
	}
}

// normalizeSpace applies the xml:space rules.
func (l *textLayout) normalizeSpace(s string, preserve bool) string {
	if preserve {
		return strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' || r == '\t' {
				return ' '
			}
			return r
		}, s)
	}
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\n', '\r':
		case ' ', '\t':
			if !l.lastSpace {
				sb.WriteByte(' ')
			}
			l.lastSpace = true
		default:
			sb.WriteRune(r)
			l.lastSpace = false
		}
	}
	return sb.String()
}

func (l *textLayout) chars(s string) {
	ctx := l.ctx
	st := ctx.State()
	s = l.normalizeSpace(s, st.SpacePreserve.Value)
	if s == "" {
		return
	}
	line, err := ctx.opts.Shaper.Shape(s, ctx.FontDesc())
	if err != nil {
		ctx.opts.Logger.Debug("text not shaped", "err", err)
		return
	}
	if !l.measure && st.Visible.Value {
		ctx.backend.RenderText(ctx, line, l.x, l.y)
		l.decorate(line)
		ctx.InsertBbox(svgbbox.FromRect(st.Affine, rect.Rect{
			LLx: l.x, LLy: l.y - line.Ascent,
			URx: l.x + line.Advance, URy: l.y + line.Descent,
		}))
	}
	l.x += line.Advance
}

// decorate draws the underline, overline and line-through
// of a chunk, with the fill and stroke of the text.
func (l *textLayout) decorate(line *svgtext.Line) {
	ctx := l.ctx
	st := ctx.State()
	deco := st.TextDecoration.Value
	if deco == 0 || line.Advance <= 0 {
		return
	}
	thickness := st.FontSize.Value.Value / 16
	var path svgpath.Path
	if deco&svgstyle.DecorationUnderline != 0 {
		path.AddRect(l.x, l.y+thickness, line.Advance, thickness)
	}
	if deco&svgstyle.DecorationOverline != 0 {
		path.AddRect(l.x, l.y-line.Ascent, line.Advance, thickness)
	}
	if deco&svgstyle.DecorationStrike != 0 {
		path.AddRect(l.x, l.y-line.Ascent/3-thickness/2, line.Advance, thickness)
	}
	if ext, ok := path.Extents(); ok {
		ctx.backend.RenderPath(ctx, path, ext)
	}
}
