package svgdraw

import (
	"errors"

	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgstyle"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// ErrSizingLoop is returned when the size of a document is
// requested from a pass which is itself measuring it.
var ErrSizingLoop = errors.New("svgdraw: recursive sizing")

// fallbackSize is used for documents without intrinsic size.
const fallbackSize = 100

// Dimensions returns the intrinsic size of the document, in user
// units. When opts.Subtree is given, it is the size of the extents
// of this element.
//
// Percentage sizes are resolved against the view box; without view
// box, the content is measured, which requires a drawing pass.
func Dimensions(doc *svgdoc.Document, opts Options) (Size, error) {
	if doc == nil || doc.Root == nil {
		return Size{}, errors.New("svgdraw: empty document")
	}
	if opts.Subtree != "" {
		ext, ok, err := Measure(doc, opts)
		if err != nil || !ok {
			return Size{}, err
		}
		return Size{ext.URx - ext.LLx, ext.URy - ext.LLy}, nil
	}

	size, resolved := intrinsicSize(doc, opts)
	if resolved {
		return size, nil
	}
	ext, ok, err := Measure(doc, opts)
	if err != nil {
		return Size{}, err
	}
	if ok {
		size = Size{max(ext.URx, 0), max(ext.URy, 0)}
	}
	return size, nil
}

// intrinsicSize returns the size of the root element. resolved is
// false when a dimension is relative and no view box is given:
// a default size is then returned.
func intrinsicSize(doc *svgdoc.Document, opts Options) (size Size, resolved bool) {
	opts = opts.withDefaults(doc)
	s := doc.Root.Payload.(*svgdoc.Svg)
	w, h := s.Size()
	res := svgstyle.Resolver{DPIX: opts.DPI, DPIY: opts.DPI, FontSize: svgstyle.DefaultFontSize.Value}
	var vb svgdoc.ViewBox
	hasViewBox := s.ViewBox.Set && !isDegenerate(s.ViewBox.Value.W, s.ViewBox.Value.H)
	if hasViewBox {
		vb = s.ViewBox.Value
	}
	resolved = true
	resolve := func(l svgstyle.Length, ref float64, axis svgstyle.Axis) float64 {
		if l.Unit != svgstyle.UnitPercent {
			return l.Resolve(res, axis)
		}
		if hasViewBox {
			return l.Value * ref
		}
		resolved = false
		return fallbackSize
	}
	size.W = resolve(w, vb.W, svgstyle.Horizontal)
	size.H = resolve(h, vb.H, svgstyle.Vertical)
	return size, resolved
}

// Measure draws the document (or opts.Subtree) without output,
// and returns the extents of the content in the user space of the
// root element. ok is false if nothing would be drawn.
//
// Independent calls may run concurrently on the same document.
func Measure(doc *svgdoc.Document, opts Options) (ext rect.Rect, ok bool, err error) {
	if opts.sizing {
		return rect.Rect{}, false, ErrSizingLoop
	}
	opts.sizing = true

	size, _ := intrinsicSize(doc, opts)
	ctx, err := NewDrawingCtx(doc, nopBackend{}, matrix.Identity, size, opts)
	if err != nil {
		return rect.Rect{}, false, err
	}
	ctx.Draw()
	ext, ok = ctx.Bbox().Device()
	return ext, ok, nil
}

// Measure returns the extents of the element id (or of the whole
// document if empty), with the options of ctx. It is meant to be
// called while drawing, and fails with ErrSizingLoop when ctx is
// itself a measuring pass.
func (ctx *DrawingCtx) Measure(id string) (ext rect.Rect, ok bool, err error) {
	opts := ctx.opts
	opts.Subtree = id
	return Measure(ctx.doc, opts)
}
