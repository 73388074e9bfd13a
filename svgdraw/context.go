package svgdraw

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/benoitkugler/svgrender/svgbbox"
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
	"github.com/benoitkugler/svgrender/svgtext"
	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
	"seehuhn.de/go/geom/matrix"
)

// ErrUnknownID is returned when the subtree to draw is
// not found in the document.
var ErrUnknownID = errors.New("svgdraw: unknown id")

// DefaultDPI is the resolution used to convert physical units.
const DefaultDPI = 90

var defaultShaper = sync.OnceValue(svgtext.NewShaper)

// Options customizes a drawing pass.
type Options struct {
	DPI       float64         // default to DefaultDPI
	Logger    *log.Logger     // default to the document logger
	Shaper    *svgtext.Shaper // default to a shaper with the Go fonts
	Languages []language.Tag  // user languages, default to English
	// Subtree is the id of the only element to draw,
	// or empty to draw the whole document.
	Subtree string

	sizing bool // set for the passes started by Measure
}

func (opts Options) withDefaults(doc *svgdoc.Document) Options {
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.Logger == nil {
		opts.Logger = doc.Logger()
	}
	if opts.Shaper == nil {
		opts.Shaper = defaultShaper()
	}
	if len(opts.Languages) == 0 {
		opts.Languages = []language.Tag{language.English}
	}
	return opts
}

// Size is the size of a document, in user units.
type Size struct{ W, H float64 }

// DrawingCtx stores the state of one drawing pass.
// It must not be used concurrently: independent passes
// over the same document use independent contexts.
type DrawingCtx struct {
	doc     *svgdoc.Document
	backend Backend
	opts    Options
	size    Size

	states    []svgstyle.State // the last one is the current state
	viewBoxes []svgdoc.ViewBox
	drawsub   []*svgdoc.Node // path to the subtree to draw
	acquired  []*svgdoc.Node

	bbox   svgbbox.Bbox // of the current layer
	bboxes []svgbbox.Bbox
	layers []*Layer
}

// NewDrawingCtx prepares a pass drawing doc on backend. base maps
// the user space of the root element, whose size is size, to the
// device space.
func NewDrawingCtx(doc *svgdoc.Document, backend Backend, base matrix.Matrix, size Size, opts Options) (*DrawingCtx, error) {
	ctx := &DrawingCtx{
		doc:       doc,
		backend:   backend,
		opts:      opts.withDefaults(doc),
		size:      size,
		viewBoxes: []svgdoc.ViewBox{{W: size.W, H: size.H}},
		bbox:      svgbbox.New(base),
	}
	st := svgstyle.NewState()
	st.Affine = base
	ctx.states = []svgstyle.State{st}

	if opts.Subtree != "" {
		target := doc.Lookup(opts.Subtree)
		if target == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownID, opts.Subtree)
		}
		ctx.drawsub = append(doc.Ancestors(target), target)
	}
	return ctx, nil
}

// Draw draws the document, or the selected subtree.
func (ctx *DrawingCtx) Draw() {
	ctx.DrawNode(ctx.doc.Root, svgstyle.ModeReinherit)
}

// Document returns the document being drawn.
func (ctx *DrawingCtx) Document() *svgdoc.Document { return ctx.doc }

// Logger returns the logger of the pass.
func (ctx *DrawingCtx) Logger() *log.Logger { return ctx.opts.Logger }

// Shaper returns the text shaper of the pass.
func (ctx *DrawingCtx) Shaper() *svgtext.Shaper { return ctx.opts.Shaper }

// Bbox returns the extents of what has been drawn in the
// current layer. After Draw, it is the extents of the document.
func (ctx *DrawingCtx) Bbox() svgbbox.Bbox { return ctx.bbox }

// InsertBbox grows the extents of the current layer.
func (ctx *DrawingCtx) InsertBbox(b svgbbox.Bbox) { ctx.bbox.Insert(b) }

// ------------------------------- state stack -------------------------------

// State returns the current state. The pointer is only valid
// until the next push.
func (ctx *DrawingCtx) State() *svgstyle.State { return &ctx.states[len(ctx.states)-1] }

// pushState enters the effective state of a node, whose own
// state is st.
func (ctx *DrawingCtx) pushState(st *svgstyle.State, mode svgstyle.CascadeMode) {
	parent := ctx.State()
	var cur svgstyle.State
	switch mode {
	case svgstyle.ModeNoOp:
		cur = parent.Clone()
	case svgstyle.ModeOverrideStyle:
		cur = parent.Clone()
		cur.Override(st)
	default:
		cur = st.Clone()
		if mode == svgstyle.ModeDominate {
			cur.Dominate(parent)
		} else {
			cur.Reinherit(parent)
		}
		cur.Affine = cur.PersonalAffine.Mul(parent.Affine)
	}
	cur.FontSize.Value = svgstyle.Px(ctx.computedFontSize(cur.FontSize.Value, parent.FontSize.Value.Value))
	ctx.states = append(ctx.states, cur)
}

// pushRawState makes st the current state, without cascade.
func (ctx *DrawingCtx) pushRawState(st svgstyle.State) {
	ctx.states = append(ctx.states, st)
}

func (ctx *DrawingCtx) popState() {
	if len(ctx.states) <= 1 {
		panic("svgdraw: state stack underflow")
	}
	ctx.states = ctx.states[:len(ctx.states)-1]
}

// computedFontSize resolves a font size in user units;
// relative sizes refer to the parent size.
func (ctx *DrawingCtx) computedFontSize(l svgstyle.Length, parentSize float64) float64 {
	switch l.Unit {
	case svgstyle.UnitEm, svgstyle.UnitPercent:
		return l.Value * parentSize
	case svgstyle.UnitEx:
		return l.Value * parentSize / 2
	default:
		return l.Resolve(svgstyle.Resolver{DPIX: ctx.opts.DPI, DPIY: ctx.opts.DPI}, svgstyle.Vertical)
	}
}

// ancestorState returns the state n would have if it was drawn
// from the root, with an identity transform.
func (ctx *DrawingCtx) ancestorState(n *svgdoc.Node) svgstyle.State {
	st := svgstyle.NewState()
	fontSize := svgstyle.DefaultFontSize.Value
	for _, a := range append(ctx.doc.Ancestors(n), n) {
		cur := a.State.Clone()
		cur.Inherit(&st)
		fontSize = ctx.computedFontSize(cur.FontSize.Value, fontSize)
		cur.FontSize.Value = svgstyle.Px(fontSize)
		st = cur
	}
	st.Affine, st.PersonalAffine = matrix.Identity, matrix.Identity
	return st
}

// ------------------------------- lengths -------------------------------

func (ctx *DrawingCtx) pushViewBox(vb svgdoc.ViewBox) { ctx.viewBoxes = append(ctx.viewBoxes, vb) }

func (ctx *DrawingCtx) popViewBox() { ctx.viewBoxes = ctx.viewBoxes[:len(ctx.viewBoxes)-1] }

// Resolver returns the context needed to resolve lengths
// in the current state.
func (ctx *DrawingCtx) Resolver() svgstyle.Resolver {
	vb := ctx.viewBoxes[len(ctx.viewBoxes)-1]
	return svgstyle.Resolver{
		DPIX: ctx.opts.DPI, DPIY: ctx.opts.DPI,
		ViewBoxW: vb.W, ViewBoxH: vb.H,
		FontSize: ctx.State().FontSize.Value.Value,
	}
}

// Normalize returns l in user units.
func (ctx *DrawingCtx) Normalize(l svgstyle.Length, axis svgstyle.Axis) float64 {
	return l.Resolve(ctx.Resolver(), axis)
}

// StrokeWidth returns the stroke width of the current state,
// in user units.
func (ctx *DrawingCtx) StrokeWidth() float64 {
	return ctx.Normalize(ctx.State().StrokeWidth.Value, svgstyle.Diagonal)
}

// Dashes returns the dash array of the current state in user
// units, or nil for a solid stroke. An array with an odd number
// of values is repeated.
func (ctx *DrawingCtx) Dashes() (dashes []float64, offset float64) {
	st := ctx.State()
	var sum float64
	for _, l := range st.Dash.Value {
		d := ctx.Normalize(l, svgstyle.Diagonal)
		if d < 0 {
			return nil, 0
		}
		sum += d
		dashes = append(dashes, d)
	}
	if sum == 0 {
		return nil, 0
	}
	if len(dashes)%2 == 1 {
		dashes = append(dashes, dashes...)
	}
	return dashes, ctx.Normalize(st.DashOffset.Value, svgstyle.Diagonal)
}

// DeviceScale returns the mean scaling from user space
// to device space.
func (ctx *DrawingCtx) DeviceScale() float64 {
	return svgpath.ExpansionFactor(ctx.State().Affine)
}

// ------------------------------- acquired nodes -------------------------------

// Acquire returns the node with the given id, or nil if it does
// not exist or is already acquired: references forming a cycle
// are treated as missing. A non nil node must be released with
// Release, in reverse acquisition order.
func (ctx *DrawingCtx) Acquire(id string) *svgdoc.Node {
	n := ctx.doc.Lookup(id)
	if n == nil {
		ctx.opts.Logger.Debug("missing reference", "id", id)
		return nil
	}
	return ctx.acquireNode(n)
}

func (ctx *DrawingCtx) acquireNode(n *svgdoc.Node) *svgdoc.Node {
	for _, a := range ctx.acquired {
		if a == n {
			ctx.opts.Logger.Debug("reference cycle", "id", n.ID)
			return nil
		}
	}
	ctx.acquired = append(ctx.acquired, n)
	return n
}

// acquireKind is like Acquire, but also returns nil if the
// node is not of the given kind.
func (ctx *DrawingCtx) acquireKind(id string, kinds ...svgdoc.Kind) *svgdoc.Node {
	n := ctx.Acquire(id)
	if n == nil {
		return nil
	}
	for _, k := range kinds {
		if n.Kind == k {
			return n
		}
	}
	ctx.opts.Logger.Debug("invalid reference", "id", id, "kind", n.Kind)
	ctx.Release(n)
	return nil
}

// Release ends the acquisition of n, which must be the last
// acquired node. It is a no-op for nil.
func (ctx *DrawingCtx) Release(n *svgdoc.Node) {
	if n == nil {
		return
	}
	if len(ctx.acquired) == 0 || ctx.acquired[len(ctx.acquired)-1] != n {
		panic(fmt.Sprintf("svgdraw: releasing node %q which is not the last acquired one", n.ID))
	}
	ctx.acquired = ctx.acquired[:len(ctx.acquired)-1]
}

// withAcquired calls fn with the node id, if it may be acquired,
// and releases it afterwards.
func (ctx *DrawingCtx) withAcquired(id string, fn func(n *svgdoc.Node)) bool {
	n := ctx.Acquire(id)
	if n == nil {
		return false
	}
	defer ctx.Release(n)
	fn(n)
	return true
}

// ------------------------------- discrete layers -------------------------------

func (ctx *DrawingCtx) pushBboxFrame() {
	ctx.bboxes = append(ctx.bboxes, ctx.bbox)
	ctx.bbox = svgbbox.New(ctx.State().Affine)
}

// popBboxFrame returns the extents of the frame and restores
// the previous one, without merging.
func (ctx *DrawingCtx) popBboxFrame() svgbbox.Bbox {
	out := ctx.bbox
	ctx.bbox = ctx.bboxes[len(ctx.bboxes)-1]
	ctx.bboxes = ctx.bboxes[:len(ctx.bboxes)-1]
	return out
}

// PushDiscreteLayer starts a layer for the current state, resolving
// its clip path, mask and filter. It must be balanced by a call to
// PopDiscreteLayer.
func (ctx *DrawingCtx) PushDiscreteLayer() {
	st := ctx.State()
	layer := &Layer{
		Opacity:    st.Opacity,
		CompOp:     st.CompOp,
		Background: st.EnableBackground,
		Affine:     st.Affine,
	}
	clipID, maskID, filterID := st.ClipPath, st.Mask, st.Filter
	fastPath := st.IsFastPath()
	if clipID != "" {
		if clip := ctx.acquireKind(clipID, svgdoc.KindClipPath); clip != nil {
			if clip.Payload.(*svgdoc.ClipPath).Units == svgdoc.ObjectBoundingBox {
				layer.LateClip = clip
			} else {
				layer.Clip = clip
			}
		}
	}
	if maskID != "" {
		layer.Mask = ctx.acquireKind(maskID, svgdoc.KindMask)
	}
	if filterID != "" {
		layer.Filter = ctx.acquireKind(filterID, svgdoc.KindFilter)
	}
	layer.Isolated = !fastPath || layer.LateClip != nil

	ctx.layers = append(ctx.layers, layer)
	ctx.pushBboxFrame()
	ctx.backend.PushDiscreteLayer(ctx, layer)
}

// PopDiscreteLayer ends the last layer: the backend composites it,
// and its extents, restricted by its clip path, are merged into
// the parent layer.
func (ctx *DrawingCtx) PopDiscreteLayer() {
	layer := ctx.layers[len(ctx.layers)-1]
	ctx.layers = ctx.layers[:len(ctx.layers)-1]
	layer.Bbox = ctx.bbox
	ctx.backend.PopDiscreteLayer(ctx, layer)

	bbox := ctx.popBboxFrame()
	if layer.clipNode() != nil {
		clipBbox := layer.clipBbox
		if clipBbox == nil {
			b := ctx.DrawLayerClip(layer, nopBackend{})
			clipBbox = &b
		}
		bbox.Clip(*clipBbox)
	}
	ctx.bbox.Insert(bbox)

	ctx.Release(layer.Filter)
	ctx.Release(layer.Mask)
	ctx.Release(layer.Clip)
	ctx.Release(layer.LateClip)
}

func (l *Layer) clipNode() *svgdoc.Node {
	if l.Clip != nil {
		return l.Clip
	}
	return l.LateClip
}

// DrawLayerClip draws the clip path of layer on b, and returns its
// extents. A late clip is only valid once the layer content is drawn.
// The extents are kept on the layer, so that backends which rasterize
// the clip path spare a second pass when the layer is popped.
func (ctx *DrawingCtx) DrawLayerClip(layer *Layer, b Backend) svgbbox.Bbox {
	var out svgbbox.Bbox
	if layer.LateClip != nil {
		out = ctx.DrawClipPath(layer.LateClip, b, layer.Bbox)
	} else {
		out = ctx.DrawClipPath(layer.Clip, b, svgbbox.New(layer.Affine))
	}
	layer.clipBbox = &out
	return out
}

// bboxMatrix maps the unit square to the rectangle of b, in the
// user space of b.
func bboxMatrix(b svgbbox.Bbox) matrix.Matrix {
	r := b.Rect
	return matrix.Scale(r.URx-r.LLx, r.URy-r.LLy).Mul(matrix.Translate(r.LLx, r.LLy))
}

// DrawClipPath draws the content of the clip path on b, and returns
// its extents. objectBbox is the extents of the clipped content,
// used for clip paths in objectBoundingBox units.
func (ctx *DrawingCtx) DrawClipPath(clip *svgdoc.Node, b Backend, objectBbox svgbbox.Bbox) svgbbox.Bbox {
	saved := ctx.backend
	ctx.backend = b
	defer func() { ctx.backend = saved }()

	ctx.pushBboxFrame()
	ctx.pushState(&clip.State, svgstyle.ModeReinherit)
	if clip.Payload.(*svgdoc.ClipPath).Units == svgdoc.ObjectBoundingBox {
		if objectBbox.Virgin {
			ctx.popState()
			return ctx.popBboxFrame()
		}
		ctx.State().Affine = clip.State.PersonalAffine.Mul(bboxMatrix(objectBbox)).Mul(objectBbox.Affine)
	}
	// clip-path, mask, opacity and filter do not apply
	// to the content of a clip path
	st := ctx.State()
	st.ClipPath, st.Mask, st.Filter, st.Opacity = "", "", "", 1
	for c := ctx.doc.FirstChild(clip); c != nil; c = ctx.doc.NextSibling(c) {
		ctx.DrawNode(c, svgstyle.ModeReinherit)
	}
	ctx.popState()
	return ctx.popBboxFrame()
}

// DrawMask draws the content of mask on b, which is expected to
// target an empty surface. objectBbox is the extents of the masked
// content, in its user space.
func (ctx *DrawingCtx) DrawMask(mask *svgdoc.Node, b Backend, objectBbox svgbbox.Bbox) {
	saved := ctx.backend
	ctx.backend = b
	defer func() { ctx.backend = saved }()

	m := mask.Payload.(*svgdoc.Mask)
	ctx.pushBboxFrame()
	defer ctx.popBboxFrame()
	ctx.pushState(&mask.State, svgstyle.ModeReinherit)
	defer ctx.popState()

	ctx.State().Affine = objectBbox.Affine
	var x, y, w, h float64
	r := objectBbox.Rect
	if m.Units == svgdoc.ObjectBoundingBox {
		if objectBbox.Virgin {
			return
		}
		res := ctx.Resolver()
		bw, bh := r.URx-r.LLx, r.URy-r.LLy
		x = r.LLx + m.X.ResolveBox(res, svgstyle.Horizontal, bw)
		y = r.LLy + m.Y.ResolveBox(res, svgstyle.Vertical, bh)
		w = m.Width.ResolveBox(res, svgstyle.Horizontal, bw)
		h = m.Height.ResolveBox(res, svgstyle.Vertical, bh)
	} else {
		x, y = ctx.Normalize(m.X, svgstyle.Horizontal), ctx.Normalize(m.Y, svgstyle.Vertical)
		w, h = ctx.Normalize(m.Width, svgstyle.Horizontal), ctx.Normalize(m.Height, svgstyle.Vertical)
	}
	if w <= 0 || h <= 0 {
		return
	}
	b.AddClippingRect(ctx, x, y, w, h)

	content := mask.State.PersonalAffine
	if m.ContentUnits == svgdoc.ObjectBoundingBox {
		if objectBbox.Virgin {
			return
		}
		content = content.Mul(bboxMatrix(objectBbox))
	}
	st := ctx.State()
	st.Affine = content.Mul(objectBbox.Affine)
	st.ClipPath, st.Mask, st.Filter, st.Opacity = "", "", "", 1

	for c := ctx.doc.FirstChild(mask); c != nil; c = ctx.doc.NextSibling(c) {
		ctx.DrawNode(c, svgstyle.ModeReinherit)
	}
}

// isDegenerate returns true if the rectangle is empty or invalid.
func isDegenerate(w, h float64) bool {
	return !(w > 0 && h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0)
}
