package svgdraw

import (
	"image"

	"github.com/benoitkugler/svgrender/svgbbox"
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
	"github.com/benoitkugler/svgrender/svgtext"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Backend performs the actual drawing operations.
//
// Geometry is given in user space: the current transform,
// fill, stroke and other properties are read from ctx.State().
type Backend interface {
	// RenderPath fills then strokes path. bounds are the extents
	// of the path, used to resolve objectBoundingBox paint servers.
	RenderPath(ctx *DrawingCtx, path svgpath.Path, bounds rect.Rect)
	// RenderText draws a shaped line whose baseline origin is (x, y).
	RenderText(ctx *DrawingCtx, line *svgtext.Line, x, y float64)
	// RenderSurface draws img scaled to the rectangle (x, y, w, h).
	RenderSurface(ctx *DrawingCtx, img image.Image, x, y, w, h float64)

	// PushDiscreteLayer starts a layer. When layer.Isolated is false,
	// the content must be drawn directly on the current surface.
	PushDiscreteLayer(ctx *DrawingCtx, layer *Layer)
	// PopDiscreteLayer ends the layer, whose Bbox is now known,
	// compositing it onto the parent surface.
	PopDiscreteLayer(ctx *DrawingCtx, layer *Layer)

	// AddClippingRect restricts the drawing of the current
	// layer to the given user space rectangle.
	AddClippingRect(ctx *DrawingCtx, x, y, w, h float64)
}

// Layer describes a discrete layer, that is a group of content
// which may need an intermediate surface to be composited.
type Layer struct {
	Opacity    float64
	CompOp     svgstyle.CompOp
	Background svgstyle.EnableBackground

	// Resolved references. The nodes stay acquired while the
	// layer is alive.
	Filter *svgdoc.Node
	Mask   *svgdoc.Node
	// Clip is a clip path in user space units, known when
	// the layer is pushed.
	Clip *svgdoc.Node
	// LateClip is a clip path in objectBoundingBox units, which
	// may only be applied once the content is drawn.
	LateClip *svgdoc.Node

	// Isolated is true when an intermediate surface is needed.
	Isolated bool

	// Affine is the user space transform when the layer is pushed.
	Affine matrix.Matrix
	// Bbox is the extent of the content, only valid when popping.
	Bbox svgbbox.Bbox

	// extents of the clip path, once drawn by DrawLayerClip
	clipBbox *svgbbox.Bbox
}

// nopBackend draws nothing. It is used to compute
// bounding boxes.
type nopBackend struct{}

var _ Backend = nopBackend{}

func (nopBackend) RenderPath(*DrawingCtx, svgpath.Path, rect.Rect) {}
func (nopBackend) RenderText(*DrawingCtx, *svgtext.Line, float64, float64) {}
func (nopBackend) RenderSurface(*DrawingCtx, image.Image, float64, float64, float64, float64) {}
func (nopBackend) PushDiscreteLayer(*DrawingCtx, *Layer) {}
func (nopBackend) PopDiscreteLayer(*DrawingCtx, *Layer) {}
func (nopBackend) AddClippingRect(*DrawingCtx, float64, float64, float64, float64) {}
