// Package svgbbox tracks axis-aligned bounding boxes expressed
// in arbitrary affine coordinate systems.
//
// A Bbox is created per discrete layer and per drawn shape, and
// merged into the enclosing layer's Bbox once the content is drawn.
package svgbbox

import (
	"math"

	"github.com/benoitkugler/svgrender/svgpath"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Bbox is a rectangle, with LL the minimum corner, expressed in
// the coordinate system defined by Affine.
// A virgin Bbox is empty: its rectangle is meaningless.
type Bbox struct {
	Rect   rect.Rect
	Affine matrix.Matrix
	Virgin bool
}

// New returns an empty box anchored at the given transform.
func New(affine matrix.Matrix) Bbox {
	return Bbox{Affine: affine, Virgin: true}
}

// FromRect returns a non empty box.
func FromRect(affine matrix.Matrix, r rect.Rect) Bbox {
	return Bbox{Rect: r, Affine: affine}
}

// corners returns the corners of src mapped into the
// coordinate system of dst. ok is false when dst's
// transform can't be inverted.
func corners(dst, src Bbox) (xs, ys [4]float64, ok bool) {
	inv, ok := svgpath.Invert(dst.Affine)
	if !ok {
		return xs, ys, false
	}
	// apply src then go back to dst coordinates
	m := src.Affine.Mul(inv)
	for i := 0; i < 4; i++ {
		rx := src.Rect.LLx + (src.Rect.URx - src.Rect.LLx)*float64(i%2)
		ry := src.Rect.LLy + (src.Rect.URy - src.Rect.LLy)*float64(i/2)
		xs[i], ys[i] = svgpath.Apply(m, rx, ry)
	}
	return xs, ys, true
}

func bounds(xs, ys [4]float64) rect.Rect {
	r := rect.Rect{LLx: xs[0], LLy: ys[0], URx: xs[0], URy: ys[0]}
	for i := 1; i < 4; i++ {
		r.LLx = math.Min(r.LLx, xs[i])
		r.LLy = math.Min(r.LLy, ys[i])
		r.URx = math.Max(r.URx, xs[i])
		r.URy = math.Max(r.URy, ys[i])
	}
	return r
}

// Insert grows dst so that it contains src.
// It is a no-op when src is virgin or when dst's transform
// is not invertible.
func (dst *Bbox) Insert(src Bbox) {
	if src.Virgin {
		return
	}
	xs, ys, ok := corners(*dst, src)
	if !ok {
		return
	}
	r := bounds(xs, ys)
	if dst.Virgin {
		dst.Rect = r
		dst.Virgin = false
		return
	}
	dst.Rect.LLx = math.Min(dst.Rect.LLx, r.LLx)
	dst.Rect.LLy = math.Min(dst.Rect.LLy, r.LLy)
	dst.Rect.URx = math.Max(dst.Rect.URx, r.URx)
	dst.Rect.URy = math.Max(dst.Rect.URy, r.URy)
}

// Clip restricts dst to its intersection with src.
// A virgin dst is seeded with src bounds. Disjoint boxes
// collapse to a zero width (or height) rectangle.
// It is a no-op when src is virgin or when dst's transform
// is not invertible.
func (dst *Bbox) Clip(src Bbox) {
	if src.Virgin {
		return
	}
	xs, ys, ok := corners(*dst, src)
	if !ok {
		return
	}
	r := bounds(xs, ys)
	if dst.Virgin {
		dst.Rect = r
		dst.Virgin = false
		return
	}
	out := rect.Rect{
		LLx: math.Max(dst.Rect.LLx, r.LLx),
		LLy: math.Max(dst.Rect.LLy, r.LLy),
		URx: math.Min(dst.Rect.URx, r.URx),
		URy: math.Min(dst.Rect.URy, r.URy),
	}
	if out.URx < out.LLx {
		out.URx = out.LLx
	}
	if out.URy < out.LLy {
		out.URy = out.LLy
	}
	dst.Rect = out
}

// Device returns the bounds of b in device space, that is
// after applying b.Affine. ok is false for a virgin box.
func (b Bbox) Device() (r rect.Rect, ok bool) {
	if b.Virgin {
		return rect.Rect{}, false
	}
	device := New(matrix.Identity)
	device.Insert(b)
	return device.Rect, true
}
