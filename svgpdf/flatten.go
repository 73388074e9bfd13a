package svgpdf

import (
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/jung-kurt/gofpdf"
)

// curveSteps is the number of segments used to flatten a curve.
const curveSteps = 12

// flattener approximates a path by line segments.
type flattener struct {
	points  []gofpdf.PointType
	current svgpath.Point
}

func (f *flattener) add(p svgpath.Point) {
	f.points = append(f.points, gofpdf.PointType{X: p.X, Y: p.Y})
	f.current = p
}

func (f *flattener) Start(a svgpath.Point) { f.add(a) }
func (f *flattener) Line(b svgpath.Point)  { f.add(b) }

func (f *flattener) QuadBezier(b, c svgpath.Point) {
	a := f.current
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		f.add(svgpath.Point{
			X: u*u*a.X + 2*u*t*b.X + t*t*c.X,
			Y: u*u*a.Y + 2*u*t*b.Y + t*t*c.Y,
		})
	}
}

func (f *flattener) CubeBezier(b, c, d svgpath.Point) {
	a := f.current
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		f.add(svgpath.Point{
			X: u*u*u*a.X + 3*u*u*t*b.X + 3*u*t*t*c.X + t*t*t*d.X,
			Y: u*u*u*a.Y + 3*u*u*t*b.Y + 3*u*t*t*c.Y + t*t*t*d.Y,
		})
	}
}

func (f *flattener) Stop(bool) {}

// polygon returns the points of the flattened path. Sub-paths
// are concatenated.
func polygon(path svgpath.Path) []gofpdf.PointType {
	var f flattener
	path.AddTo(&f)
	return f.points
}
