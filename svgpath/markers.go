package svgpath

import "math"

// VertexKind tells which marker applies at a vertex.
type VertexKind uint8

const (
	VertexStart VertexKind = iota
	VertexMid
	VertexEnd
)

// Vertex is a point of a path where a marker may be drawn.
type Vertex struct {
	Point
	Kind  VertexKind
	Angle float64 // orientation in radians, used by orient="auto"
}

type vertexDirs struct {
	p             Point
	in, out       Point // directions, zero when undefined
	hasIn, hasOut bool
}

func firstNonZero(pts ...Point) (Point, bool) {
	for _, p := range pts {
		if !p.IsZero() {
			return p, true
		}
	}
	return Point{}, false
}

// Vertices returns the marker positions of the path: its first
// vertex, its last vertex and every vertex in between.
func (p Path) Vertices() []Vertex {
	var (
		vs           []vertexDirs
		current      Point
		subpathStart int
	)
	segment := func(end Point, out, in Point, hasOut, hasIn bool) {
		if len(vs) != 0 && hasOut {
			vs[len(vs)-1].out, vs[len(vs)-1].hasOut = out, true
		}
		vs = append(vs, vertexDirs{p: end, in: in, hasIn: hasIn})
		current = end
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			current = Point(op)
			subpathStart = len(vs)
			vs = append(vs, vertexDirs{p: current})
		case LineTo:
			d := Point(op).Sub(current)
			segment(Point(op), d, d, !d.IsZero(), !d.IsZero())
		case QuadTo:
			out, okOut := firstNonZero(op[0].Sub(current), op[1].Sub(current))
			in, okIn := firstNonZero(op[1].Sub(op[0]), op[1].Sub(current))
			segment(op[1], out, in, okOut, okIn)
		case CubicTo:
			out, okOut := firstNonZero(op[0].Sub(current), op[1].Sub(current), op[2].Sub(current))
			in, okIn := firstNonZero(op[2].Sub(op[1]), op[2].Sub(op[0]), op[2].Sub(current))
			segment(op[2], out, in, okOut, okIn)
		case Close:
			if subpathStart >= len(vs) {
				continue
			}
			start := vs[subpathStart]
			d := start.p.Sub(current)
			if !d.IsZero() {
				segment(start.p, d, d, true, true)
			}
			// the closing vertex joins the last segment to the first one
			last := &vs[len(vs)-1]
			if len(vs)-1 != subpathStart {
				last.out, last.hasOut = start.out, start.hasOut
				vs[subpathStart].in, vs[subpathStart].hasIn = last.in, last.hasIn
			}
			current = start.p
		}
	}

	out := make([]Vertex, len(vs))
	for i, v := range vs {
		kind := VertexMid
		switch i {
		case 0:
			kind = VertexStart
		case len(vs) - 1:
			kind = VertexEnd
		}
		out[i] = Vertex{Point: v.p, Kind: kind, Angle: bisector(v)}
	}
	return out
}

func bisector(v vertexDirs) float64 {
	switch {
	case v.hasIn && v.hasOut:
		a1 := math.Atan2(v.in.Y, v.in.X)
		a2 := math.Atan2(v.out.Y, v.out.X)
		angle := (a1 + a2) / 2
		if math.Abs(a2-a1) > math.Pi {
			angle += math.Pi
		}
		return angle
	case v.hasIn:
		return math.Atan2(v.in.Y, v.in.X)
	case v.hasOut:
		return math.Atan2(v.out.Y, v.out.X)
	default:
		return 0
	}
}
