package svgpath

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

func TestParsePathData(t *testing.T) {
	for _, test := range []struct {
		d        string
		expected Path
	}{
		{"M 10 20 L 30 40 Z", Path{MoveTo{10, 20}, LineTo{30, 40}, Close{}}},
		{"m10,20 l5-5 h10 v10", Path{MoveTo{10, 20}, LineTo{15, 15}, LineTo{25, 15}, LineTo{25, 25}}},
		{"M0 0 10 0 10 10", Path{MoveTo{0, 0}, LineTo{10, 0}, LineTo{10, 10}}},
		{"M.5.5L1e1-2", Path{MoveTo{0.5, 0.5}, LineTo{10, -2}}},
		{"M0 0Q5 5 10 0T20 0", Path{MoveTo{0, 0}, QuadTo{{5, 5}, {10, 0}}, QuadTo{{15, -5}, {20, 0}}}},
		{"M0 0C0 5 5 5 5 0S10-5 10 0", Path{
			MoveTo{0, 0},
			CubicTo{{0, 5}, {5, 5}, {5, 0}},
			CubicTo{{5, -5}, {10, -5}, {10, 0}},
		}},
		{"M0 0 L10 0 Z L0 10", Path{MoveTo{0, 0}, LineTo{10, 0}, Close{}, MoveTo{0, 0}, LineTo{0, 10}}},
		{"M0 0 A 0 5 0 0 1 10 0", Path{MoveTo{0, 0}, LineTo{10, 0}}},
	} {
		got, err := ParsePathData(test.d)
		if err != nil {
			t.Fatalf("unexpected error for %q: %s", test.d, err)
		}
		if diff := cmp.Diff(test.expected, got); diff != "" {
			t.Errorf("path %q (-want +got):\n%s", test.d, diff)
		}
	}
}

func TestParsePathDataErrors(t *testing.T) {
	for _, d := range []string{
		"L 10 10",
		"M 10",
		"M 10 10 L 5",
		"M 0 0 A 5 5 0 2 1 10 0",
		"M 0 0 L x 1",
	} {
		_, err := ParsePathData(d)
		if err == nil {
			t.Errorf("expected error for %q", d)
		}
	}

	// the valid prefix is kept
	p, err := ParsePathData("M 0 0 L 10 10 L 5")
	if !errors.Is(err, errParamMismatch) {
		t.Fatalf("unexpected error %v", err)
	}
	if diff := cmp.Diff(Path{MoveTo{0, 0}, LineTo{10, 10}}, p); diff != "" {
		t.Errorf("prefix (-want +got):\n%s", diff)
	}
}

func TestArcFlagsWithoutSeparators(t *testing.T) {
	a, err := ParsePathData("M0 0a5 5 0 1110 0")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParsePathData("M0 0 a 5 5 0 1 1 10 0")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(b, a); diff != "" {
		t.Errorf("arc (-want +got):\n%s", diff)
	}
	end := a[len(a)-1].(CubicTo)[2]
	if end != (Point{10, 0}) {
		t.Errorf("arc should end exactly at (10,0), got %v", end)
	}
}

func TestExtents(t *testing.T) {
	var p Path
	p.AddEllipse(50, 40, 10, 20)
	r, ok := p.Extents()
	if !ok {
		t.Fatal("empty extents")
	}
	want := rect.Rect{LLx: 40, LLy: 20, URx: 60, URy: 60}
	if diff := cmp.Diff(want, r, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("ellipse extents (-want +got):\n%s", diff)
	}

	// the control points lie outside of the curve extents
	p = Path{MoveTo{0, 0}, CubicTo{{0, 10}, {10, 10}, {10, 0}}}
	r, _ = p.Extents()
	if math.Abs(r.URy-7.5) > 1e-9 || r.LLy != 0 {
		t.Errorf("unexpected cubic extents %v", r)
	}

	if _, ok := (Path{}).Extents(); ok {
		t.Error("expected empty extents")
	}
}

func TestTransform(t *testing.T) {
	var p Path
	p.AddRect(0, 0, 1, 2)
	got := p.Transform(matrix.Translate(5, 6).Mul(matrix.Scale(2, 2)))
	want := Path{MoveTo{10, 12}, LineTo{12, 12}, LineTo{12, 16}, LineTo{10, 16}, Close{}}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("transform (-want +got):\n%s", diff)
	}
}

func TestRoundRectClamp(t *testing.T) {
	var p Path
	p.AddRoundRect(0, 0, 10, 4, 20, 20)
	r, _ := p.Extents()
	if diff := cmp.Diff(rect.Rect{URx: 10, URy: 4}, r, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("round rect extents (-want +got):\n%s", diff)
	}
}

func TestVertices(t *testing.T) {
	p := Path{MoveTo{0, 0}, LineTo{10, 0}, LineTo{10, 10}}
	got := p.Vertices()
	want := []Vertex{
		{Point: Point{0, 0}, Kind: VertexStart, Angle: 0},
		{Point: Point{10, 0}, Kind: VertexMid, Angle: math.Pi / 4},
		{Point: Point{10, 10}, Kind: VertexEnd, Angle: math.Pi / 2},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("vertices (-want +got):\n%s", diff)
	}

	// closed triangle: the closing vertex bisects last and first segments
	p = Path{MoveTo{0, 0}, LineTo{10, 0}, LineTo{0, 10}, Close{}}
	got = p.Vertices()
	if len(got) != 4 {
		t.Fatalf("expected 4 vertices, got %d", len(got))
	}
	if got[3].Point != (Point{0, 0}) || got[3].Kind != VertexEnd {
		t.Errorf("unexpected closing vertex %v", got[3])
	}
	// in direction (0,-1), out direction (1,0)
	if math.Abs(got[3].Angle-(-math.Pi/4)) > 1e-12 {
		t.Errorf("unexpected closing angle %v", got[3].Angle)
	}
}

type recordingAdder struct{ ops []string }

func (r *recordingAdder) Start(a Point)            { r.ops = append(r.ops, "start") }
func (r *recordingAdder) Line(b Point)             { r.ops = append(r.ops, "line") }
func (r *recordingAdder) QuadBezier(b, c Point)    { r.ops = append(r.ops, "quad") }
func (r *recordingAdder) CubeBezier(b, c, d Point) { r.ops = append(r.ops, "cube") }
func (r *recordingAdder) Stop(closeLoop bool) {
	if closeLoop {
		r.ops = append(r.ops, "close")
	} else {
		r.ops = append(r.ops, "stop")
	}
}

func TestAddTo(t *testing.T) {
	p := Path{MoveTo{}, LineTo{1, 1}, QuadTo{}, Close{}, MoveTo{}, CubicTo{}}
	var r recordingAdder
	p.AddTo(&r)
	want := []string{"stop", "start", "line", "quad", "close", "stop", "start", "cube", "stop"}
	if diff := cmp.Diff(want, r.ops); diff != "" {
		t.Errorf("adder calls (-want +got):\n%s", diff)
	}
}
