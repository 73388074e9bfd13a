package svgstyle

import (
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/matrix"
)

func TestParseColor(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected ColorSpec
	}{
		{"#FBD9BD", ColorSpec{RGBA: color.NRGBA{0xFB, 0xD9, 0xBD, 0xFF}}},
		{"#f00", ColorSpec{RGBA: color.NRGBA{0xFF, 0, 0, 0xFF}}},
		{"steelblue", ColorSpec{RGBA: color.NRGBA{70, 130, 180, 0xFF}}},
		{"rgb(10, 20, 30)", ColorSpec{RGBA: color.NRGBA{10, 20, 30, 0xFF}}},
		{"rgb(100%, 50%, 0%)", ColorSpec{RGBA: color.NRGBA{0xFF, 128, 0, 0xFF}}},
		{"rgba(0,0,0,0.5)", ColorSpec{RGBA: color.NRGBA{0, 0, 0, 128}}},
		{"currentColor", ColorSpec{CurrentColor: true}},
	} {
		got, err := ParseColor(test.in)
		if err != nil {
			t.Fatalf("%s: %s", test.in, err)
		}
		if got != test.expected {
			t.Errorf("%s: expected %v, got %v", test.in, test.expected, got)
		}
	}

	for _, in := range []string{"", "#12", "rgb(1,2)", "notacolor", "#zzzzzz"} {
		if _, err := ParseColor(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestParsePaint(t *testing.T) {
	p, err := ParsePaint("none")
	if err != nil || p != nil {
		t.Fatalf("unexpected paint %v %v", p, err)
	}
	p, err = ParsePaint("url(#lg) #00f")
	if err != nil {
		t.Fatal(err)
	}
	want := &PaintServer{Kind: PaintReference, IRI: "lg", Fallback: Solid(ColorSpec{RGBA: color.NRGBA{0, 0, 0xFF, 0xFF}})}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("paint (-want +got):\n%s", diff)
	}
	if p.String() != "url(#lg)" {
		t.Errorf("unexpected string %s", p)
	}
}

func TestParseLength(t *testing.T) {
	r := Resolver{DPIX: 90, DPIY: 90, ViewBoxW: 200, ViewBoxH: 100, FontSize: 10}
	for _, test := range []struct {
		in       string
		axis     Axis
		expected float64
	}{
		{"12", Horizontal, 12},
		{"12px", Horizontal, 12},
		{"1in", Horizontal, 90},
		{"2.54cm", Vertical, 90},
		{"72pt", Horizontal, 90},
		{"6pc", Horizontal, 90},
		{"1.5em", Horizontal, 15},
		{"2ex", Horizontal, 10},
		{"50%", Horizontal, 100},
		{"50%", Vertical, 50},
		{"100%", Diagonal, math.Sqrt(200*200+100*100) / math.Sqrt2},
	} {
		l, err := ParseLength(test.in)
		if err != nil {
			t.Fatal(err)
		}
		if got := l.Resolve(r, test.axis); math.Abs(got-test.expected) > 1e-9 {
			t.Errorf("%s: expected %g, got %g", test.in, test.expected, got)
		}
	}
	if _, err := ParseLength("12qq"); err == nil {
		t.Error("expected error for invalid unit")
	}
}

func TestParseTransform(t *testing.T) {
	for _, test := range []struct {
		in       string
		expected matrix.Matrix
	}{
		{"translate(10)", matrix.Translate(10, 0)},
		{"scale(2)", matrix.Scale(2, 2)},
		{"translate(10, 20) scale(2)", matrix.Matrix{2, 0, 0, 2, 10, 20}},
		{"rotate(90)", matrix.Matrix{0, 1, -1, 0, 0, 0}},
		{"rotate(180 5 5)", matrix.Matrix{-1, 0, 0, -1, 10, 10}},
		{"matrix(1 2 3 4 5 6)", matrix.Matrix{1, 2, 3, 4, 5, 6}},
		{"skewX(45)", matrix.Matrix{1, 0, 1, 1, 0, 0}},
	} {
		got, err := ParseTransform(test.in)
		if err != nil {
			t.Fatalf("%s: %s", test.in, err)
		}
		if diff := cmp.Diff(test.expected, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("%s (-want +got):\n%s", test.in, diff)
		}
	}

	for _, in := range []string{"rotate(1 2)", "translate", "foo(1)"} {
		if _, err := ParseTransform(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestSetProperty(t *testing.T) {
	st := NewState()
	for _, kv := range [][2]string{
		{"stroke-dasharray", "5"},
		{"stroke-linejoin", "round"},
		{"stroke-linecap", "square"},
		{"fill-opacity", "50%"},
		{"font-weight", "bold"},
		{"text-decoration", "underline line-through"},
		{"enable-background", "new 0 0 10 10"},
		{"display", "none"},
		{"filter", "url(#blur)"},
	} {
		mustSet(t, &st, kv[0], kv[1])
	}
	if diff := cmp.Diff([]Length{Px(5), Px(5)}, st.Dash.Value); diff != "" {
		t.Errorf("dash (-want +got):\n%s", diff)
	}
	if st.Join.Value != Round || st.Cap.Value != SquareCap || st.FillOpacity.Value != 0.5 {
		t.Errorf("unexpected stroke settings %v %v %v", st.Join.Value, st.Cap.Value, st.FillOpacity.Value)
	}
	if st.FontWeight.Value != 700 || st.TextDecoration.Value != DecorationUnderline|DecorationStrike {
		t.Errorf("unexpected font settings")
	}
	if st.EnableBackground != BackgroundNew || st.Visible.Value || st.Filter != "blur" {
		t.Errorf("unexpected settings %+v", st)
	}

	known, _ := st.SetProperty("not-a-property", "1")
	if known {
		t.Error("unknown property reported as known")
	}
	if _, err := st.SetProperty("stroke-dasharray", "1 -2"); err == nil {
		t.Error("expected error for negative dash")
	}
	if _, err := st.SetProperty("comp-op", "unknown"); err == nil {
		t.Error("expected error for unknown operator")
	}
}
