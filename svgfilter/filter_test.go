package svgfilter

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/benoitkugler/svgrender/svgbbox"
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgstyle"
	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

func newFilter(t *testing.T, src string, bbox rect.Rect) Filter {
	t.Helper()
	doc, err := svgdoc.ReadDocument(strings.NewReader("<svg>" + src + "</svg>"))
	if err != nil {
		t.Fatal(err)
	}
	node := doc.Lookup("f")
	if node == nil || node.Kind != svgdoc.KindFilter {
		t.Fatal("missing filter f")
	}
	return Filter{
		Doc:      doc,
		Node:     node,
		Bbox:     svgbbox.FromRect(matrix.Identity, bbox),
		Resolver: svgstyle.Resolver{DPIX: 90, DPIY: 90, ViewBoxW: 100, ViewBoxH: 100, FontSize: 12},
	}
}

func filled(bounds, r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(bounds)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func rgba(img *image.RGBA, x, y int) color.RGBA { return img.RGBAAt(x, y) }

var (
	opaqueRed  = color.RGBA{R: 0xFF, A: 0xFF}
	opaqueBlue = color.RGBA{B: 0xFF, A: 0xFF}
)

func TestFlood(t *testing.T) {
	f := newFilter(t, `<filter id="f" x="0" y="0" width="1" height="1">
		<feFlood flood-color="red" flood-opacity="0.5"/>
	</filter>`, rect.Rect{LLx: 2, LLy: 2, URx: 6, URy: 6})
	out := f.Apply(image.NewRGBA(image.Rect(0, 0, 10, 10)), nil)

	want := color.RGBA{R: 0x80, A: 0x80}
	for _, test := range []struct {
		x, y int
		want color.RGBA
	}{
		{2, 2, want},
		{5, 5, want},
		{1, 2, color.RGBA{}},
		{6, 6, color.RGBA{}},
	} {
		if got := rgba(out, test.x, test.y); got != test.want {
			t.Errorf("(%d, %d): expected %v, got %v", test.x, test.y, test.want, got)
		}
	}
}

func TestDefaultRegion(t *testing.T) {
	f := newFilter(t, `<filter id="f"><feFlood/></filter>`, rect.Rect{LLx: 10, LLy: 10, URx: 20, URy: 20})
	out := f.Apply(image.NewRGBA(image.Rect(0, 0, 40, 40)), nil)
	// -10% / 120% of the bounding box
	want := image.Rect(9, 9, 21, 21)
	for y := range 40 {
		for x := range 40 {
			inside := image.Pt(x, y).In(want)
			if got := out.RGBAAt(x, y).A == 0xFF; got != inside {
				t.Fatalf("(%d, %d): expected inside=%v", x, y, inside)
			}
		}
	}
}

func TestEmptyContent(t *testing.T) {
	f := newFilter(t, `<filter id="f"><feFlood/></filter>`, rect.Rect{})
	f.Bbox = svgbbox.New(matrix.Identity)
	src := filled(image.Rect(0, 0, 4, 4), image.Rect(0, 0, 4, 4), opaqueRed)
	if out := f.Apply(src, nil); out.RGBAAt(1, 1) != (color.RGBA{}) {
		t.Error("empty content should give an empty result")
	}

	f = newFilter(t, `<filter id="f"/>`, rect.Rect{URx: 4, URy: 4})
	if out := f.Apply(src, nil); out.RGBAAt(1, 1) != (color.RGBA{}) {
		t.Error("a filter without primitive should give an empty result")
	}
}

func TestOffset(t *testing.T) {
	const region = `filterUnits="userSpaceOnUse" x="0" y="0" width="20" height="20"`
	src := filled(image.Rect(0, 0, 20, 20), image.Rect(5, 5, 6, 6), opaqueRed)

	f := newFilter(t, `<filter id="f" `+region+`><feOffset dx="2" dy="1"/></filter>`, rect.Rect{URx: 20, URy: 20})
	out := f.Apply(src, nil)
	if out.RGBAAt(7, 6) != opaqueRed || out.RGBAAt(5, 5) != (color.RGBA{}) {
		t.Errorf("unexpected offset result")
	}

	// offsets are scaled to the device space
	f.Bbox.Affine = matrix.Scale(2, 2)
	out = f.Apply(src, nil)
	if out.RGBAAt(9, 7) != opaqueRed {
		t.Errorf("unexpected scaled offset result")
	}
}

func TestColorMatrix(t *testing.T) {
	bounds := image.Rect(0, 0, 4, 4)
	for _, test := range []struct {
		primitive string
		src       color.RGBA
		want      color.RGBA
	}{
		{`<feColorMatrix type="luminanceToAlpha"/>`, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, color.RGBA{A: 0xFF}},
		{`<feColorMatrix type="saturate" values="0"/>`, opaqueRed, color.RGBA{54, 54, 54, 0xFF}},
		{`<feColorMatrix type="hueRotate" values="0"/>`, opaqueRed, opaqueRed},
		{`<feColorMatrix values="0 0 1 0 0  0 1 0 0 0  1 0 0 0 0  0 0 0 1 0"/>`, opaqueRed, opaqueBlue},
		// invalid: identity
		{`<feColorMatrix values="1 2 3"/>`, opaqueRed, opaqueRed},
	} {
		f := newFilter(t, `<filter id="f" x="0" y="0" width="1" height="1">`+test.primitive+`</filter>`, rect.Rect{URx: 4, URy: 4})
		out := f.Apply(filled(bounds, bounds, test.src), nil)
		if got := out.RGBAAt(1, 1); got != test.want {
			t.Errorf("%s: expected %v, got %v", test.primitive, test.want, got)
		}
	}
}

func TestCompositeAndBlend(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 10)
	src := filled(bounds, image.Rect(0, 0, 5, 10), opaqueBlue)
	const region = `x="0" y="0" width="1" height="1"`

	f := newFilter(t, `<filter id="f" `+region+`>
		<feFlood flood-color="red" result="r"/>
		<feComposite in="r" in2="SourceGraphic" operator="in"/>
	</filter>`, rect.Rect{URx: 10, URy: 10})
	out := f.Apply(src, nil)
	if diff := cmp.Diff([]color.RGBA{opaqueRed, {}}, []color.RGBA{out.RGBAAt(2, 2), out.RGBAAt(7, 2)}); diff != "" {
		t.Errorf("composite in (-want +got):\n%s", diff)
	}

	f = newFilter(t, `<filter id="f" `+region+`>
		<feFlood flood-color="white" result="w"/>
		<feBlend in="SourceGraphic" in2="w" mode="multiply"/>
	</filter>`, rect.Rect{URx: 10, URy: 10})
	out = f.Apply(src, nil)
	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	if diff := cmp.Diff([]color.RGBA{opaqueBlue, white}, []color.RGBA{out.RGBAAt(2, 2), out.RGBAAt(7, 2)}); diff != "" {
		t.Errorf("blend multiply (-want +got):\n%s", diff)
	}

	f = newFilter(t, `<filter id="f" `+region+`>
		<feFlood flood-color="red" result="r"/>
		<feMerge><feMergeNode in="r"/><feMergeNode in="SourceGraphic"/></feMerge>
	</filter>`, rect.Rect{URx: 10, URy: 10})
	out = f.Apply(src, nil)
	if diff := cmp.Diff([]color.RGBA{opaqueBlue, opaqueRed}, []color.RGBA{out.RGBAAt(2, 2), out.RGBAAt(7, 2)}); diff != "" {
		t.Errorf("merge (-want +got):\n%s", diff)
	}
}

func TestArithmetic(t *testing.T) {
	bounds := image.Rect(0, 0, 2, 2)
	src := filled(bounds, bounds, color.RGBA{0x80, 0, 0, 0x80})
	f := newFilter(t, `<filter id="f" x="0" y="0" width="1" height="1">
		<feComposite in="SourceGraphic" in2="SourceGraphic" operator="arithmetic" k2="2" k4="0.1"/>
	</filter>`, rect.Rect{URx: 2, URy: 2})
	out := f.Apply(src, nil)
	// 2 * 0.5 + 0.1, clamped; color channels never exceed alpha
	if got := out.RGBAAt(0, 0); got != (color.RGBA{0xFF, 0x1A, 0x1A, 0xFF}) {
		t.Errorf("unexpected arithmetic result %v", got)
	}
}

func TestBlur(t *testing.T) {
	bounds := image.Rect(0, 0, 21, 21)
	src := filled(bounds, image.Rect(10, 10, 11, 11), opaqueRed)
	f := newFilter(t, `<filter id="f" filterUnits="userSpaceOnUse" x="0" y="0" width="21" height="21">
		<feGaussianBlur stdDeviation="2"/>
	</filter>`, rect.Rect{URx: 21, URy: 21})
	out := f.Apply(src, nil)
	center, near, far := out.RGBAAt(10, 10), out.RGBAAt(12, 10), out.RGBAAt(0, 0)
	if !(center.A < 0xFF && near.A > 0 && near.A < center.A && far.A == 0) {
		t.Errorf("unexpected blur: center %v, near %v, far %v", center, near, far)
	}
	if near.G != 0 || near.B != 0 {
		t.Errorf("blur should keep the hue, got %v", near)
	}

	f = newFilter(t, `<filter id="f" x="0" y="0" width="1" height="1"><feGaussianBlur stdDeviation="0"/></filter>`, rect.Rect{URx: 21, URy: 21})
	if out := f.Apply(src, nil); out.RGBAAt(10, 10) != opaqueRed {
		t.Error("a null deviation should keep the input")
	}
}

func TestAnisotropicBlur(t *testing.T) {
	bounds := image.Rect(0, 0, 21, 21)
	src := filled(bounds, image.Rect(10, 10, 11, 11), opaqueRed)
	for _, test := range []struct {
		deviation      string
		alongX, alongY bool
	}{
		{"2 0", true, false},
		{"0 2", false, true},
		{"3 1", true, true},
	} {
		f := newFilter(t, `<filter id="f" filterUnits="userSpaceOnUse" x="0" y="0" width="21" height="21">
			<feGaussianBlur stdDeviation="`+test.deviation+`"/>
		</filter>`, rect.Rect{URx: 21, URy: 21})
		out := f.Apply(src, nil)
		if got := out.RGBAAt(12, 10).A > 0; got != test.alongX {
			t.Errorf("%s: blur along x is %v", test.deviation, got)
		}
		if got := out.RGBAAt(10, 12).A > 0; got != test.alongY {
			t.Errorf("%s: blur along y is %v", test.deviation, got)
		}
		if c := out.RGBAAt(10, 10); c.A == 0 || c.A == 0xFF || c.G != 0 || c.B != 0 {
			t.Errorf("%s: unexpected center %v", test.deviation, c)
		}
		if far := out.RGBAAt(10, 20); test.alongX && !test.alongY && far.A != 0 {
			t.Errorf("%s: unexpected vertical spread %v", test.deviation, far)
		}
	}

	// the premultiplied sum is kept by the separable blur
	f := newFilter(t, `<filter id="f" filterUnits="userSpaceOnUse" x="0" y="0" width="21" height="21">
		<feGaussianBlur stdDeviation="2 0"/>
	</filter>`, rect.Rect{URx: 21, URy: 21})
	out := f.Apply(src, nil)
	var total int
	for x := range 21 {
		total += int(out.RGBAAt(x, 10).A)
	}
	if total < 0xFF-6 || total > 0xFF+6 {
		t.Errorf("unexpected total alpha %d", total)
	}
}

func TestInputs(t *testing.T) {
	bounds := image.Rect(0, 0, 4, 4)
	src := filled(bounds, bounds, color.RGBA{0x40, 0x40, 0, 0x80})
	bg := filled(bounds, bounds, opaqueBlue)
	const region = `x="0" y="0" width="1" height="1"`
	for _, test := range []struct {
		in   string
		want color.RGBA
	}{
		{"SourceAlpha", color.RGBA{A: 0x80}},
		{"BackgroundImage", opaqueBlue},
		{"BackgroundAlpha", color.RGBA{A: 0xFF}},
		{"FillPaint", color.RGBA{}},
		{"missing", color.RGBA{0x40, 0x40, 0, 0x80}},
	} {
		f := newFilter(t, `<filter id="f" `+region+`><feOffset in="`+test.in+`"/></filter>`, rect.Rect{URx: 4, URy: 4})
		if got := f.Apply(src, bg).RGBAAt(1, 1); got != test.want {
			t.Errorf("%s: expected %v, got %v", test.in, test.want, got)
		}
	}
}

func TestPrimitiveSubregion(t *testing.T) {
	f := newFilter(t, `<filter id="f" primitiveUnits="objectBoundingBox" x="0" y="0" width="1" height="1">
		<feFlood x="0.5" width="0.25"/>
	</filter>`, rect.Rect{LLx: 0, LLy: 0, URx: 8, URy: 8})
	out := f.Apply(image.NewRGBA(image.Rect(0, 0, 8, 8)), nil)
	for x := range 8 {
		want := x == 4 || x == 5
		if got := out.RGBAAt(x, 3).A == 0xFF; got != want {
			t.Errorf("column %d: expected flooded=%v", x, want)
		}
	}
}
