package svgdoc

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink"
	width="100" height="50" viewBox="0 0 200 100">
	<title>Sample</title>
	<desc>A test document</desc>
	<defs>
		<linearGradient id="lg" x1="10" xlink:href="#base">
			<stop offset="50%" stop-color="red"/>
		</linearGradient>
		<clipPath id="c" clipPathUnits="objectBoundingBox"><circle cx="0.5" cy="0.5" r="0.5"/></clipPath>
	</defs>
	<g id="group" fill="blue" style="stroke: red; stroke-width: 2" transform="translate(5 6)">
		<path id="p" d="M 0 0 L 10 10"/>
		<rect x="1" y="2" width="30%" height="4" rx="1"/>
	</g>
	<text x="1 2 3" y="4">Hello <tspan>world</tspan></text>
	<use xlink:href="#p" x="3"/>
</svg>`

func TestReadDocument(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Root.Kind != KindSvg {
		t.Fatalf("unexpected root %s", doc.Root.Kind)
	}
	if len(doc.Titles) != 1 || doc.Titles[0] != "Sample" {
		t.Errorf("unexpected titles %v", doc.Titles)
	}
	if len(doc.Descriptions) != 1 || doc.Descriptions[0] != "A test document" {
		t.Errorf("unexpected descriptions %v", doc.Descriptions)
	}

	svg := doc.Root.Payload.(*Svg)
	if !svg.ViewBox.Set || svg.ViewBox.Value != (ViewBox{0, 0, 200, 100}) {
		t.Errorf("unexpected viewBox %v", svg.ViewBox)
	}
	if w, _ := svg.Size(); w != svgstyle.Px(100) {
		t.Errorf("unexpected width %v", w)
	}

	var kinds []Kind
	for _, c := range doc.Children(doc.Root) {
		kinds = append(kinds, c.Kind)
	}
	if diff := cmp.Diff([]Kind{KindTitle, KindDesc, KindDefs, KindGroup, KindText, KindUse}, kinds); diff != "" {
		t.Errorf("children (-want +got):\n%s", diff)
	}

	group := doc.Lookup("group")
	if group == nil {
		t.Fatal("missing group")
	}
	if group.State.PersonalAffine != matrix.Translate(5, 6) || group.State.Affine != matrix.Translate(5, 6) {
		t.Errorf("unexpected transform %v", group.State.PersonalAffine)
	}
	if st := group.State; !st.Fill.Set || st.Fill.Value.Color.RGBA != (color.NRGBA{0, 0, 0xFF, 0xFF}) ||
		!st.Stroke.Set || st.StrokeWidth.Value != svgstyle.Px(2) {
		t.Errorf("unexpected group style %v %v %v", st.Fill, st.Stroke, st.StrokeWidth)
	}

	p := doc.Lookup("p")
	if doc.Parent(p) != group {
		t.Error("invalid parent")
	}
	want := svgpath.Path{svgpath.MoveTo{0, 0}, svgpath.LineTo{10, 10}}
	if diff := cmp.Diff(want, p.Payload.(*PathData).Data); diff != "" {
		t.Errorf("path (-want +got):\n%s", diff)
	}
	rect := doc.NextSibling(p).Payload.(*Rect)
	if rect.Width != (Length{Value: 0.3, Unit: svgstyle.UnitPercent}) || !rect.RX.Set || rect.RY.Set {
		t.Errorf("unexpected rect %+v", rect)
	}

	lg := doc.Lookup("lg").Payload.(*LinearGradient)
	if lg.Href != "base" || !lg.X1.Set || lg.Y1.Set {
		t.Errorf("unexpected gradient %+v", lg)
	}
	stop := doc.FirstChild(doc.Lookup("lg"))
	if stop.Payload.(*Stop).Offset != 0.5 || stop.State.StopColor.Value.RGBA != (color.NRGBA{0xFF, 0, 0, 0xFF}) {
		t.Errorf("unexpected stop %+v", stop)
	}
	if doc.Lookup("c").Payload.(*ClipPath).Units != ObjectBoundingBox {
		t.Error("unexpected clip path units")
	}

	uses := doc.Children(doc.Root)
	if u := uses[len(uses)-1].Payload.(*Use); u.Href != "p" || u.X != svgstyle.Px(3) {
		t.Errorf("unexpected use %+v", u)
	}
}

func TestTextContent(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	children := doc.Children(doc.Root)
	text := children[4]
	if diff := cmp.Diff([]Length{svgstyle.Px(1), svgstyle.Px(2), svgstyle.Px(3)}, text.Payload.(*Text).X); diff != "" {
		t.Errorf("x (-want +got):\n%s", diff)
	}
	content := doc.Children(text)
	if len(content) != 2 || content[0].Kind != KindChars || content[1].Kind != KindTSpan {
		t.Fatalf("unexpected text content %v", content)
	}
	if s := content[0].Payload.(*Chars).Text; s != "Hello " {
		t.Errorf("unexpected characters %q", s)
	}
	inner := doc.FirstChild(content[1])
	if inner == nil || inner.Payload.(*Chars).Text != "world" {
		t.Error("missing tspan characters")
	}
}

func TestErrorModes(t *testing.T) {
	const input = `<svg xmlns="http://www.w3.org/2000/svg"><blink/><rect width="abc"/></svg>`
	for _, mode := range []ErrorMode{IgnoreErrorMode, WarnErrorMode} {
		doc, err := ReadDocument(strings.NewReader(input), WithErrorMode(mode))
		if err != nil {
			t.Fatal(err)
		}
		if c := doc.FirstChild(doc.Root); c.Kind != KindUnknown || c.Tag != "blink" {
			t.Errorf("unexpected node %v", c)
		}
	}

	_, err := ReadDocument(strings.NewReader(input), WithErrorMode(StrictErrorMode))
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Tag != "blink" {
		t.Fatalf("expected a parse error, got %v", err)
	}
	if !errors.Is(err, ErrMalformed) {
		t.Error("parse error should match ErrMalformed")
	}

	_, err = ReadDocument(strings.NewReader(`<svg><rect width="abc"/></svg>`), WithErrorMode(StrictErrorMode))
	if !errors.As(err, &perr) || perr.Tag != "rect" {
		t.Fatalf("expected a parse error, got %v", err)
	}
}

func TestInvalidDocuments(t *testing.T) {
	if _, err := ReadDocument(strings.NewReader(`<svg><g></svg>`)); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected malformed error, got %v", err)
	}
	if _, err := ReadDocument(strings.NewReader(`<html></html>`)); !errors.Is(err, ErrNotSVG) {
		t.Errorf("expected not svg error, got %v", err)
	}
	if _, err := ReadDocument(strings.NewReader(``)); !errors.Is(err, ErrNotSVG) {
		t.Errorf("expected not svg error, got %v", err)
	}
}

func TestConditionalAttributes(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(`<svg>
		<switch>
			<g requiredExtensions="http://example.org/ext"/>
			<g requiredFeatures="http://www.w3.org/TR/SVG11/feature#Shape"/>
			<g requiredFeatures="http://www.w3.org/TR/SVG11/feature#Font"/>
			<g systemLanguage="fr, en-US"/>
			<g systemLanguage="zh-Hant-TW, -"/>
			<g systemLanguage=""/>
		</switch>
	</svg>`))
	if err != nil {
		t.Fatal(err)
	}
	groups := doc.Children(doc.FirstChild(doc.Root))
	var conds []bool
	for _, g := range groups {
		conds = append(conds, g.State.CondTrue)
	}
	if diff := cmp.Diff([]bool{false, true, false, true, true, true}, conds); diff != "" {
		t.Errorf("conditions (-want +got):\n%s", diff)
	}
	for i, want := range [][]string{nil, nil, nil, {"fr", "en-US"}, {"zh-Hant-TW"}, {}} {
		var got []string
		if tags := groups[i].SystemLanguage; tags != nil {
			got = []string{}
			for _, tag := range tags {
				got = append(got, tag.String())
			}
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("languages of group %d (-want +got):\n%s", i, diff)
		}
	}

	_, err = ReadDocument(strings.NewReader(`<svg><g systemLanguage="en, -"/></svg>`), WithErrorMode(StrictErrorMode))
	if err == nil {
		t.Error("expected an error for an invalid language tag in strict mode")
	}
}

func TestDataURIImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{0xFF, 0, 0, 0xFF})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	redPixel := base64.StdEncoding.EncodeToString(buf.Bytes())

	doc, err := ReadDocument(strings.NewReader(`<svg xmlns:xlink="http://www.w3.org/1999/xlink">
		<image width="10" height="10" xlink:href="data:image/png;base64,` + redPixel + `"/>
		<image width="10" height="10" xlink:href="missing.png"/>
	</svg>`), WithBaseDir(t.TempDir()))
	if err != nil {
		t.Fatal(err)
	}
	images := doc.Children(doc.Root)
	if img := images[0].Payload.(*Image).Img; img == nil || img.Bounds().Dx() != 1 {
		t.Errorf("data URI not decoded")
	}
	if images[1].Payload.(*Image).Img != nil {
		t.Error("missing image should not be decoded")
	}
}

func TestAspectRatio(t *testing.T) {
	par, err := ParseAspectRatio("xMinYMax slice")
	if err != nil {
		t.Fatal(err)
	}
	if par != (AspectRatio{Align: AlignXMinYMax, Slice: true}) {
		t.Errorf("unexpected %v", par)
	}

	// a 10x20 box meets into 100x100: scale 5, centered horizontally
	m := DefaultAspectRatio.Fit(ViewBox{0, 0, 10, 20}, 0, 0, 100, 100)
	if x, y := svgpath.Apply(m, 0, 0); x != 25 || y != 0 {
		t.Errorf("unexpected origin (%g, %g)", x, y)
	}
	m = AspectRatio{Align: AlignNone}.Fit(ViewBox{10, 10, 10, 20}, 0, 0, 100, 100)
	if x, y := svgpath.Apply(m, 20, 30); x != 100 || y != 100 {
		t.Errorf("unexpected corner (%g, %g)", x, y)
	}
}
