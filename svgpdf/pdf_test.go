package svgpdf

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jung-kurt/gofpdf"
	"seehuhn.de/go/geom/matrix"
)

func readDoc(t *testing.T, src string) *svgdoc.Document {
	t.Helper()
	doc, err := svgdoc.ReadDocument(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func newPage() *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: gofpdf.SizeType{Wd: 100, Ht: 100}})
	pdf.SetCompression(false)
	pdf.AddPage()
	return pdf
}

// drawContent draws the document on a 100x100 page and returns
// the uncompressed PDF file.
func drawContent(t *testing.T, src string) string {
	t.Helper()
	doc := readDoc(t, src)
	pdf := newPage()
	ctx, err := svgdraw.NewDrawingCtx(doc, NewRenderer(pdf), matrix.Identity, svgdraw.Size{W: 100, H: 100}, svgdraw.Options{})
	if err != nil {
		t.Fatal(err)
	}
	ctx.Draw()
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func expectContains(t *testing.T, content string, ops ...string) {
	t.Helper()
	for _, op := range ops {
		if !strings.Contains(content, op) {
			t.Errorf("missing %q in output", op)
		}
	}
}

func TestFillAndStroke(t *testing.T) {
	content := drawContent(t, `<svg width="100" height="100">
		<rect x="10" y="20" width="30" height="40" fill="red"/>
		<line x1="0" y1="50" x2="100" y2="50" stroke="blue" stroke-width="2"
			stroke-dasharray="4 2" stroke-linecap="round"/>
	</svg>`)
	expectContains(t, content,
		"1.000 0.000 0.000 rg",
		"10.00 80.00 m",
		"\nf\n",
		"0.000 0.000 1.000 RG",
		"2.00 w",
		"[4.00 2.00] 0.00 d",
		"1 J",
	)
}

func TestOpacity(t *testing.T) {
	content := drawContent(t, `<svg width="100" height="100">
		<g opacity="0.5"><rect width="10" height="10" fill="red" fill-opacity="0.5"/></g>
	</svg>`)
	expectContains(t, content, "/ca 0.250")
}

func TestClips(t *testing.T) {
	content := drawContent(t, `<svg width="100" height="100">
		<clipPath id="c"><rect width="10" height="10"/></clipPath>
		<rect width="20" height="20" fill="red" clip-path="url(#c)"/>
		<svg x="50" y="50" width="10" height="10"><rect width="20" height="20"/></svg>
	</svg>`)
	if n := strings.Count(content, "h W n"); n != 2 {
		t.Errorf("expected 2 clip polygons, got %d", n)
	}
}

func TestGradient(t *testing.T) {
	content := drawContent(t, `<svg width="100" height="100">
		<linearGradient id="g"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
		<rect width="100" height="50" fill="url(#g)"/>
	</svg>`)
	expectContains(t, content, "/Sh0 sh", "h W n")
}

func TestImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	content := drawContent(t, `<svg width="100" height="100">
		<image width="10" height="10" href="data:image/png;base64,`+base64.StdEncoding.EncodeToString(buf.Bytes())+`"/>
	</svg>`)
	expectContains(t, content, " cm", " Do Q")
}

func TestPageMatrix(t *testing.T) {
	r := NewRenderer(newPage())
	for _, test := range []struct {
		m    matrix.Matrix
		want gofpdf.TransformMatrix
	}{
		{matrix.Identity, gofpdf.TransformMatrix{A: 1, D: 1}},
		{matrix.Translate(10, 20), gofpdf.TransformMatrix{A: 1, D: 1, E: 10, F: -20}},
		{matrix.Scale(2, 2), gofpdf.TransformMatrix{A: 2, D: 2, F: -100}},
	} {
		if diff := cmp.Diff(test.want, r.pageMatrix(test.m), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("page matrix of %v (-want +got):\n%s", test.m, diff)
		}
	}
}

func TestPolygon(t *testing.T) {
	var path svgpath.Path
	path.Start(svgpath.Point{})
	path.CubeBezier(svgpath.Point{X: 0, Y: 10}, svgpath.Point{X: 10, Y: 10}, svgpath.Point{X: 10, Y: 0})
	pts := polygon(path)
	if len(pts) != 1+curveSteps {
		t.Fatalf("expected %d points, got %d", 1+curveSteps, len(pts))
	}
	if diff := cmp.Diff(gofpdf.PointType{X: 10, Y: 0}, pts[len(pts)-1], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("last point (-want +got):\n%s", diff)
	}
}

func TestRender(t *testing.T) {
	doc := readDoc(t, `<svg width="90" height="45"><rect id="r" width="10" height="10" fill="red"/></svg>`)
	var buf bytes.Buffer
	if err := Render(doc, &buf, Viewport{}); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("invalid PDF header")
	}
	// 90 user units at 90 dpi is one inch
	if !bytes.Contains(buf.Bytes(), []byte("/MediaBox [0 0 72.00 36.00]")) {
		t.Error("unexpected page size")
	}

	buf.Reset()
	if err := Render(doc, &buf, Viewport{Width: 20, Height: 20}, WithSubtree("r")); err != nil {
		t.Fatal(err)
	}
	if err := Render(nil, &buf, Viewport{}); !errors.Is(err, ErrNilDocument) {
		t.Errorf("expected ErrNilDocument, got %v", err)
	}
}

func TestRenderContentStream(t *testing.T) {
	doc := readDoc(t, `<svg width="90" height="45">
		<rect width="10" height="10" fill="red" fill-opacity="0.5"/>
	</svg>`)
	var buf bytes.Buffer
	if err := Render(doc, &buf, Viewport{}, WithEngine(EngineContentStream)); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("invalid PDF header")
	}
	if !bytes.Contains(buf.Bytes(), []byte("/ExtGState")) {
		t.Error("missing graphic state resources")
	}
}
