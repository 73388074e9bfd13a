package alt

import (
	"slices"
	"strings"
	"testing"

	"github.com/benoitkugler/pdf/contentstream"
	"github.com/benoitkugler/pdf/model"
	"github.com/benoitkugler/svgrender/svgdoc"
	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
)

func draw(t *testing.T, src string) *Renderer {
	t.Helper()
	doc, err := svgdoc.ReadDocument(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	cs := contentstream.NewAppearance(100, 100)
	r := NewRenderer(&cs)
	ctx, err := svgdraw.NewDrawingCtx(doc, r, matrix.Identity, svgdraw.Size{W: 100, H: 100}, svgdraw.Options{})
	if err != nil {
		t.Fatal(err)
	}
	ctx.Draw()
	return r
}

func opacities(m map[float64]*model.GraphicState) []float64 {
	var out []float64
	for o := range m {
		out = append(out, o)
	}
	slices.Sort(out)
	return out
}

func TestGraphicStates(t *testing.T) {
	r := draw(t, `<svg width="100" height="100">
		<rect width="10" height="10" fill="red"/>
		<rect x="20" width="10" height="10" fill="blue"/>
		<g opacity="0.5">
			<rect x="40" width="10" height="10" fill="red" fill-opacity="0.5"/>
			<circle cx="70" cy="70" r="10" fill="none" stroke="green" stroke-width="2"/>
		</g>
	</svg>`)

	if diff := cmp.Diff([]float64{0.25, 1}, opacities(r.fillStates)); diff != "" {
		t.Errorf("fill opacities (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0.5}, opacities(r.strokeStates)); diff != "" {
		t.Errorf("stroke opacities (-want +got):\n%s", diff)
	}
	for o, gs := range r.fillStates {
		if gs.Ca != model.ObjFloat(o) {
			t.Errorf("unexpected fill alpha %v for %g", gs.Ca, o)
		}
	}
}

func TestLayersBalanced(t *testing.T) {
	r := draw(t, `<svg width="100" height="100">
		<clipPath id="c"><rect width="50" height="50"/><circle cx="80" cy="80" r="5"/></clipPath>
		<clipPath id="empty"/>
		<g opacity="0.5" clip-path="url(#c)">
			<rect width="100" height="100" fill="red"/>
			<g clip-path="url(#empty)"><rect width="10" height="10"/></g>
		</g>
	</svg>`)
	if diff := cmp.Diff([]float64{1}, r.frames); diff != "" {
		t.Errorf("unbalanced layers (-want +got):\n%s", diff)
	}
}
