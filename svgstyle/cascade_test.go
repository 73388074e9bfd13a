package svgstyle

import (
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
)

func mustSet(t *testing.T, st *State, name, value string) {
	t.Helper()
	known, err := st.SetProperty(name, value)
	if err != nil {
		t.Fatal(err)
	}
	if !known {
		t.Fatalf("unknown property %s", name)
	}
}

var (
	red  = color.NRGBA{0xFF, 0, 0, 0xFF}
	blue = color.NRGBA{0, 0, 0xFF, 0xFF}
)

func TestInheritFromUnsetChild(t *testing.T) {
	parent := NewState()
	mustSet(t, &parent, "fill", "red")
	mustSet(t, &parent, "stroke", "url(#grad) blue")
	mustSet(t, &parent, "stroke-width", "3mm")
	mustSet(t, &parent, "stroke-dasharray", "1 2 3")
	mustSet(t, &parent, "font-family", "'DejaVu Sans'")
	mustSet(t, &parent, "font-size", "large")
	mustSet(t, &parent, "marker", "url(#m)")
	mustSet(t, &parent, "text-anchor", "middle")
	mustSet(t, &parent, "visibility", "hidden")

	child := NewState()
	child.Inherit(&parent)

	if diff := cmp.Diff(parent, child); diff != "" {
		t.Errorf("inherit (-parent +child):\n%s", diff)
	}
}

func TestInheritKeepsUninheritables(t *testing.T) {
	parent := NewState()
	mustSet(t, &parent, "opacity", "0.5")
	mustSet(t, &parent, "clip-path", "url(#c)")
	mustSet(t, &parent, "comp-op", "multiply")

	child := NewState()
	mustSet(t, &child, "mask", "url(#m)")
	child.Inherit(&parent)
	if child.Opacity != 1 || child.ClipPath != "" || child.CompOp != CompSrcOver || child.Mask != "m" {
		t.Errorf("non inheritable properties leaked: %+v", child)
	}

	child.Override(&parent)
	if child.Opacity != 0.5 || child.ClipPath != "c" || child.CompOp != CompMultiply || child.Mask != "" {
		t.Errorf("override should copy non inheritable properties: %+v", child)
	}
}

func TestDominate(t *testing.T) {
	parent := NewState()
	mustSet(t, &parent, "fill", "red")

	// explicit child value wins
	child := NewState()
	mustSet(t, &child, "fill", "blue")
	child.Dominate(&parent)
	if got := child.Fill.Value.Color.RGBA; got != blue {
		t.Errorf("expected blue, got %v", got)
	}

	// unset child takes the ambient explicit value
	child = NewState()
	child.Dominate(&parent)
	if got := child.Fill.Value.Color.RGBA; got != red || !child.Fill.Set {
		t.Errorf("expected explicit red, got %v (set: %v)", got, child.Fill.Set)
	}
}

func TestReinheritKeepsFlags(t *testing.T) {
	parent := NewState()
	mustSet(t, &parent, "stroke-width", "4")

	child := NewState()
	child.Reinherit(&parent)
	if child.StrokeWidth.Value != Px(4) {
		t.Errorf("unexpected stroke width %v", child.StrokeWidth.Value)
	}
	if child.StrokeWidth.Set {
		t.Error("reinherit should not mark inherited values as explicit")
	}
}

func TestOverrideKeepsTransform(t *testing.T) {
	src := NewState()
	src.Affine = matrix.Scale(2, 2)
	mustSet(t, &src, "fill", "none")

	dst := NewState()
	dst.Affine = matrix.Translate(1, 1)
	mustSet(t, &dst, "fill", "red")
	mustSet(t, &dst, "stroke", "blue")
	dst.Override(&src)

	if dst.Affine != matrix.Translate(1, 1) {
		t.Errorf("transform modified: %v", dst.Affine)
	}
	if dst.Fill.Value != nil || dst.Stroke.Value != nil || dst.Stroke.Set {
		t.Errorf("unexpected paint after override: %v %v", dst.Fill.Value, dst.Stroke)
	}
}

func TestCloneIsDeep(t *testing.T) {
	st := NewState()
	mustSet(t, &st, "stroke-dasharray", "1 2")
	cl := st.Clone()
	cl.Dash.Value[0] = Px(10)
	if st.Dash.Value[0] != Px(1) {
		t.Error("clone shares its dash array")
	}

	// merged dashes are copied as well
	other := NewState()
	other.Inherit(&st)
	other.Dash.Value[1] = Px(10)
	if st.Dash.Value[1] != Px(2) {
		t.Error("inherit shares its dash array")
	}
}

func TestInheritKeyword(t *testing.T) {
	st := NewState()
	mustSet(t, &st, "fill", "blue")
	mustSet(t, &st, "fill", "inherit")
	if st.Fill.Set {
		t.Error("inherit keyword should unset the property")
	}

	parent := NewState()
	mustSet(t, &parent, "fill", "red")
	st.Inherit(&parent)
	if st.Fill.Value.Color.RGBA != red {
		t.Errorf("expected red, got %v", st.Fill.Value)
	}
}
