// Package svgstyle implements the style of SVG elements:
// the State record attached to each node, the cascade
// policies used when drawing, and the parsing of CSS
// property values.
package svgstyle

import (
	"image/color"

	"seehuhn.de/go/geom/matrix"
)

// Field is a property value, paired with a flag
// distinguishing an explicit setting from an inherited
// (or default) one.
type Field[T any] struct {
	Value T
	Set   bool
}

// Explicit returns a set field.
func Explicit[T any](v T) Field[T] { return Field[T]{Value: v, Set: true} }

// State is the cascading style record of a node.
type State struct {
	// Affine is the full transform from user space to device space.
	// Before drawing, it only contains the node's own transform.
	Affine matrix.Matrix
	// PersonalAffine is the 'transform' attribute of the node.
	PersonalAffine matrix.Matrix

	// Non inheritable properties: they are never
	// taken from the parent, except by Override.
	ClipPath         string // referenced id, empty for none
	Mask             string
	Filter           string
	Opacity          float64 // in [0, 1]
	CompOp           CompOp
	EnableBackground EnableBackground

	// CondTrue is false when a conditional processing
	// attribute evaluated to false.
	CondTrue bool

	CurrentColor  Field[color.NRGBA]
	Fill          Field[*PaintServer]
	FillOpacity   Field[float64]
	FillRule      Field[FillRule]
	Stroke        Field[*PaintServer]
	StrokeOpacity Field[float64]
	StrokeWidth   Field[Length]
	MiterLimit    Field[float64]
	Cap           Field[CapMode]
	LeadCap       Field[CapMode] // not part of the SVG standard
	Join          Field[JoinMode]
	Gap           Field[GapMode] // not part of the SVG standard
	Dash          Field[[]Length]
	DashOffset    Field[Length]
	ClipRule      Field[FillRule]
	Overflow      Field[bool] // true for visible
	Visible       Field[bool]

	FontSize       Field[Length]
	FontFamily     Field[string]
	FontStyle      Field[FontStyle]
	FontVariant    Field[FontVariant]
	FontWeight     Field[int]
	FontStretch    Field[FontStretch]
	TextDecoration Field[TextDecoration]
	TextDir        Field[TextDirection]
	TextAnchor     Field[TextAnchor]
	LetterSpacing  Field[Length]
	Lang           Field[string]
	SpacePreserve  Field[bool]

	StopColor    Field[ColorSpec]
	StopOpacity  Field[float64]
	FloodColor   Field[ColorSpec]
	FloodOpacity Field[float64]

	StartMarker  Field[string]
	MiddleMarker Field[string]
	EndMarker    Field[string]

	ShapeRendering Field[RenderingHint]
	TextRendering  Field[RenderingHint]
}

// DefaultFontSize is used when no font-size is specified.
var DefaultFontSize = Px(12)

// NewState returns the initial state: black fill, no stroke,
// identity transforms. No property is marked as set.
func NewState() State {
	return State{
		Affine:         matrix.Identity,
		PersonalAffine: matrix.Identity,
		Opacity:        1,
		CondTrue:       true,

		CurrentColor:  Field[color.NRGBA]{Value: color.NRGBA{A: 0xFF}},
		Fill:          Field[*PaintServer]{Value: defaultFill},
		FillOpacity:   Field[float64]{Value: 1},
		StrokeOpacity: Field[float64]{Value: 1},
		StrokeWidth:   Field[Length]{Value: Px(1)},
		MiterLimit:    Field[float64]{Value: 4},
		Cap:           Field[CapMode]{Value: ButtCap},
		Join:          Field[JoinMode]{Value: Miter},
		Visible:       Field[bool]{Value: true},

		FontSize:   Field[Length]{Value: DefaultFontSize},
		FontFamily: Field[string]{Value: "Times New Roman"},
		FontWeight: Field[int]{Value: 400},

		StopOpacity:  Field[float64]{Value: 1},
		FloodColor:   Field[ColorSpec]{Value: ColorSpec{RGBA: color.NRGBA{A: 0xFF}}},
		FloodOpacity: Field[float64]{Value: 1},
		StopColor:    Field[ColorSpec]{Value: ColorSpec{RGBA: color.NRGBA{A: 0xFF}}},
	}
}

var defaultFill = Solid(ColorSpec{RGBA: color.NRGBA{A: 0xFF}})

// Clone returns a deep copy of st. Paint servers are shared,
// since they are never mutated.
func (st *State) Clone() State {
	out := *st
	if st.Dash.Value != nil {
		out.Dash.Value = append([]Length(nil), st.Dash.Value...)
	}
	return out
}

// IsFastPath returns true if drawing with st does not require
// an intermediate surface, given that no late clip is pending.
func (st *State) IsFastPath() bool {
	return st.Opacity == 1 && st.Filter == "" && st.Mask == "" &&
		st.CompOp == CompSrcOver && st.EnableBackground == BackgroundAccumulate
}
