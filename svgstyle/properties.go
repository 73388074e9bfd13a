package svgstyle

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// propertySetter copies one CSS value into a state.
type propertySetter func(st *State, value string) error

// field returns a setter for an inheritable property,
// honoring the 'inherit' keyword.
func field[T any](get func(*State) *Field[T], parse func(string) (T, error)) propertySetter {
	return func(st *State, v string) error {
		f := get(st)
		if v == "inherit" {
			f.Set = false
			return nil
		}
		val, err := parse(v)
		if err != nil {
			return err
		}
		*f = Explicit(val)
		return nil
	}
}

// keyword returns a parser accepting the keys of m.
func keyword[T any](m map[string]T) func(string) (T, error) {
	return func(v string) (T, error) {
		out, ok := m[v]
		if !ok {
			return out, fmt.Errorf("unsupported keyword %q", v)
		}
		return out, nil
	}
}

func parseFloat(v string) (float64, error) { return strconv.ParseFloat(v, 64) }

func parseString(v string) (string, error) { return v, nil }

func parseRGBA(v string) (color.NRGBA, error) {
	c, err := ParseColor(v)
	if err != nil {
		return color.NRGBA{}, err
	}
	if c.CurrentColor {
		return color.NRGBA{}, fmt.Errorf("currentColor is invalid for the color property")
	}
	return c.RGBA, nil
}

func parseDashArray(v string) ([]Length, error) {
	if v == "none" {
		return nil, nil
	}
	dashes, err := ParseLengthList(v)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, d := range dashes {
		if d.Value < 0 {
			return nil, fmt.Errorf("negative value in dash array %q", v)
		}
		allZero = allZero && d.Value == 0
	}
	if allZero {
		return nil, nil
	}
	if len(dashes)%2 == 1 { // repeated to yield an even number of values
		dashes = append(dashes, dashes...)
	}
	return dashes, nil
}

func parseFontSize(v string) (Length, error) {
	if l, ok := fontSizeKeywords[v]; ok {
		return l, nil
	}
	return ParseLength(v)
}

func parseFontFamily(v string) (string, error) {
	return strings.Trim(strings.TrimSpace(v), `'"`), nil
}

func parseFontWeight(v string) (int, error) {
	switch v {
	case "normal":
		return 400, nil
	case "bold", "bolder":
		return 700, nil
	case "lighter":
		return 300, nil
	}
	w, err := strconv.Atoi(v)
	if err != nil || w < 100 || w > 900 {
		return 0, fmt.Errorf("invalid font-weight %q", v)
	}
	return w, nil
}

func parseTextDecoration(v string) (TextDecoration, error) {
	var out TextDecoration
	for _, w := range strings.Fields(v) {
		switch w {
		case "none":
		case "underline":
			out |= DecorationUnderline
		case "overline":
			out |= DecorationOverline
		case "line-through":
			out |= DecorationStrike
		default:
			return 0, fmt.Errorf("invalid text-decoration %q", v)
		}
	}
	return out, nil
}

func parseLetterSpacing(v string) (Length, error) {
	if v == "normal" {
		return Length{}, nil
	}
	return ParseLength(v)
}

func parseMarker(v string) (string, error) {
	if v == "none" {
		return "", nil
	}
	id, ok := ParseIRI(v)
	if !ok {
		return "", fmt.Errorf("invalid marker reference %q", v)
	}
	return id, nil
}

// iri returns a setter for clip-path, mask and filter,
// which are not inherited.
func iri(get func(*State) *string) propertySetter {
	return func(st *State, v string) error {
		if v == "inherit" {
			return nil
		}
		id, err := parseMarker(v)
		if err != nil {
			return err
		}
		*get(st) = id
		return nil
	}
}

var capModes = map[string]CapMode{
	"butt":      ButtCap,
	"round":     RoundCap,
	"square":    SquareCap,
	"cubic":     CubicCap,
	"quadratic": QuadraticCap,
}

var fillRules = map[string]FillRule{"nonzero": NonZero, "evenodd": EvenOdd}

var renderingHints = map[string]RenderingHint{
	"auto":               RenderAuto,
	"optimizeSpeed":      RenderOptimizeSpeed,
	"crispEdges":         RenderCrispEdges,
	"optimizeLegibility": RenderGeometricPrecision,
	"geometricPrecision": RenderGeometricPrecision,
}

// properties is the dispatch table of the supported CSS properties.
var properties = map[string]propertySetter{
	"fill":               field(func(st *State) *Field[*PaintServer] { return &st.Fill }, ParsePaint),
	"fill-opacity":       field(func(st *State) *Field[float64] { return &st.FillOpacity }, readFraction),
	"fill-rule":          field(func(st *State) *Field[FillRule] { return &st.FillRule }, keyword(fillRules)),
	"stroke":             field(func(st *State) *Field[*PaintServer] { return &st.Stroke }, ParsePaint),
	"stroke-opacity":     field(func(st *State) *Field[float64] { return &st.StrokeOpacity }, readFraction),
	"stroke-width":       field(func(st *State) *Field[Length] { return &st.StrokeWidth }, ParseLength),
	"stroke-linecap":     field(func(st *State) *Field[CapMode] { return &st.Cap }, keyword(capModes)),
	"stroke-leadlinecap": field(func(st *State) *Field[CapMode] { return &st.LeadCap }, keyword(capModes)),
	"stroke-linejoin": field(func(st *State) *Field[JoinMode] { return &st.Join }, keyword(map[string]JoinMode{
		"miter":      Miter,
		"miter-clip": MiterClip,
		"arc-clip":   ArcClip,
		"round":      Round,
		"arc":        Arc,
		"bevel":      Bevel,
	})),
	"stroke-linegap": field(func(st *State) *Field[GapMode] { return &st.Gap }, keyword(map[string]GapMode{
		"flat":      FlatGap,
		"round":     RoundGap,
		"cubic":     CubicGap,
		"quadratic": QuadraticGap,
	})),
	"stroke-miterlimit": field(func(st *State) *Field[float64] { return &st.MiterLimit }, parseFloat),
	"stroke-dasharray":  field(func(st *State) *Field[[]Length] { return &st.Dash }, parseDashArray),
	"stroke-dashoffset": field(func(st *State) *Field[Length] { return &st.DashOffset }, ParseLength),
	"color":             field(func(st *State) *Field[color.NRGBA] { return &st.CurrentColor }, parseRGBA),
	"clip-rule":         field(func(st *State) *Field[FillRule] { return &st.ClipRule }, keyword(fillRules)),

	"clip-path": iri(func(st *State) *string { return &st.ClipPath }),
	"mask":      iri(func(st *State) *string { return &st.Mask }),
	"filter":    iri(func(st *State) *string { return &st.Filter }),
	"opacity": func(st *State, v string) error {
		if v == "inherit" {
			return nil
		}
		f, err := readFraction(v)
		st.Opacity = f
		return err
	},
	"comp-op": func(st *State, v string) error {
		op, ok := compOpNames[v]
		if !ok {
			return fmt.Errorf("unsupported comp-op %q", v)
		}
		st.CompOp = op
		return nil
	},
	"enable-background": func(st *State, v string) error {
		if strings.HasPrefix(v, "new") {
			st.EnableBackground = BackgroundNew
		} else {
			st.EnableBackground = BackgroundAccumulate
		}
		return nil
	},

	"display": field(func(st *State) *Field[bool] { return &st.Visible }, func(v string) (bool, error) {
		return v != "none", nil
	}),
	"visibility": field(func(st *State) *Field[bool] { return &st.Visible }, keyword(map[string]bool{
		"visible":  true,
		"hidden":   false,
		"collapse": false,
	})),
	"overflow": field(func(st *State) *Field[bool] { return &st.Overflow }, keyword(map[string]bool{
		"visible": true,
		"auto":    true,
		"hidden":  false,
		"scroll":  false,
	})),

	"font-size":   field(func(st *State) *Field[Length] { return &st.FontSize }, parseFontSize),
	"font-family": field(func(st *State) *Field[string] { return &st.FontFamily }, parseFontFamily),
	"font-style": field(func(st *State) *Field[FontStyle] { return &st.FontStyle }, keyword(map[string]FontStyle{
		"normal":  FontStyleNormal,
		"italic":  FontStyleItalic,
		"oblique": FontStyleOblique,
	})),
	"font-variant": field(func(st *State) *Field[FontVariant] { return &st.FontVariant }, keyword(map[string]FontVariant{
		"normal":     FontVariantNormal,
		"small-caps": FontVariantSmallCaps,
	})),
	"font-weight": field(func(st *State) *Field[int] { return &st.FontWeight }, parseFontWeight),
	"font-stretch": field(func(st *State) *Field[FontStretch] { return &st.FontStretch }, keyword(map[string]FontStretch{
		"normal":          StretchNormal,
		"ultra-condensed": StretchUltraCondensed,
		"extra-condensed": StretchExtraCondensed,
		"condensed":       StretchCondensed,
		"narrower":        StretchCondensed,
		"semi-condensed":  StretchSemiCondensed,
		"semi-expanded":   StretchSemiExpanded,
		"expanded":        StretchExpanded,
		"wider":           StretchExpanded,
		"extra-expanded":  StretchExtraExpanded,
		"ultra-expanded":  StretchUltraExpanded,
	})),
	"text-decoration": field(func(st *State) *Field[TextDecoration] { return &st.TextDecoration }, parseTextDecoration),
	"direction": field(func(st *State) *Field[TextDirection] { return &st.TextDir }, keyword(map[string]TextDirection{
		"ltr": LeftToRight,
		"rtl": RightToLeft,
	})),
	"text-anchor": field(func(st *State) *Field[TextAnchor] { return &st.TextAnchor }, keyword(map[string]TextAnchor{
		"start":  AnchorStart,
		"middle": AnchorMiddle,
		"end":    AnchorEnd,
	})),
	"letter-spacing": field(func(st *State) *Field[Length] { return &st.LetterSpacing }, parseLetterSpacing),
	"xml:lang":       field(func(st *State) *Field[string] { return &st.Lang }, parseString),
	"xml:space": field(func(st *State) *Field[bool] { return &st.SpacePreserve }, keyword(map[string]bool{
		"preserve": true,
		"default":  false,
	})),

	"stop-color":    field(func(st *State) *Field[ColorSpec] { return &st.StopColor }, ParseColor),
	"stop-opacity":  field(func(st *State) *Field[float64] { return &st.StopOpacity }, readFraction),
	"flood-color":   field(func(st *State) *Field[ColorSpec] { return &st.FloodColor }, ParseColor),
	"flood-opacity": field(func(st *State) *Field[float64] { return &st.FloodOpacity }, readFraction),

	"marker-start": field(func(st *State) *Field[string] { return &st.StartMarker }, parseMarker),
	"marker-mid":   field(func(st *State) *Field[string] { return &st.MiddleMarker }, parseMarker),
	"marker-end":   field(func(st *State) *Field[string] { return &st.EndMarker }, parseMarker),

	"shape-rendering": field(func(st *State) *Field[RenderingHint] { return &st.ShapeRendering }, keyword(renderingHints)),
	"text-rendering":  field(func(st *State) *Field[RenderingHint] { return &st.TextRendering }, keyword(renderingHints)),
}

func init() {
	// the shorthand uses the other setters
	properties["marker"] = func(st *State, v string) error {
		for _, name := range [...]string{"marker-start", "marker-mid", "marker-end"} {
			if err := properties[name](st, v); err != nil {
				return err
			}
		}
		return nil
	}
}

// IsProperty returns true if name is a supported CSS property.
func IsProperty(name string) bool {
	_, ok := properties[name]
	return ok
}

// SetProperty parses the value of the CSS property name
// and stores it in st. Unknown properties are ignored and
// reported with known = false.
func (st *State) SetProperty(name, value string) (known bool, err error) {
	setter, ok := properties[name]
	if !ok {
		return false, nil
	}
	if err := setter(st, strings.TrimSpace(value)); err != nil {
		return true, fmt.Errorf("property %s: %w", name, err)
	}
	return true, nil
}
