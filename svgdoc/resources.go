package svgdoc

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/svgrender/svgstyle"
	"seehuhn.de/go/geom/matrix"
)

// Units is the coordinate system of a resource.
type Units uint8

// SVG bounds parameter constants
const (
	ObjectBoundingBox Units = iota
	UserSpaceOnUse
	StrokeWidth // only valid for markers
)

func parseUnits(v string) (Units, error) {
	switch strings.TrimSpace(v) {
	case "objectBoundingBox":
		return ObjectBoundingBox, nil
	case "userSpaceOnUse":
		return UserSpaceOnUse, nil
	}
	return 0, fmt.Errorf("invalid units %q", v)
}

func setUnits(dst *svgstyle.Field[Units], v string) error {
	u, err := parseUnits(v)
	if err != nil {
		return err
	}
	*dst = svgstyle.Explicit(u)
	return nil
}

func setTransform(dst *svgstyle.Field[matrix.Matrix], v string) error {
	m, err := svgstyle.ParseTransform(v)
	if err != nil {
		return err
	}
	*dst = svgstyle.Explicit(m)
	return nil
}

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradientAttrs are the attributes shared by linear
// and radial gradients. Absent attributes are resolved
// through the 'href' chain when drawing.
type GradientAttrs struct {
	Units     svgstyle.Field[Units] // default to ObjectBoundingBox
	Transform svgstyle.Field[matrix.Matrix]
	Spread    svgstyle.Field[SpreadMethod]
	Href      string
}

func (g *GradientAttrs) setAttr(name, value string) error {
	switch name {
	case "gradientUnits":
		return setUnits(&g.Units, value)
	case "gradientTransform":
		return setTransform(&g.Transform, value)
	case "spreadMethod":
		switch value {
		case "pad":
			g.Spread = svgstyle.Explicit(PadSpread)
		case "reflect":
			g.Spread = svgstyle.Explicit(ReflectSpread)
		case "repeat":
			g.Spread = svgstyle.Explicit(RepeatSpread)
		default:
			return fmt.Errorf("invalid spreadMethod %q", value)
		}
	case "href":
		g.Href = parseHref(value)
	}
	return nil
}

// LinearGradient is the payload of linearGradient elements.
type LinearGradient struct {
	GradientAttrs
	X1, Y1, X2, Y2 LengthField
}

func (g *LinearGradient) SetAttr(name, value string) error {
	switch name {
	case "x1":
		return setLengthField(&g.X1, value)
	case "y1":
		return setLengthField(&g.Y1, value)
	case "x2":
		return setLengthField(&g.X2, value)
	case "y2":
		return setLengthField(&g.Y2, value)
	}
	return g.setAttr(name, value)
}

// RadialGradient is the payload of radialGradient elements.
type RadialGradient struct {
	GradientAttrs
	CX, CY, R, FX, FY LengthField
}

func (g *RadialGradient) SetAttr(name, value string) error {
	switch name {
	case "cx":
		return setLengthField(&g.CX, value)
	case "cy":
		return setLengthField(&g.CY, value)
	case "r":
		return setLengthField(&g.R, value)
	case "fx":
		return setLengthField(&g.FX, value)
	case "fy":
		return setLengthField(&g.FY, value)
	}
	return g.setAttr(name, value)
}

// Stop is the payload of stop elements. Its color
// is given by the stop-color and stop-opacity properties.
type Stop struct {
	Offset float64 // in [0, 1]
}

func (s *Stop) SetAttr(name, value string) error {
	if name != "offset" {
		return nil
	}
	value = strings.TrimSpace(value)
	d := 1.
	if strings.HasSuffix(value, "%") {
		d = 100
		value = strings.TrimSuffix(value, "%")
	}
	f, err := parseFloat(value)
	if err != nil {
		return err
	}
	s.Offset = min(max(f/d, 0), 1)
	return nil
}

// Pattern is the payload of pattern elements.
type Pattern struct {
	X, Y, Width, Height LengthField
	Units               svgstyle.Field[Units] // default to ObjectBoundingBox
	ContentUnits        svgstyle.Field[Units] // default to UserSpaceOnUse
	Transform           svgstyle.Field[matrix.Matrix]
	ViewBox             svgstyle.Field[ViewBox]
	AspectRatio         svgstyle.Field[AspectRatio]
	Href                string
}

func (p *Pattern) SetAttr(name, value string) error {
	switch name {
	case "x":
		return setLengthField(&p.X, value)
	case "y":
		return setLengthField(&p.Y, value)
	case "width":
		return setLengthField(&p.Width, value)
	case "height":
		return setLengthField(&p.Height, value)
	case "patternUnits":
		return setUnits(&p.Units, value)
	case "patternContentUnits":
		return setUnits(&p.ContentUnits, value)
	case "patternTransform":
		return setTransform(&p.Transform, value)
	case "viewBox":
		vb, err := ParseViewBox(value)
		if err != nil {
			return err
		}
		p.ViewBox = svgstyle.Explicit(vb)
	case "preserveAspectRatio":
		ar, err := ParseAspectRatio(value)
		if err != nil {
			return err
		}
		p.AspectRatio = svgstyle.Explicit(ar)
	case "href":
		p.Href = parseHref(value)
	}
	return nil
}

// Mask is the payload of mask elements.
type Mask struct {
	X, Y, Width, Height Length
	Units               Units
	ContentUnits        Units
}

func newMask() Payload {
	return &Mask{
		X: percent(-10), Y: percent(-10), Width: percent(120), Height: percent(120),
		Units: ObjectBoundingBox, ContentUnits: UserSpaceOnUse,
	}
}

func (m *Mask) SetAttr(name, value string) (err error) {
	switch name {
	case "x":
		return setLength(&m.X, value)
	case "y":
		return setLength(&m.Y, value)
	case "width":
		return setLength(&m.Width, value)
	case "height":
		return setLength(&m.Height, value)
	case "maskUnits":
		m.Units, err = parseUnits(value)
	case "maskContentUnits":
		m.ContentUnits, err = parseUnits(value)
	}
	return err
}

// ClipPath is the payload of clipPath elements.
type ClipPath struct {
	Units Units // default to UserSpaceOnUse
}

func (c *ClipPath) SetAttr(name, value string) (err error) {
	if name == "clipPathUnits" {
		c.Units, err = parseUnits(value)
	}
	return err
}

// Marker is the payload of marker elements.
type Marker struct {
	RefX, RefY    Length
	Width, Height Length
	Units         Units // StrokeWidth or UserSpaceOnUse
	OrientAuto    bool
	Orient        float64 // in degrees, when OrientAuto is false
	ViewBox       svgstyle.Field[ViewBox]
	AspectRatio   AspectRatio
}

func newMarker() Payload {
	return &Marker{
		Width: svgstyle.Px(3), Height: svgstyle.Px(3),
		Units: StrokeWidth, AspectRatio: DefaultAspectRatio,
	}
}

func (m *Marker) SetAttr(name, value string) (err error) {
	switch name {
	case "refX":
		return setLength(&m.RefX, value)
	case "refY":
		return setLength(&m.RefY, value)
	case "markerWidth":
		return setLength(&m.Width, value)
	case "markerHeight":
		return setLength(&m.Height, value)
	case "markerUnits":
		switch value {
		case "strokeWidth":
			m.Units = StrokeWidth
		case "userSpaceOnUse":
			m.Units = UserSpaceOnUse
		default:
			return fmt.Errorf("invalid markerUnits %q", value)
		}
	case "orient":
		if value == "auto" {
			m.OrientAuto = true
			return nil
		}
		m.OrientAuto = false
		value = strings.TrimSuffix(strings.TrimSpace(value), "deg")
		m.Orient, err = parseFloat(value)
	case "viewBox":
		vb, err := ParseViewBox(value)
		m.ViewBox = svgstyle.Explicit(vb)
		return err
	case "preserveAspectRatio":
		m.AspectRatio, err = ParseAspectRatio(value)
	}
	return err
}
