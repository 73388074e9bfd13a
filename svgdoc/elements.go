package svgdoc

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/benoitkugler/svgrender/svgstyle"
)

var errParamMismatch = errors.New("svgdoc: param mismatch")

type (
	Length = svgstyle.Length
	// LengthField is a length which may be absent.
	LengthField = svgstyle.Field[svgstyle.Length]
)

func percent(v float64) Length { return Length{Value: v / 100, Unit: svgstyle.UnitPercent} }

func setLength(dst *Length, v string) error {
	l, err := svgstyle.ParseLength(v)
	if err != nil {
		return err
	}
	*dst = l
	return nil
}

func setLengthField(dst *LengthField, v string) error {
	l, err := svgstyle.ParseLength(v)
	if err != nil {
		return err
	}
	*dst = svgstyle.Explicit(l)
	return nil
}

func parseFloat(v string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(v), 64)
}

// parseHref accepts local references only: "#id" returns "id".
// Other values are returned unchanged.
func parseHref(v string) string {
	if id, ok := svgstyle.ParseIRI(v); ok {
		return id
	}
	return strings.TrimSpace(v)
}

// Svg is the payload of svg elements.
type Svg struct {
	X, Y          Length
	Width, Height LengthField // 100% when absent
	ViewBox       svgstyle.Field[ViewBox]
	AspectRatio   AspectRatio
}

func (s *Svg) SetAttr(name, value string) error {
	switch name {
	case "x":
		return setLength(&s.X, value)
	case "y":
		return setLength(&s.Y, value)
	case "width":
		return setLengthField(&s.Width, value)
	case "height":
		return setLengthField(&s.Height, value)
	case "viewBox":
		vb, err := ParseViewBox(value)
		s.ViewBox = svgstyle.Explicit(vb)
		return err
	case "preserveAspectRatio":
		var err error
		s.AspectRatio, err = ParseAspectRatio(value)
		return err
	}
	return nil
}

// Size returns the width and height, defaulting to 100%.
func (s *Svg) Size() (w, h Length) {
	w, h = percent(100), percent(100)
	if s.Width.Set {
		w = s.Width.Value
	}
	if s.Height.Set {
		h = s.Height.Value
	}
	return w, h
}

// Use is the payload of use elements.
type Use struct {
	X, Y          Length
	Width, Height LengthField
	Href          string
}

func (u *Use) SetAttr(name, value string) error {
	switch name {
	case "x":
		return setLength(&u.X, value)
	case "y":
		return setLength(&u.Y, value)
	case "width":
		return setLengthField(&u.Width, value)
	case "height":
		return setLengthField(&u.Height, value)
	case "href":
		u.Href = parseHref(value)
	}
	return nil
}

// Symbol is the payload of symbol elements, only
// drawn through a use element.
type Symbol struct {
	ViewBox     svgstyle.Field[ViewBox]
	AspectRatio AspectRatio
}

func (s *Symbol) SetAttr(name, value string) error {
	switch name {
	case "viewBox":
		vb, err := ParseViewBox(value)
		s.ViewBox = svgstyle.Explicit(vb)
		return err
	case "preserveAspectRatio":
		var err error
		s.AspectRatio, err = ParseAspectRatio(value)
		return err
	}
	return nil
}

// PathData is the payload of path elements.
type PathData struct {
	Data svgpath.Path
}

// SetAttr stores the valid prefix of the path data,
// even when returning an error.
func (p *PathData) SetAttr(name, value string) error {
	if name != "d" {
		return nil
	}
	var err error
	p.Data, err = svgpath.ParsePathData(value)
	return err
}

// Rect is the payload of rect elements.
type Rect struct {
	X, Y, Width, Height Length
	RX, RY              LengthField
}

func (r *Rect) SetAttr(name, value string) error {
	switch name {
	case "x":
		return setLength(&r.X, value)
	case "y":
		return setLength(&r.Y, value)
	case "width":
		return setLength(&r.Width, value)
	case "height":
		return setLength(&r.Height, value)
	case "rx":
		return setLengthField(&r.RX, value)
	case "ry":
		return setLengthField(&r.RY, value)
	}
	return nil
}

// Circle is the payload of circle elements.
type Circle struct {
	CX, CY, R Length
}

func (c *Circle) SetAttr(name, value string) error {
	switch name {
	case "cx":
		return setLength(&c.CX, value)
	case "cy":
		return setLength(&c.CY, value)
	case "r":
		return setLength(&c.R, value)
	}
	return nil
}

// Ellipse is the payload of ellipse elements.
type Ellipse struct {
	CX, CY, RX, RY Length
}

func (e *Ellipse) SetAttr(name, value string) error {
	switch name {
	case "cx":
		return setLength(&e.CX, value)
	case "cy":
		return setLength(&e.CY, value)
	case "rx":
		return setLength(&e.RX, value)
	case "ry":
		return setLength(&e.RY, value)
	}
	return nil
}

// Line is the payload of line elements.
type Line struct {
	X1, Y1, X2, Y2 Length
}

func (l *Line) SetAttr(name, value string) error {
	switch name {
	case "x1":
		return setLength(&l.X1, value)
	case "y1":
		return setLength(&l.Y1, value)
	case "x2":
		return setLength(&l.X2, value)
	case "y2":
		return setLength(&l.Y2, value)
	}
	return nil
}

// Poly is the payload of polyline and polygon elements.
type Poly struct {
	Points []float64 // x, y pairs
}

func (p *Poly) SetAttr(name, value string) error {
	if name != "points" {
		return nil
	}
	points, err := svgpath.ParseNumberList(value)
	if len(points)%2 != 0 { // the last odd coordinate is dropped
		points = points[:len(points)-1]
		if err == nil {
			err = fmt.Errorf("odd number of coordinates in %q", value)
		}
	}
	p.Points = points
	return err
}

// Text is the payload of text and tspan elements.
// Absent positions are nil.
type Text struct {
	X, Y, DX, DY []Length
}

func (t *Text) SetAttr(name, value string) error {
	var dst *[]Length
	switch name {
	case "x":
		dst = &t.X
	case "y":
		dst = &t.Y
	case "dx":
		dst = &t.DX
	case "dy":
		dst = &t.DY
	default:
		return nil
	}
	l, err := svgstyle.ParseLengthList(value)
	*dst = l
	return err
}

// TRef is the payload of tref elements.
type TRef struct {
	Href string
}

func (t *TRef) SetAttr(name, value string) error {
	if name == "href" {
		t.Href = parseHref(value)
	}
	return nil
}

// Chars is the payload of character data nodes.
type Chars struct {
	Text string
}

func (*Chars) SetAttr(string, string) error { return nil }

// Image is the payload of image elements. The image is
// decoded when loading the document, and is nil if it
// could not be fetched.
type Image struct {
	X, Y, Width, Height Length
	AspectRatio         AspectRatio
	Href                string
	Img                 image.Image
}

func (im *Image) SetAttr(name, value string) error {
	switch name {
	case "x":
		return setLength(&im.X, value)
	case "y":
		return setLength(&im.Y, value)
	case "width":
		return setLength(&im.Width, value)
	case "height":
		return setLength(&im.Height, value)
	case "href":
		im.Href = strings.TrimSpace(value)
	case "preserveAspectRatio":
		var err error
		im.AspectRatio, err = ParseAspectRatio(value)
		return err
	}
	return nil
}

var payloadConstructors = map[Kind]func() Payload{
	KindSvg:            func() Payload { return &Svg{AspectRatio: DefaultAspectRatio} },
	KindUse:            func() Payload { return new(Use) },
	KindSymbol:         func() Payload { return &Symbol{AspectRatio: DefaultAspectRatio} },
	KindPath:           func() Payload { return new(PathData) },
	KindRect:           func() Payload { return new(Rect) },
	KindCircle:         func() Payload { return new(Circle) },
	KindEllipse:        func() Payload { return new(Ellipse) },
	KindLine:           func() Payload { return new(Line) },
	KindPolyline:       func() Payload { return new(Poly) },
	KindPolygon:        func() Payload { return new(Poly) },
	KindText:           func() Payload { return new(Text) },
	KindTSpan:          func() Payload { return new(Text) },
	KindTRef:           func() Payload { return new(TRef) },
	KindChars:          func() Payload { return new(Chars) },
	KindImage:          func() Payload { return &Image{AspectRatio: DefaultAspectRatio} },
	KindLinearGradient: func() Payload { return new(LinearGradient) },
	KindRadialGradient: func() Payload { return new(RadialGradient) },
	KindStop:           func() Payload { return new(Stop) },
	KindPattern:        func() Payload { return new(Pattern) },
	KindMask:           newMask,
	KindClipPath:       func() Payload { return &ClipPath{Units: UserSpaceOnUse} },
	KindMarker:         newMarker,
	KindFilter:         newFilter,
	KindFeGaussianBlur: func() Payload { return new(GaussianBlur) },
	KindFeOffset:       func() Payload { return new(Offset) },
	KindFeFlood:        func() Payload { return new(Flood) },
	KindFeColorMatrix:  func() Payload { return new(ColorMatrix) },
	KindFeMerge:        func() Payload { return new(Merge) },
	KindFeMergeNode:    func() Payload { return new(MergeNode) },
	KindFeComposite:    func() Payload { return new(Composite) },
	KindFeBlend:        func() Payload { return new(Blend) },
}
