package svgdoc

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/svgrender/svgpath"
)

// Filter is the payload of filter elements. Its primitives
// are its children.
type Filter struct {
	X, Y, Width, Height Length
	Units               Units // default to ObjectBoundingBox
	PrimitiveUnits      Units // default to UserSpaceOnUse
}

func newFilter() Payload {
	return &Filter{
		X: percent(-10), Y: percent(-10), Width: percent(120), Height: percent(120),
		Units: ObjectBoundingBox, PrimitiveUnits: UserSpaceOnUse,
	}
}

func (f *Filter) SetAttr(name, value string) (err error) {
	switch name {
	case "x":
		return setLength(&f.X, value)
	case "y":
		return setLength(&f.Y, value)
	case "width":
		return setLength(&f.Width, value)
	case "height":
		return setLength(&f.Height, value)
	case "filterUnits":
		f.Units, err = parseUnits(value)
	case "primitiveUnits":
		f.PrimitiveUnits, err = parseUnits(value)
	}
	return err
}

// Standard filter inputs
const (
	SourceGraphic   = "SourceGraphic"
	SourceAlpha     = "SourceAlpha"
	BackgroundImage = "BackgroundImage"
	BackgroundAlpha = "BackgroundAlpha"
	FillPaint       = "FillPaint"
	StrokePaint     = "StrokePaint"
)

// Primitive stores the attributes common to
// every filter primitive.
type Primitive struct {
	In, Result          string // empty for the default
	X, Y, Width, Height LengthField
}

// Common returns the common attributes.
func (p *Primitive) Common() *Primitive { return p }

func (p *Primitive) setAttr(name, value string) error {
	switch name {
	case "in":
		p.In = strings.TrimSpace(value)
	case "result":
		p.Result = strings.TrimSpace(value)
	case "x":
		return setLengthField(&p.X, value)
	case "y":
		return setLengthField(&p.Y, value)
	case "width":
		return setLengthField(&p.Width, value)
	case "height":
		return setLengthField(&p.Height, value)
	}
	return nil
}

// FilterPrimitive is implemented by the payloads of
// the filter primitives.
type FilterPrimitive interface {
	Payload
	Common() *Primitive
}

var (
	_ FilterPrimitive = (*GaussianBlur)(nil)
	_ FilterPrimitive = (*Offset)(nil)
	_ FilterPrimitive = (*Flood)(nil)
	_ FilterPrimitive = (*ColorMatrix)(nil)
	_ FilterPrimitive = (*Merge)(nil)
	_ FilterPrimitive = (*Composite)(nil)
	_ FilterPrimitive = (*Blend)(nil)
)

// GaussianBlur is the payload of feGaussianBlur elements.
type GaussianBlur struct {
	Primitive
	StdDevX, StdDevY float64
}

func (g *GaussianBlur) SetAttr(name, value string) error {
	if name != "stdDeviation" {
		return g.setAttr(name, value)
	}
	values, err := svgpath.ParseNumberList(value)
	if err != nil {
		return err
	}
	switch len(values) {
	case 1:
		g.StdDevX, g.StdDevY = values[0], values[0]
	case 2:
		g.StdDevX, g.StdDevY = values[0], values[1]
	default:
		return errParamMismatch
	}
	if g.StdDevX < 0 || g.StdDevY < 0 {
		return fmt.Errorf("negative stdDeviation %q", value)
	}
	return nil
}

// Offset is the payload of feOffset elements.
type Offset struct {
	Primitive
	DX, DY float64
}

func (o *Offset) SetAttr(name, value string) (err error) {
	switch name {
	case "dx":
		o.DX, err = parseFloat(value)
	case "dy":
		o.DY, err = parseFloat(value)
	default:
		return o.setAttr(name, value)
	}
	return err
}

// Flood is the payload of feFlood elements. Its color
// is given by the flood-color and flood-opacity properties.
type Flood struct {
	Primitive
}

func (f *Flood) SetAttr(name, value string) error { return f.setAttr(name, value) }

// ColorMatrixType is the 'type' attribute of feColorMatrix.
type ColorMatrixType uint8

const (
	MatrixValues ColorMatrixType = iota
	MatrixSaturate
	MatrixHueRotate
	MatrixLuminanceToAlpha
)

// ColorMatrix is the payload of feColorMatrix elements.
type ColorMatrix struct {
	Primitive
	Type   ColorMatrixType
	Values []float64
}

func (c *ColorMatrix) SetAttr(name, value string) (err error) {
	switch name {
	case "type":
		switch value {
		case "matrix":
			c.Type = MatrixValues
		case "saturate":
			c.Type = MatrixSaturate
		case "hueRotate":
			c.Type = MatrixHueRotate
		case "luminanceToAlpha":
			c.Type = MatrixLuminanceToAlpha
		default:
			return fmt.Errorf("invalid feColorMatrix type %q", value)
		}
	case "values":
		c.Values, err = svgpath.ParseNumberList(value)
	default:
		return c.setAttr(name, value)
	}
	return err
}

// Merge is the payload of feMerge elements. The merged
// inputs are given by its feMergeNode children.
type Merge struct {
	Primitive
}

func (m *Merge) SetAttr(name, value string) error { return m.setAttr(name, value) }

// MergeNode is the payload of feMergeNode elements.
type MergeNode struct {
	In string
}

func (m *MergeNode) SetAttr(name, value string) error {
	if name == "in" {
		m.In = strings.TrimSpace(value)
	}
	return nil
}

// CompositeOperator is the 'operator' attribute of feComposite.
type CompositeOperator uint8

const (
	CompositeOver CompositeOperator = iota
	CompositeIn
	CompositeOut
	CompositeAtop
	CompositeXor
	CompositeArithmetic
)

var compositeOperators = map[string]CompositeOperator{
	"over":       CompositeOver,
	"in":         CompositeIn,
	"out":        CompositeOut,
	"atop":       CompositeAtop,
	"xor":        CompositeXor,
	"arithmetic": CompositeArithmetic,
}

// Composite is the payload of feComposite elements.
type Composite struct {
	Primitive
	In2            string
	Operator       CompositeOperator
	K1, K2, K3, K4 float64
}

func (c *Composite) SetAttr(name, value string) (err error) {
	switch name {
	case "in2":
		c.In2 = strings.TrimSpace(value)
	case "operator":
		op, ok := compositeOperators[value]
		if !ok {
			return fmt.Errorf("invalid feComposite operator %q", value)
		}
		c.Operator = op
	case "k1":
		c.K1, err = parseFloat(value)
	case "k2":
		c.K2, err = parseFloat(value)
	case "k3":
		c.K3, err = parseFloat(value)
	case "k4":
		c.K4, err = parseFloat(value)
	default:
		return c.setAttr(name, value)
	}
	return err
}

// BlendMode is the 'mode' attribute of feBlend.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendDarken
	BlendLighten
)

var blendModes = map[string]BlendMode{
	"normal":   BlendNormal,
	"multiply": BlendMultiply,
	"screen":   BlendScreen,
	"darken":   BlendDarken,
	"lighten":  BlendLighten,
}

// Blend is the payload of feBlend elements.
type Blend struct {
	Primitive
	In2  string
	Mode BlendMode
}

func (b *Blend) SetAttr(name, value string) error {
	switch name {
	case "in2":
		b.In2 = strings.TrimSpace(value)
	case "mode":
		m, ok := blendModes[value]
		if !ok {
			return fmt.Errorf("invalid feBlend mode %q", value)
		}
		b.Mode = m
	default:
		return b.setAttr(name, value)
	}
	return nil
}
