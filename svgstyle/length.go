package svgstyle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Unit is the unit of a Length
type Unit uint8

const (
	UnitDefault Unit = iota // user unit, that is px
	UnitPercent             // Value is a fraction, "50%" is stored as 0.5
	UnitPx
	UnitPt
	UnitPc
	UnitIn
	UnitCm
	UnitMm
	UnitEm
	UnitEx
)

var unitSuffixes = [...]struct {
	suffix string
	unit   Unit
}{
	{"%", UnitPercent},
	{"px", UnitPx},
	{"pt", UnitPt},
	{"pc", UnitPc},
	{"in", UnitIn},
	{"cm", UnitCm},
	{"mm", UnitMm},
	{"em", UnitEm},
	{"ex", UnitEx},
}

// Length is an SVG length, which needs a context
// to be resolved in user units.
type Length struct {
	Value float64
	Unit  Unit
}

// Px returns a length in user units.
func Px(v float64) Length { return Length{Value: v} }

// ParseLength parses an SVG length such as "12", "1.5em" or "50%".
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	out := Length{}
	for _, u := range unitSuffixes {
		if strings.HasSuffix(s, u.suffix) {
			out.Unit = u.unit
			s = strings.TrimSpace(s[:len(s)-len(u.suffix)])
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: %w", s, err)
	}
	if out.Unit == UnitPercent {
		v /= 100
	}
	out.Value = v
	return out, nil
}

// ParseLengthList parses a list of lengths separated by spaces or commas.
func ParseLengthList(s string) ([]Length, error) {
	fields := splitOnCommaOrSpace(s)
	out := make([]Length, len(fields))
	for i, f := range fields {
		var err error
		out[i], err = ParseLength(f)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
}

// Axis selects the reference dimension of percentages.
type Axis uint8

const (
	Horizontal Axis = iota
	Vertical
	Diagonal // neither horizontal nor vertical, such as a radius
)

// Resolver holds what is needed to convert a Length
// to user units: resolution, the current view box and
// the computed font size.
type Resolver struct {
	DPIX, DPIY float64
	ViewBoxW   float64
	ViewBoxH   float64
	FontSize   float64 // in user units
}

func (r Resolver) dpi(axis Axis) float64 {
	switch axis {
	case Horizontal:
		return r.DPIX
	case Vertical:
		return r.DPIY
	default:
		return math.Sqrt(r.DPIX*r.DPIX+r.DPIY*r.DPIY) / math.Sqrt2
	}
}

// Resolve returns l in user units.
func (l Length) Resolve(r Resolver, axis Axis) float64 {
	switch l.Unit {
	case UnitPercent:
		switch axis {
		case Horizontal:
			return l.Value * r.ViewBoxW
		case Vertical:
			return l.Value * r.ViewBoxH
		default:
			return l.Value * math.Sqrt(r.ViewBoxW*r.ViewBoxW+r.ViewBoxH*r.ViewBoxH) / math.Sqrt2
		}
	case UnitEm:
		return l.Value * r.FontSize
	case UnitEx:
		return l.Value * r.FontSize / 2
	case UnitIn:
		return l.Value * r.dpi(axis)
	case UnitCm:
		return l.Value * r.dpi(axis) / 2.54
	case UnitMm:
		return l.Value * r.dpi(axis) / 25.4
	case UnitPt:
		return l.Value * r.dpi(axis) / 72
	case UnitPc:
		return l.Value * r.dpi(axis) / 6
	default:
		return l.Value
	}
}

// ResolveBox resolves l relative to an object bounding box:
// plain numbers and percentages are fractions of the box dimension.
func (l Length) ResolveBox(r Resolver, axis Axis, boxLength float64) float64 {
	switch l.Unit {
	case UnitDefault, UnitPercent:
		return l.Value * boxLength
	default:
		return l.Resolve(r, axis)
	}
}

var fontSizeKeywords = map[string]Length{
	"xx-small": {6.944444, UnitPt},
	"x-small":  {8.3333, UnitPt},
	"small":    {10, UnitPt},
	"medium":   {12, UnitPt},
	"large":    {14.4, UnitPt},
	"x-large":  {17.28, UnitPt},
	"xx-large": {20.736, UnitPt},
	"larger":   {1.2, UnitEm},
	"smaller":  {1 / 1.2, UnitEm},
}
