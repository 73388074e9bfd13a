package svgdoc

import (
	"fmt"
	"strings"

	"github.com/benoitkugler/svgrender/svgpath"
	"seehuhn.de/go/geom/matrix"
)

// ViewBox is the 'viewBox' attribute of svg, symbol,
// pattern and marker elements.
type ViewBox struct{ X, Y, W, H float64 }

// ParseViewBox parses a 'viewBox' attribute.
// Negative dimensions are an error.
func ParseViewBox(v string) (ViewBox, error) {
	points, err := svgpath.ParseNumberList(v)
	if err != nil {
		return ViewBox{}, err
	}
	if len(points) != 4 {
		return ViewBox{}, errParamMismatch
	}
	vb := ViewBox{points[0], points[1], points[2], points[3]}
	if vb.W < 0 || vb.H < 0 {
		return ViewBox{}, fmt.Errorf("negative viewBox dimensions in %q", v)
	}
	return vb, nil
}

// Align is the alignment part of 'preserveAspectRatio'.
type Align uint8

const (
	AlignNone Align = iota
	AlignXMinYMin
	AlignXMidYMin
	AlignXMaxYMin
	AlignXMinYMid
	AlignXMidYMid
	AlignXMaxYMid
	AlignXMinYMax
	AlignXMidYMax
	AlignXMaxYMax
)

var alignNames = map[string]Align{
	"none":     AlignNone,
	"xMinYMin": AlignXMinYMin,
	"xMidYMin": AlignXMidYMin,
	"xMaxYMin": AlignXMaxYMin,
	"xMinYMid": AlignXMinYMid,
	"xMidYMid": AlignXMidYMid,
	"xMaxYMid": AlignXMaxYMid,
	"xMinYMax": AlignXMinYMax,
	"xMidYMax": AlignXMidYMax,
	"xMaxYMax": AlignXMaxYMax,
}

// AspectRatio is the 'preserveAspectRatio' attribute.
type AspectRatio struct {
	Align Align
	Slice bool // false for 'meet'
}

// DefaultAspectRatio is 'xMidYMid meet'.
var DefaultAspectRatio = AspectRatio{Align: AlignXMidYMid}

// ParseAspectRatio parses a 'preserveAspectRatio' attribute.
func ParseAspectRatio(v string) (AspectRatio, error) {
	fields := strings.Fields(v)
	if len(fields) > 0 && fields[0] == "defer" {
		fields = fields[1:]
	}
	if len(fields) == 0 || len(fields) > 2 {
		return AspectRatio{}, fmt.Errorf("invalid preserveAspectRatio %q", v)
	}
	out := DefaultAspectRatio
	al, ok := alignNames[fields[0]]
	if !ok {
		return AspectRatio{}, fmt.Errorf("invalid preserveAspectRatio alignment %q", fields[0])
	}
	out.Align = al
	if len(fields) == 2 {
		switch fields[1] {
		case "meet":
		case "slice":
			out.Slice = true
		default:
			return AspectRatio{}, fmt.Errorf("invalid preserveAspectRatio %q", v)
		}
	}
	return out, nil
}

// position returns the fraction of the free space
// put before the content, on each axis.
func (a Align) position() (fx, fy float64) {
	if a == AlignNone {
		return 0, 0
	}
	i := int(a - AlignXMinYMin)
	return float64(i%3) / 2, float64(i/3) / 2
}

// Fit returns the transform mapping vb onto the viewport
// (x, y, w, h). vb must have positive dimensions.
func (p AspectRatio) Fit(vb ViewBox, x, y, w, h float64) matrix.Matrix {
	sx, sy := w/vb.W, h/vb.H
	var ox, oy float64
	if p.Align != AlignNone {
		s := min(sx, sy)
		if p.Slice {
			s = max(sx, sy)
		}
		sx, sy = s, s
		fx, fy := p.Align.position()
		ox, oy = (w-vb.W*s)*fx, (h-vb.H*s)*fy
	}
	return matrix.Translate(-vb.X, -vb.Y).
		Mul(matrix.Scale(sx, sy)).
		Mul(matrix.Translate(x+ox, y+oy))
}
