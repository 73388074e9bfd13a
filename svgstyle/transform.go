package svgstyle

import (
	"math"
	"strings"

	"github.com/benoitkugler/svgrender/svgpath"
	"seehuhn.de/go/geom/matrix"
)

// readTransformAttr returns the transform of kind k with the
// given arguments.
func readTransformAttr(k string, points []float64) (matrix.Matrix, error) {
	ln := len(points)
	switch k {
	case "rotate":
		if ln == 1 {
			return svgpath.Rotate(points[0] * math.Pi / 180), nil
		} else if ln == 3 {
			return matrix.Translate(-points[1], -points[2]).
				Mul(svgpath.Rotate(points[0] * math.Pi / 180)).
				Mul(matrix.Translate(points[1], points[2])), nil
		}
	case "translate":
		if ln == 1 {
			return matrix.Translate(points[0], 0), nil
		} else if ln == 2 {
			return matrix.Translate(points[0], points[1]), nil
		}
	case "skewx":
		if ln == 1 {
			return matrix.Matrix{1, 0, math.Tan(points[0] * math.Pi / 180), 1, 0, 0}, nil
		}
	case "skewy":
		if ln == 1 {
			return matrix.Matrix{1, math.Tan(points[0] * math.Pi / 180), 0, 1, 0, 0}, nil
		}
	case "scale":
		if ln == 1 {
			return matrix.Scale(points[0], points[0]), nil
		} else if ln == 2 {
			return matrix.Scale(points[0], points[1]), nil
		}
	case "matrix":
		if ln == 6 {
			return matrix.Matrix{points[0], points[1], points[2], points[3], points[4], points[5]}, nil
		}
	}
	return matrix.Identity, errParamMismatch
}

// ParseTransform parses a 'transform' attribute. The transforms are
// composed so that the last one listed is applied first.
func ParseTransform(v string) (matrix.Matrix, error) {
	m := matrix.Identity
	for _, t := range strings.Split(v, ")") {
		t = strings.TrimSpace(strings.TrimLeft(t, ", \t\n"))
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m, errParamMismatch // badly formed transformation
		}
		points, err := svgpath.ParseNumberList(d[1])
		if err != nil {
			return m, err
		}
		tr, err := readTransformAttr(strings.ToLower(strings.TrimSpace(d[0])), points)
		if err != nil {
			return m, err
		}
		m = tr.Mul(m)
	}
	return m, nil
}
