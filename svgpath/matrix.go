package svgpath

import (
	"math"

	"seehuhn.de/go/geom/matrix"
)

// Apply maps (x, y) through the affine transform m.
func Apply(m matrix.Matrix, x, y float64) (float64, float64) {
	return x*m[0] + y*m[2] + m[4], x*m[1] + y*m[3] + m[5]
}

// Invert returns the inverse of m. ok is false
// when m is not invertible.
func Invert(m matrix.Matrix) (inv matrix.Matrix, ok bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return matrix.Matrix{}, false
	}
	return matrix.Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, true
}

// Rotate returns the rotation of angle radians.
func Rotate(angle float64) matrix.Matrix {
	s, c := math.Sincos(angle)
	return matrix.Matrix{c, s, -s, c, 0, 0}
}

// ExpansionFactor returns the mean scaling applied by m,
// used to scale lengths which are not attached to an axis.
func ExpansionFactor(m matrix.Matrix) float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}
