package svgfilter

import (
	"image"
	"image/color"
	"math"

	"github.com/benoitkugler/svgrender/svgdoc"
	"golang.org/x/image/draw"
)

// pixel is a premultiplied color, with components in [0, 1]
type pixel [4]float64

func at(img *image.RGBA, x, y int) pixel {
	if !(image.Point{x, y}.In(img.Rect)) {
		return pixel{}
	}
	off := img.PixOffset(x, y)
	s := img.Pix[off : off+4 : off+4]
	return pixel{float64(s[0]) / 0xFF, float64(s[1]) / 0xFF, float64(s[2]) / 0xFF, float64(s[3]) / 0xFF}
}

func set(img *image.RGBA, x, y int, p pixel) {
	a := clamp01(p[3])
	off := img.PixOffset(x, y)
	s := img.Pix[off : off+4 : off+4]
	s[3] = uint8(a*0xFF + 0.5)
	for i := range 3 {
		// keep the premultiplied invariant
		s[i] = uint8(min(clamp01(p[i]), a)*0xFF + 0.5)
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// pixelwise returns a surface with the bounds of a, whose pixels in
// sub are f(a, b). b may be nil.
func pixelwise(a, b *image.RGBA, sub image.Rectangle, f func(a, b pixel) pixel) *image.RGBA {
	out := image.NewRGBA(a.Bounds())
	for y := sub.Min.Y; y < sub.Max.Y; y++ {
		for x := sub.Min.X; x < sub.Max.X; x++ {
			var pb pixel
			if b != nil {
				pb = at(b, x, y)
			}
			set(out, x, y, f(at(a, x, y), pb))
		}
	}
	return out
}

// copyRect copies the pixels of src in r to dst.
func copyRect(dst, src *image.RGBA, r image.Rectangle) {
	draw.Draw(dst, r, src, r.Min, draw.Src)
}

func alphaOnly(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	for i := 3; i < len(img.Pix); i += 4 {
		out.Pix[i] = img.Pix[i]
	}
	return out
}

func offset(in *image.RGBA, sub image.Rectangle, dx, dy float64) *image.RGBA {
	out := image.NewRGBA(in.Bounds())
	d := image.Pt(int(math.Round(dx)), int(math.Round(dy)))
	draw.Draw(out, sub, in, sub.Min.Sub(d), draw.Src)
	return out
}

func flood(bounds, sub image.Rectangle, c color.NRGBA) *image.RGBA {
	out := image.NewRGBA(bounds)
	draw.Draw(out, sub, image.NewUniform(c), image.Point{}, draw.Src)
	return out
}

// colorMatrix is a 4x5 matrix, applied to non premultiplied colors.
type colorMatrix [20]float64

var identityMatrix = colorMatrix{
	1, 0, 0, 0, 0,
	0, 1, 0, 0, 0,
	0, 0, 1, 0, 0,
	0, 0, 0, 1, 0,
}

// colorMatrixFor returns the matrix of a feColorMatrix primitive.
// Invalid values are replaced by the identity, and ok is false.
func colorMatrixFor(typ svgdoc.ColorMatrixType, values []float64) (m colorMatrix, ok bool) {
	switch typ {
	case svgdoc.MatrixValues:
		if len(values) == 0 {
			return identityMatrix, true
		}
		if len(values) != 20 {
			return identityMatrix, false
		}
		copy(m[:], values)
		return m, true
	case svgdoc.MatrixSaturate:
		s := 1.
		if len(values) > 0 {
			s = values[0]
		}
		if len(values) > 1 || s < 0 {
			return identityMatrix, false
		}
		return colorMatrix{
			0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s, 0, 0,
			0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s, 0, 0,
			0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s, 0, 0,
			0, 0, 0, 1, 0,
		}, true
	case svgdoc.MatrixHueRotate:
		var angle float64
		if len(values) > 0 {
			angle = values[0] * math.Pi / 180
		}
		if len(values) > 1 {
			return identityMatrix, false
		}
		s, c := math.Sincos(angle)
		return colorMatrix{
			0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928, 0, 0,
			0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283, 0, 0,
			0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072, 0, 0,
			0, 0, 0, 1, 0,
		}, true
	case svgdoc.MatrixLuminanceToAlpha:
		return colorMatrix{
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
			0, 0, 0, 0, 0,
			0.2125, 0.7154, 0.0721, 0, 0,
		}, true
	}
	return identityMatrix, false
}

func applyColorMatrix(in *image.RGBA, sub image.Rectangle, m colorMatrix) *image.RGBA {
	return pixelwise(in, nil, sub, func(p, _ pixel) pixel {
		var c [4]float64
		if a := p[3]; a > 0 {
			c = [4]float64{p[0] / a, p[1] / a, p[2] / a, a}
		}
		var out pixel
		for i := range 4 {
			row := m[5*i : 5*i+5]
			out[i] = row[0]*c[0] + row[1]*c[1] + row[2]*c[2] + row[3]*c[3] + row[4]
		}
		a := clamp01(out[3])
		return pixel{clamp01(out[0]) * a, clamp01(out[1]) * a, clamp01(out[2]) * a, a}
	})
}

func merge(bounds, sub image.Rectangle, inputs []*image.RGBA) *image.RGBA {
	out := image.NewRGBA(bounds)
	for _, in := range inputs {
		draw.Draw(out, sub, in, sub.Min, draw.Over)
	}
	return out
}

func composite(a, b *image.RGBA, sub image.Rectangle, op svgdoc.CompositeOperator, k [4]float64) *image.RGBA {
	return pixelwise(a, b, sub, func(a, b pixel) pixel {
		var out pixel
		for i := range 4 {
			switch op {
			case svgdoc.CompositeOver:
				out[i] = a[i] + b[i]*(1-a[3])
			case svgdoc.CompositeIn:
				out[i] = a[i] * b[3]
			case svgdoc.CompositeOut:
				out[i] = a[i] * (1 - b[3])
			case svgdoc.CompositeAtop:
				out[i] = a[i]*b[3] + b[i]*(1-a[3])
			case svgdoc.CompositeXor:
				out[i] = a[i]*(1-b[3]) + b[i]*(1-a[3])
			case svgdoc.CompositeArithmetic:
				out[i] = k[0]*a[i]*b[i] + k[1]*a[i] + k[2]*b[i] + k[3]
			}
		}
		return out
	})
}

// blend draws a on top of b.
func blend(a, b *image.RGBA, sub image.Rectangle, mode svgdoc.BlendMode) *image.RGBA {
	return pixelwise(a, b, sub, func(a, b pixel) pixel {
		qa, qb := a[3], b[3]
		var out pixel
		for i := range 3 {
			ca, cb := a[i], b[i]
			switch mode {
			case svgdoc.BlendNormal:
				out[i] = (1-qa)*cb + ca
			case svgdoc.BlendMultiply:
				out[i] = (1-qa)*cb + (1-qb)*ca + ca*cb
			case svgdoc.BlendScreen:
				out[i] = cb + ca - ca*cb
			case svgdoc.BlendDarken:
				out[i] = min((1-qa)*cb+ca, (1-qb)*ca+cb)
			case svgdoc.BlendLighten:
				out[i] = max((1-qa)*cb+ca, (1-qb)*ca+cb)
			}
		}
		out[3] = 1 - (1-qa)*(1-qb)
		return out
	})
}
