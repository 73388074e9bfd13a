package svgfilter

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// gaussianBlur blurs in, with the standard deviations given in
// device pixels. Pixels outside of sub are transparent.
//
// Isotropic blurs use imaging. Otherwise each axis is convolved
// on its own, so that a zero deviation leaves its axis untouched.
func gaussianBlur(in *image.RGBA, sub image.Rectangle, sx, sy float64) *image.RGBA {
	out := image.NewRGBA(in.Bounds())
	sub = sub.Intersect(in.Bounds())
	if sub.Empty() {
		return out
	}
	sx, sy = max(sx, 0), max(sy, 0)
	switch {
	case sx == 0 && sy == 0:
		copyRect(out, in, sub)
	case math.Abs(sx-sy) < 1e-6:
		blurred := imaging.Blur(in.SubImage(sub), sx)
		// blurred is not premultiplied, and its origin is (0, 0)
		draw.Draw(out, sub, blurred, image.Point{}, draw.Src)
	default:
		tmp := make([]float32, 4*sub.Dx()*sub.Dy())
		blurAxis(tmp, in, sub, gaussianKernel(sx), 1, 0)
		blurAxis(tmp, nil, sub, gaussianKernel(sy), 0, 1)
		for y := sub.Min.Y; y < sub.Max.Y; y++ {
			row := tmp[4*(y-sub.Min.Y)*sub.Dx():]
			off := out.PixOffset(sub.Min.X, y)
			for i := range 4 * sub.Dx() {
				out.Pix[off+i] = uint8(min(max(row[i]+0.5, 0), 0xFF))
			}
		}
	}
	return out
}

// gaussianKernel returns a normalized 1D kernel covering
// three standard deviations.
func gaussianKernel(sigma float64) []float32 {
	if sigma <= 0 {
		return []float32{1}
	}
	half := int(math.Ceil(sigma * 3))
	kernel := make([]float32, 2*half+1)
	var sum float64
	for i := range kernel {
		x := float64(i - half)
		v := math.Exp(-x * x / (2 * sigma * sigma))
		kernel[i] = float32(v)
		sum += v
	}
	for i := range kernel {
		kernel[i] /= float32(sum)
	}
	return kernel
}

// blurAxis convolves the premultiplied pixels of sub along the
// direction (dx, dy), writing into buf, which holds sub row by row.
// The pixels are read from src when not nil, from buf otherwise.
func blurAxis(buf []float32, src *image.RGBA, sub image.Rectangle, kernel []float32, dx, dy int) {
	w, h := sub.Dx(), sub.Dy()
	if src == nil && len(kernel) == 1 {
		return
	}
	in := buf
	if src == nil {
		in = make([]float32, len(buf))
		copy(in, buf)
	}
	read := func(x, y, c int) float32 {
		if src != nil {
			return float32(src.Pix[src.PixOffset(sub.Min.X+x, sub.Min.Y+y)+c])
		}
		return in[4*(y*w+x)+c]
	}
	half := len(kernel) / 2
	for y := range h {
		for x := range w {
			var acc [4]float32
			for k, weight := range kernel {
				sx, sy := x+(k-half)*dx, y+(k-half)*dy
				if sx < 0 || sx >= w || sy < 0 || sy >= h {
					continue // transparent
				}
				for c := range 4 {
					acc[c] += read(sx, sy, c) * weight
				}
			}
			copy(buf[4*(y*w+x):], acc[:])
		}
	}
}
