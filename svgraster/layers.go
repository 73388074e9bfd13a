package svgraster

import (
	"image"

	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgfilter"
	"github.com/benoitkugler/svgrender/svgstyle"
	"golang.org/x/image/draw"
)

// PushDiscreteLayer saves the current surface, and allocates a new
// one for isolated layers. A layer which cannot be allocated is
// dead: its content is dropped.
func (rd *Renderer) PushDiscreteLayer(ctx *svgdraw.DrawingCtx, layer *svgdraw.Layer) {
	rd.frames = append(rd.frames, frame{surface: rd.surface, clip: rd.clip, isolated: layer.Isolated})
	if rd.surface == nil {
		return
	}
	if layer.Isolated {
		s, err := rd.allocSurface()
		if err != nil {
			ctx.Logger().Warn("discarding layer", "err", err)
			rd.setSurface(nil)
			return
		}
		rd.setSurface(s)
		// isolated layers are clipped when composited
		rd.clip = nil
		return
	}
	if layer.Clip != nil {
		rd.clip = intersect(rd.clip, rd.clipMask(ctx, layer))
	}
}

// PopDiscreteLayer restores the parent surface, compositing the
// content of an isolated layer.
func (rd *Renderer) PopDiscreteLayer(ctx *svgdraw.DrawingCtx, layer *svgdraw.Layer) {
	f := rd.frames[len(rd.frames)-1]
	rd.frames = rd.frames[:len(rd.frames)-1]
	content := rd.surface
	rd.setSurface(f.surface)
	rd.clip = f.clip
	if !f.isolated || content == nil || f.surface == nil {
		return
	}

	if layer.Filter != nil {
		content = svgfilter.Filter{
			Doc:      ctx.Document(),
			Node:     layer.Filter,
			Bbox:     layer.Bbox,
			Resolver: ctx.Resolver(),
			Logger:   ctx.Logger(),
		}.Apply(content, f.surface)
	}

	mask := f.clip
	if layer.Clip != nil || layer.LateClip != nil {
		mask = intersect(mask, rd.clipMask(ctx, layer))
	}
	if layer.Mask != nil {
		m, err := rd.allocSurface()
		if err != nil {
			ctx.Logger().Warn("discarding mask", "err", err)
			return
		}
		ctx.DrawMask(layer.Mask, rd.child(m), layer.Bbox)
		mask = intersect(mask, luminanceMask(m))
	}

	compose(f.surface, content, mask, layer.Opacity, layer.CompOp)
}

// allocSurface returns a new transparent surface, with the size of
// the output.
func (rd *Renderer) allocSurface() (*image.RGBA, error) {
	if rd.cfg.maxPixels > 0 && rd.width*rd.height > rd.cfg.maxPixels {
		return nil, ErrSurfaceTooLarge
	}
	if rd.cfg.surfaceHook != nil {
		rd.cfg.surfaceHook(rd.bounds())
	}
	return image.NewRGBA(rd.bounds()), nil
}

// compose draws src onto dst with the given operator, restricted
// by mask (which may be nil) and scaled by opacity.
func compose(dst, src *image.RGBA, mask *image.Alpha, opacity float64, op svgstyle.CompOp) {
	b := dst.Bounds()
	if op == svgstyle.CompSrcOver {
		draw.DrawMask(dst, b, src, b.Min, scaledMask(mask, b, opacity), b.Min, draw.Over)
		return
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			m := 1.
			if mask != nil {
				m = float64(mask.AlphaAt(x, y).A) / 0xFF
			}
			if m == 0 {
				continue
			}
			s, d := load(src, x, y), load(dst, x, y)
			for i := range s {
				s[i] *= opacity
			}
			res := composeOp(op, s, d)
			for i := range res {
				res[i] = res[i]*m + d[i]*(1-m)
			}
			store(dst, x, y, res)
		}
	}
}

// rgba is a premultiplied color, with components in [0, 1].
type rgba [4]float64

func load(img *image.RGBA, x, y int) rgba {
	off := img.PixOffset(x, y)
	p := img.Pix[off : off+4 : off+4]
	return rgba{float64(p[0]) / 0xFF, float64(p[1]) / 0xFF, float64(p[2]) / 0xFF, float64(p[3]) / 0xFF}
}

func store(img *image.RGBA, x, y int, c rgba) {
	off := img.PixOffset(x, y)
	p := img.Pix[off : off+4 : off+4]
	a := min(max(c[3], 0), 1)
	p[3] = uint8(a*0xFF + 0.5)
	for i := range 3 {
		p[i] = uint8(min(max(c[i], 0), a)*0xFF + 0.5)
	}
}

// composeOp returns the result of op for premultiplied colors.
func composeOp(op svgstyle.CompOp, s, d rgba) rgba {
	sa, da := s[3], d[3]
	var out rgba
	for i := range out {
		sc, dc := s[i], d[i]
		switch op {
		case svgstyle.CompClear:
			out[i] = 0
		case svgstyle.CompSrc:
			out[i] = sc
		case svgstyle.CompDst:
			out[i] = dc
		case svgstyle.CompSrcOver:
			out[i] = sc + dc*(1-sa)
		case svgstyle.CompDstOver:
			out[i] = dc + sc*(1-da)
		case svgstyle.CompSrcIn:
			out[i] = sc * da
		case svgstyle.CompDstIn:
			out[i] = dc * sa
		case svgstyle.CompSrcOut:
			out[i] = sc * (1 - da)
		case svgstyle.CompDstOut:
			out[i] = dc * (1 - sa)
		case svgstyle.CompSrcAtop:
			out[i] = sc*da + dc*(1-sa)
		case svgstyle.CompDstAtop:
			out[i] = dc*sa + sc*(1-da)
		case svgstyle.CompXor:
			out[i] = sc*(1-da) + dc*(1-sa)
		case svgstyle.CompPlus:
			out[i] = min(sc+dc, 1)
		case svgstyle.CompMultiply:
			out[i] = sc*dc + sc*(1-da) + dc*(1-sa)
		case svgstyle.CompScreen:
			out[i] = sc + dc - sc*dc
		case svgstyle.CompDarken:
			out[i] = min(sc*da, dc*sa) + sc*(1-da) + dc*(1-sa)
		case svgstyle.CompLighten:
			out[i] = max(sc*da, dc*sa) + sc*(1-da) + dc*(1-sa)
		}
	}
	// the alpha channel of separable blend modes is src-over
	switch op {
	case svgstyle.CompMultiply, svgstyle.CompScreen, svgstyle.CompDarken, svgstyle.CompLighten:
		out[3] = sa + da - sa*da
	}
	return out
}
