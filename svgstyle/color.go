package svgstyle

import (
	"errors"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

var errParamMismatch = errors.New("svgstyle: param mismatch")

// ColorSpec is a color which may refer to the 'color'
// property of the element using it.
type ColorSpec struct {
	RGBA         color.NRGBA
	CurrentColor bool
}

// Resolve returns the actual color, given the current color.
func (c ColorSpec) Resolve(current color.NRGBA) color.NRGBA {
	if c.CurrentColor {
		return current
	}
	return c.RGBA
}

// ParseColorNum reads the SVG color string e.g. #FBD9BD
func ParseColorNum(colorStr string) (r, g, b uint8, err error) {
	colorStr = strings.TrimPrefix(colorStr, "#")
	var t uint64
	switch len(colorStr) {
	case 6:
	case 3:
		// SVG specs say duplicate characters in case of 3 digit hex number
		colorStr = string([]byte{colorStr[0], colorStr[0],
			colorStr[1], colorStr[1], colorStr[2], colorStr[2]})
	default:
		return 0, 0, 0, errParamMismatch
	}
	for _, v := range []struct {
		c *uint8
		s string
	}{
		{&r, colorStr[0:2]},
		{&g, colorStr[2:4]},
		{&b, colorStr[4:6]}} {
		t, err = strconv.ParseUint(v.s, 16, 8)
		if err != nil {
			return
		}
		*v.c = uint8(t)
	}
	return
}

// ParseColor parses an SVG color string in all forms
// including all SVG1.1 names, obtained from the colornames package
func ParseColor(colorStr string) (ColorSpec, error) {
	v := strings.ToLower(strings.TrimSpace(colorStr))
	switch v {
	case "":
		return ColorSpec{}, errParamMismatch
	case "currentcolor":
		return ColorSpec{CurrentColor: true}, nil
	case "transparent":
		return ColorSpec{}, nil
	}
	if cn, ok := colornames.Map[v]; ok {
		return ColorSpec{RGBA: color.NRGBA{cn.R, cn.G, cn.B, cn.A}}, nil
	}
	if v[0] == '#' {
		r, g, b, err := ParseColorNum(v)
		if err != nil {
			return ColorSpec{}, err
		}
		return ColorSpec{RGBA: color.NRGBA{r, g, b, 0xFF}}, nil
	}
	for _, prefix := range [...]string{"rgba(", "rgb("} {
		cStr := strings.TrimPrefix(v, prefix)
		if cStr == v {
			continue
		}
		cStr = strings.TrimSuffix(cStr, ")")
		vals := strings.Split(cStr, ",")
		if len(vals) != 3 && !(prefix == "rgba(" && len(vals) == 4) {
			return ColorSpec{}, errParamMismatch
		}
		out := color.NRGBA{A: 0xFF}
		for i, c := range [3]*uint8{&out.R, &out.G, &out.B} {
			var err error
			*c, err = parseColorValue(vals[i])
			if err != nil {
				return ColorSpec{}, err
			}
		}
		if len(vals) == 4 {
			a, err := readFraction(vals[3])
			if err != nil {
				return ColorSpec{}, err
			}
			out.A = uint8(a*0xFF + 0.5)
		}
		return ColorSpec{RGBA: out}, nil
	}
	return ColorSpec{}, errParamMismatch
}

func parseColorValue(v string) (uint8, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "%") {
		n, err := strconv.ParseFloat(strings.TrimSpace(v[:len(v)-1]), 64)
		if err != nil {
			return 0, err
		}
		return clampByte(n * 0xFF / 100), nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	return clampByte(n), nil
}

func clampByte(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	if f >= 255 {
		return 255
	}
	return uint8(f + 0.5)
}

// readFraction reads a decimal value or percentage value,
// clamped to [0, 1]
func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err = strconv.ParseFloat(v, 64)
	f /= d
	if f > 1 {
		f = 1
	} else if f < 0 {
		f = 0
	}
	return
}
