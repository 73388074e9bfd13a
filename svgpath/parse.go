package svgpath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var errParamMismatch = errors.New("svgpath: param mismatch")

// ErrBadNumber is returned when a coordinate could not be read.
var ErrBadNumber = errors.New("svgpath: invalid number")

// pathCursor is used to parse SVG format path strings into a Path
type pathCursor struct {
	path           Path
	placeX, placeY float64 // current point
	curX, curY     float64 // start of the current subpath
	cntlPtX        float64 // last control point, used by smooth curves
	cntlPtY        float64
	lastKey        byte
	inPath         bool
	points         []float64
}

// ParsePathData compiles the content of a 'd' attribute.
// On error, the path compiled up to the faulty command is returned
// along with the error, so that callers may render the valid prefix.
func ParsePathData(d string) (Path, error) {
	var c pathCursor
	err := c.compilePath(d)
	return c.path, err
}

func isCommand(ch byte) bool {
	switch ch {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v', 'C', 'c', 'S', 's',
		'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

func isSeparator(ch byte) bool {
	return ch == ' ' || ch == ',' || ch == '\n' || ch == '\t' || ch == '\r'
}

// scanNumber reads a float at the start of s, and returns
// it with the number of bytes consumed.
func scanNumber(s string) (float64, int, error) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, 0, fmt.Errorf("%w at %q", ErrBadNumber, s)
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j { // a dangling 'e' is not part of the number
			i = k
		}
	}
	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrBadNumber, err)
	}
	return f, i, nil
}

// ParseNumberList reads a list of numbers separated by
// whitespace and/or commas, as used by 'points' or 'viewBox'.
func ParseNumberList(s string) ([]float64, error) {
	var out []float64
	for i := 0; i < len(s); {
		if isSeparator(s[i]) {
			i++
			continue
		}
		f, l, err := scanNumber(s[i:])
		if err != nil {
			return out, err
		}
		out = append(out, f)
		i += l
	}
	return out, nil
}

func (c *pathCursor) compilePath(svgPath string) error {
	var cmd byte
	c.points = c.points[:0]
	for i := 0; i < len(svgPath); {
		ch := svgPath[i]
		switch {
		case isSeparator(ch):
			i++
		case isCommand(ch):
			if cmd != 0 {
				if err := c.addSeg(cmd); err != nil {
					return err
				}
			} else if ch != 'M' && ch != 'm' {
				return fmt.Errorf("svgpath: path data must start with a moveto, got %q", ch)
			}
			cmd = ch
			c.points = c.points[:0]
			i++
		default:
			if cmd == 0 {
				return fmt.Errorf("svgpath: path data must start with a command, got %q", ch)
			}
			// arc flags may be written without separators
			if k := len(c.points) % 7; (cmd == 'a' || cmd == 'A') && (k == 3 || k == 4) {
				if ch != '0' && ch != '1' {
					return errParamMismatch
				}
				c.points = append(c.points, float64(ch-'0'))
				i++
				continue
			}
			f, l, err := scanNumber(svgPath[i:])
			if err != nil {
				return err
			}
			c.points = append(c.points, f)
			i += l
		}
	}
	if cmd != 0 {
		return c.addSeg(cmd)
	}
	return nil
}

// argCount returns the number of arguments expected by one
// occurence of the command.
func argCount(cmd byte) int {
	switch cmd {
	case 'Z', 'z':
		return 0
	case 'H', 'h', 'V', 'v':
		return 1
	case 'M', 'm', 'L', 'l', 'T', 't':
		return 2
	case 'S', 's', 'Q', 'q':
		return 4
	case 'C', 'c':
		return 6
	default: // 'A', 'a'
		return 7
	}
}

// reflect returns the reflection of the last control point
// if the previous command was one of the keys.
func (c *pathCursor) reflect(keys string) (float64, float64) {
	for i := 0; i < len(keys); i++ {
		if c.lastKey == keys[i] {
			return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
		}
	}
	return c.placeX, c.placeY
}

// addSeg decodes the command with the current points,
// handling implicit repetitions.
func (c *pathCursor) addSeg(cmd byte) error {
	n := argCount(cmd)
	l := len(c.points)
	if n == 0 {
		if l != 0 {
			return errParamMismatch
		}
		if c.inPath {
			c.path.Stop(true)
			c.placeX, c.placeY = c.curX, c.curY
			c.inPath = false
		}
		c.lastKey = 'z'
		return nil
	}
	if l == 0 || l%n != 0 {
		return errParamMismatch
	}
	rel := cmd >= 'a'
	key := cmd | 0x20 // lower case
	for j := 0; j < l; j += n {
		p := c.points[j : j+n]
		var dx, dy float64
		if rel {
			dx, dy = c.placeX, c.placeY
		}
		switch key {
		case 'm':
			if j != 0 { // subsequent pairs are implicit lineto
				c.lineTo(p[0]+dx, p[1]+dy)
				c.lastKey = 'l'
				continue
			}
			c.placeX, c.placeY = p[0]+dx, p[1]+dy
			c.curX, c.curY = c.placeX, c.placeY
			c.path.Start(Point{c.placeX, c.placeY})
			c.inPath = true
		case 'l':
			c.lineTo(p[0]+dx, p[1]+dy)
		case 'h':
			c.lineTo(p[0]+dx, c.placeY)
		case 'v':
			c.lineTo(c.placeX, p[0]+dy)
		case 'q':
			c.ensureStart()
			c.cntlPtX, c.cntlPtY = p[0]+dx, p[1]+dy
			c.placeX, c.placeY = p[2]+dx, p[3]+dy
			c.path.QuadBezier(Point{c.cntlPtX, c.cntlPtY}, Point{c.placeX, c.placeY})
		case 't':
			c.ensureStart()
			c.cntlPtX, c.cntlPtY = c.reflect("qt")
			c.placeX, c.placeY = p[0]+dx, p[1]+dy
			c.path.QuadBezier(Point{c.cntlPtX, c.cntlPtY}, Point{c.placeX, c.placeY})
		case 'c':
			c.ensureStart()
			c1 := Point{p[0] + dx, p[1] + dy}
			c.cntlPtX, c.cntlPtY = p[2]+dx, p[3]+dy
			c.placeX, c.placeY = p[4]+dx, p[5]+dy
			c.path.CubeBezier(c1, Point{c.cntlPtX, c.cntlPtY}, Point{c.placeX, c.placeY})
		case 's':
			c.ensureStart()
			x1, y1 := c.reflect("cs")
			c.cntlPtX, c.cntlPtY = p[0]+dx, p[1]+dy
			c.placeX, c.placeY = p[2]+dx, p[3]+dy
			c.path.CubeBezier(Point{x1, y1}, Point{c.cntlPtX, c.cntlPtY}, Point{c.placeX, c.placeY})
		case 'a':
			c.ensureStart()
			var arc [7]float64
			copy(arc[:], p)
			arc[5] += dx
			arc[6] += dy
			c.arcTo(arc[:])
		}
		c.lastKey = key
	}
	return nil
}

// ensureStart opens a subpath at the current point if
// the previous one has been closed.
func (c *pathCursor) ensureStart() {
	if !c.inPath {
		c.curX, c.curY = c.placeX, c.placeY
		c.path.Start(Point{c.placeX, c.placeY})
		c.inPath = true
	}
}

func (c *pathCursor) lineTo(x, y float64) {
	c.ensureStart()
	c.placeX, c.placeY = x, y
	c.path.Line(Point{x, y})
}

// arcTo expects absolute end point coordinates in points[5:7]
func (c *pathCursor) arcTo(points []float64) {
	if points[5] == c.placeX && points[6] == c.placeY {
		return // zero length arcs are omitted
	}
	if points[0] == 0 || points[1] == 0 {
		c.lineTo(points[5], points[6])
		return
	}
	points[0], points[1] = math.Abs(points[0]), math.Abs(points[1])
	cx, cy := findEllipseCenter(&points[0], &points[1], points[2]*math.Pi/180, c.placeX,
		c.placeY, points[5], points[6], points[4] == 0, points[3] == 0)
	c.placeX, c.placeY = c.path.addArc(points, cx, cy, c.placeX, c.placeY)
}
