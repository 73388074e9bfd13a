// Package svgtext shapes the text of SVG documents into
// glyph outlines, using HarfBuzz shaping from go-text/typesetting
// and the outlines of golang.org/x/image/font/sfnt.
package svgtext

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/benoitkugler/svgrender/svgpath"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/matrix"
)

// FontDesc selects a face and its size.
type FontDesc struct {
	Family        string  // CSS font-family list
	Size          float64 // in user units
	Weight        int     // 100 to 900
	Italic        bool
	Lang          string // empty for english
	RightToLeft   bool
	LetterSpacing float64
}

// face is a loaded font file.
type face struct {
	family string // lower case
	weight int
	italic bool

	shaping *font.Font // safe for concurrent use
	outline *sfnt.Font
}

// Shaper converts text to glyph outlines. It is safe
// for concurrent use.
type Shaper struct {
	mu       sync.RWMutex
	faces    []*face
	fallback string // lower case, tried before the Go fonts

	pool sync.Pool // of *shaping.HarfbuzzShaper
}

// NewShaper returns a shaper with the Go fonts loaded,
// used as fallback for unknown families.
func NewShaper() *Shaper {
	s := &Shaper{pool: sync.Pool{New: func() any { return new(shaping.HarfbuzzShaper) }}}
	for _, f := range [...]struct {
		data   []byte
		weight int
		italic bool
	}{
		{goregular.TTF, 400, false},
		{gobold.TTF, 700, false},
		{goitalic.TTF, 400, true},
		{gobolditalic.TTF, 700, true},
		{gomono.TTF, 400, false},
		{gomonobold.TTF, 700, false},
	} {
		if fa, err := parseFace(f.data); err == nil {
			fa.weight, fa.italic = f.weight, f.italic
			s.faces = append(s.faces, fa)
		}
	}
	return s
}

func parseFace(data []byte) (*face, error) {
	ot, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	ts, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out := &face{shaping: ts.Font, outline: ot, weight: 400}
	var buf sfnt.Buffer
	if family, err := ot.Name(&buf, sfnt.NameIDFamily); err == nil {
		out.family = strings.ToLower(family)
	}
	if sub, err := ot.Name(&buf, sfnt.NameIDSubfamily); err == nil {
		sub = strings.ToLower(sub)
		out.italic = strings.Contains(sub, "italic") || strings.Contains(sub, "oblique")
		if strings.Contains(sub, "bold") {
			out.weight = 700
		} else if strings.Contains(sub, "light") {
			out.weight = 300
		}
	}
	return out, nil
}

// AddFont registers a TrueType or OpenType font.
func (s *Shaper) AddFont(data []byte) error {
	fa, err := parseFace(data)
	if err != nil {
		return fmt.Errorf("svgtext: invalid font: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faces = append(s.faces, fa)
	return nil
}

// LoadDir registers the .ttf and .otf files found in dir
// and its sub-directories. It returns the number of fonts loaded.
// Invalid font files are skipped.
func (s *Shaper) LoadDir(dir string) (int, error) {
	var n int
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := strings.ToLower(filepath.Ext(path))
		if d.IsDir() || (ext != ".ttf" && ext != ".otf") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if s.AddFont(data) == nil {
			n++
		}
		return nil
	})
	return n, err
}

var genericFamilies = map[string]string{
	"serif":      "go",
	"sans-serif": "go",
	"cursive":    "go",
	"fantasy":    "go",
	"monospace":  "go mono",
}

// SetFallback sets the family used when none of the
// families requested by an element is available.
func (s *Shaper) SetFallback(family string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = strings.ToLower(strings.TrimSpace(family))
}

// lookup returns the best face for desc: the first family
// of the list which is known, with the closest weight and style.
func (s *Shaper) lookup(desc FontDesc) *face {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.faces) == 0 {
		return nil
	}
	families := strings.Split(desc.Family, ",")
	if s.fallback != "" {
		families = append(families, s.fallback)
	}
	families = append(families, "go")
	for _, family := range families {
		family = strings.ToLower(strings.Trim(strings.TrimSpace(family), `'"`))
		if g, ok := genericFamilies[family]; ok {
			family = g
		}
		var (
			best      *face
			bestScore int
		)
		for _, fa := range s.faces {
			if fa.family != family {
				continue
			}
			score := abs(fa.weight - desc.Weight)
			if fa.italic != desc.Italic {
				score += 1000
			}
			if best == nil || score < bestScore {
				best, bestScore = fa, score
			}
		}
		if best != nil {
			return best
		}
	}
	return s.faces[0]
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func toFixed(f float64) fixed.Int26_6 { return fixed.Int26_6(f * 64) }

func fromFixed(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Glyph is a shaped glyph.
type Glyph struct {
	Outline svgpath.Path // relative to the glyph origin, y axis down
	X, Y    float64      // glyph origin, relative to the line origin
}

// Line is a shaped run of text, whose origin is on the baseline.
type Line struct {
	Glyphs  []Glyph
	Advance float64
	Ascent  float64 // above the baseline, positive
	Descent float64 // below the baseline, positive
}

// Path returns the outlines of the glyphs, for a line
// whose origin is (x, y).
func (l *Line) Path(x, y float64) svgpath.Path {
	var out svgpath.Path
	for _, g := range l.Glyphs {
		out = append(out, g.Outline.Transform(matrix.Translate(x+g.X, y+g.Y))...)
	}
	return out
}

// Shape lays out text on a single line.
func (s *Shaper) Shape(text string, desc FontDesc) (*Line, error) {
	if desc.Size <= 0 {
		return nil, fmt.Errorf("svgtext: invalid font size %g", desc.Size)
	}
	fa := s.lookup(desc)
	if fa == nil {
		return nil, fmt.Errorf("svgtext: no font available")
	}

	var buf sfnt.Buffer
	ppem := toFixed(desc.Size)
	metrics, err := fa.outline.Metrics(&buf, ppem, xfont.HintingNone)
	if err != nil {
		return nil, err
	}
	line := &Line{Ascent: fromFixed(metrics.Ascent), Descent: fromFixed(metrics.Descent)}
	if text == "" {
		return line, nil
	}

	runes := []rune(text)
	dir := di.DirectionLTR
	if desc.RightToLeft {
		dir = di.DirectionRTL
	}
	lang := desc.Lang
	if lang == "" {
		lang = "en"
	}
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: dir,
		Face:      font.NewFace(fa.shaping), // not safe for concurrent use
		Size:      ppem,
		Script:    detectScript(runes),
		Language:  language.NewLanguage(lang),
	}
	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.pool.Put(hb)

	var x float64
	for _, g := range output.Glyphs {
		outline, err := glyphOutline(fa.outline, &buf, sfnt.GlyphIndex(g.GlyphID), ppem)
		if err != nil {
			return nil, err
		}
		line.Glyphs = append(line.Glyphs, Glyph{
			Outline: outline,
			X:       x + fromFixed(g.XOffset),
			Y:       -fromFixed(g.YOffset),
		})
		x += fromFixed(g.Advance) + desc.LetterSpacing
	}
	line.Advance = x
	return line, nil
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func glyphOutline(f *sfnt.Font, buf *sfnt.Buffer, gid sfnt.GlyphIndex, ppem fixed.Int26_6) (svgpath.Path, error) {
	segments, err := f.LoadGlyph(buf, gid, ppem, nil)
	if err != nil {
		return nil, err
	}
	toPoint := func(p fixed.Point26_6) svgpath.Point {
		return svgpath.Point{X: fromFixed(p.X), Y: fromFixed(p.Y)}
	}
	var out svgpath.Path
	for i, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if i != 0 {
				out.Stop(true)
			}
			out.Start(toPoint(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			out.Line(toPoint(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			out.QuadBezier(toPoint(seg.Args[0]), toPoint(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			out.CubeBezier(toPoint(seg.Args[0]), toPoint(seg.Args[1]), toPoint(seg.Args[2]))
		}
	}
	if len(out) != 0 {
		out.Stop(true)
	}
	return out, nil
}
