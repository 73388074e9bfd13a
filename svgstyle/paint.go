package svgstyle

import (
	"fmt"
	"strings"
)

// PaintKind distinguishes solid colors from references
// to paint server elements (gradients and patterns).
type PaintKind uint8

const (
	PaintSolid PaintKind = iota
	PaintReference
)

// PaintServer is used by fill and stroke.
// A nil *PaintServer means "none".
// Paint servers are never mutated once parsed, so that
// they may be shared between states.
type PaintServer struct {
	Kind  PaintKind
	Color ColorSpec // for PaintSolid
	IRI   string    // referenced id, for PaintReference

	// Fallback is used when the reference can't be resolved.
	// It is nil for "none" or when no fallback is given.
	Fallback *PaintServer
}

// Solid returns a solid paint server
func Solid(c ColorSpec) *PaintServer {
	return &PaintServer{Kind: PaintSolid, Color: c}
}

func (p *PaintServer) String() string {
	if p == nil {
		return "none"
	}
	if p.Kind == PaintReference {
		return fmt.Sprintf("url(#%s)", p.IRI)
	}
	if p.Color.CurrentColor {
		return "currentColor"
	}
	c := p.Color.RGBA
	return fmt.Sprintf("rgba(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
}

// ParseIRI returns the id referenced by a "url(#id)"
// or "#id" value.
func ParseIRI(v string) (id string, ok bool) {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "url(") {
		end := strings.IndexByte(v, ')')
		if end == -1 {
			return "", false
		}
		v = strings.TrimSpace(v[4:end])
		v = strings.Trim(v, `'"`)
	}
	if !strings.HasPrefix(v, "#") || len(v) == 1 {
		return "", false
	}
	return v[1:], true
}

// ParsePaint parses a fill or stroke value.
// It returns nil for "none".
func ParsePaint(v string) (*PaintServer, error) {
	v = strings.TrimSpace(v)
	if v == "none" {
		return nil, nil
	}
	if strings.HasPrefix(v, "url(") {
		end := strings.IndexByte(v, ')')
		id, ok := ParseIRI(v)
		if !ok {
			return nil, fmt.Errorf("invalid paint reference %q", v)
		}
		out := &PaintServer{Kind: PaintReference, IRI: id}
		if rest := strings.TrimSpace(v[end+1:]); rest != "" && rest != "none" {
			col, err := ParseColor(rest)
			if err != nil {
				return nil, err
			}
			out.Fallback = Solid(col)
		}
		return out, nil
	}
	col, err := ParseColor(v)
	if err != nil {
		return nil, err
	}
	return Solid(col), nil
}
