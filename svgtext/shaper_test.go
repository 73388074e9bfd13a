package svgtext

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestShape(t *testing.T) {
	s := NewShaper()
	line, err := s.Shape("Hello", FontDesc{Family: "sans-serif", Size: 16, Weight: 400})
	if err != nil {
		t.Fatal(err)
	}
	if len(line.Glyphs) != 5 {
		t.Fatalf("expected 5 glyphs, got %d", len(line.Glyphs))
	}
	for i := 1; i < len(line.Glyphs); i++ {
		if line.Glyphs[i].X <= line.Glyphs[i-1].X {
			t.Errorf("glyph %d is not after the previous one", i)
		}
	}
	if line.Advance <= 0 || line.Ascent <= 0 || line.Descent <= 0 {
		t.Errorf("unexpected metrics %g %g %g", line.Advance, line.Ascent, line.Descent)
	}

	// outlines are above the baseline, with the y axis down
	ext, ok := line.Path(0, 0).Extents()
	if !ok || ext.LLy >= 0 || ext.URy > line.Descent {
		t.Errorf("unexpected outline extents %v", ext)
	}

	spaced, err := s.Shape("Hello", FontDesc{Family: "sans-serif", Size: 16, Weight: 400, LetterSpacing: 2})
	if err != nil {
		t.Fatal(err)
	}
	if d := spaced.Advance - line.Advance; d < 9.99 || d > 10.01 {
		t.Errorf("letter spacing not applied: %g", d)
	}
}

func TestLookup(t *testing.T) {
	s := NewShaper()
	if err := s.AddFont(goregular.TTF); err != nil {
		t.Fatal(err)
	}
	if err := s.AddFont([]byte("not a font")); err == nil {
		t.Error("expected error for invalid font")
	}

	bold := s.lookup(FontDesc{Family: "'Unknown', Go", Weight: 700})
	if bold.family != "go" || bold.weight != 700 || bold.italic {
		t.Errorf("unexpected face %s %d %v", bold.family, bold.weight, bold.italic)
	}
	mono := s.lookup(FontDesc{Family: "monospace", Weight: 400})
	if mono.family != "go mono" {
		t.Errorf("unexpected face %s", mono.family)
	}
	italic := s.lookup(FontDesc{Family: "Unknown", Weight: 400, Italic: true})
	if !italic.italic || italic.weight != 400 {
		t.Errorf("unexpected fallback %s %d %v", italic.family, italic.weight, italic.italic)
	}

	s.SetFallback("Go Mono")
	if fa := s.lookup(FontDesc{Family: "Unknown", Weight: 400}); fa.family != "go mono" {
		t.Errorf("expected the fallback family, got %s", fa.family)
	}

	if _, err := s.Shape("a", FontDesc{Size: 0}); err == nil {
		t.Error("expected error for zero size")
	}
}
