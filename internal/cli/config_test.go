package cli

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/benoitkugler/svgrender/svgraster"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}

	path := writeFile(t, "config.toml", `
[render]
dpi = 72
background = "white"
width = 200
format = "pdf"
pdf_engine = "contentstream"

[text]
font_dir = "/usr/share/fonts"
default_family = "DejaVu Sans"

[server]
max_body_bytes = 1024
`)
	cfg, err = loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Config{
		Render: RenderConfig{DPI: 72, Background: "white", Width: 200, Format: "pdf", PDFEngine: "contentstream"},
		Text:   TextConfig{FontDir: "/usr/share/fonts", DefaultFamily: "DejaVu Sans"},
		Server: ServerConfig{Addr: defaultAddr, MaxBodyBytes: 1024},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "[render]\nscale = 2\n"},
		{"bad format", "[render]\nformat = \"gif\"\n"},
		{"bad color", "[render]\nbackground = \"nope\"\n"},
		{"bad pdf engine", "[render]\npdf_engine = \"cairo\"\n"},
		{"bad dpi", "[render]\ndpi = 0\n"},
		{"syntax", "[render\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(writeFile(t, "config.toml", tt.content)); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{
		"png":  formatPNG,
		".PDF": formatPDF,
		"jpg":  formatJPEG,
		"jpeg": formatJPEG,
	} {
		got, err := parseFormat(in)
		if err != nil || got != want {
			t.Errorf("parseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}

func TestParseBackground(t *testing.T) {
	c, err := parseBackground("#ff0000")
	if err != nil {
		t.Fatal(err)
	}
	if want := (color.NRGBA{R: 0xFF, A: 0xFF}); c != want {
		t.Errorf("expected %v, got %v", want, c)
	}
	if c, err := parseBackground(""); c != nil || err != nil {
		t.Errorf("expected no background, got %v %v", c, err)
	}
	if _, err := parseBackground("currentColor"); err == nil {
		t.Error("expected an error for currentColor")
	}
}

func TestOutputSize(t *testing.T) {
	intrinsic := svgraster.Size{W: 40, H: 20}
	for _, tt := range []struct {
		w, h         float64
		wantW, wantH float64
	}{
		{0, 0, 40, 20},
		{80, 0, 80, 40},
		{0, 10, 20, 10},
		{10, 10, 10, 10},
	} {
		j := job{width: tt.w, height: tt.h}
		if w, h := j.outputSize(intrinsic); w != tt.wantW || h != tt.wantH {
			t.Errorf("outputSize(%g, %g) = %g, %g; want %g, %g", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}
