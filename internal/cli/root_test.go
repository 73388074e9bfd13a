package cli

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the root command with args, returning its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2024-01-01")
	if version != "1.0.0" || commit != "abc123" || date != "2024-01-01" {
		t.Errorf("unexpected version info %q %q %q", version, commit, date)
	}
	SetVersion("", "", "")
}

func TestRenderCommand(t *testing.T) {
	input := writeFile(t, "drawing.svg", testSVG)

	if _, err := execute(t, "render", input); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(strings.TrimSuffix(input, ".svg") + ".png")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
		t.Errorf("unexpected bounds %v", b)
	}

	// the format is deduced from the output extension
	output := filepath.Join(t.TempDir(), "out.pdf")
	if _, err := execute(t, "render", input, "-o", output, "--width", "144"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("expected a PDF file")
	}

	output = filepath.Join(t.TempDir(), "alt.pdf")
	if _, err := execute(t, "render", input, "-o", output, "--pdf-engine", "contentstream"); err != nil {
		t.Fatal(err)
	}
	if data, err = os.ReadFile(output); err != nil || !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("expected a PDF file, got error %v", err)
	}
	if _, err := execute(t, "render", input, "-o", output, "--pdf-engine", "cairo"); err == nil {
		t.Error("expected an error for an unsupported pdf engine")
	}

	if _, err := execute(t, "render", input, "--format", "gif"); err == nil {
		t.Error("expected an error for an unsupported format")
	}
	if _, err := execute(t, "render", filepath.Join(t.TempDir(), "missing.svg")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestRenderCommandConfig(t *testing.T) {
	input := writeFile(t, "drawing.svg", `<svg width="10" height="10"/>`)
	config := writeFile(t, "config.toml", "[render]\nbackground = \"white\"\nwidth = 4\n")
	output := filepath.Join(t.TempDir(), "out.png")

	if _, err := execute(t, "--config", config, "render", input, "-o", output, "--height", "2"); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(output)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("unexpected bounds %v", b)
	}
	if r, g, b, a := img.At(1, 1).RGBA(); r != 0xFFFF || g != 0xFFFF || b != 0xFFFF || a != 0xFFFF {
		t.Errorf("expected a white background, got %d %d %d %d", r, g, b, a)
	}
}

func TestDimsCommand(t *testing.T) {
	input := writeFile(t, "drawing.svg", testSVG)

	out, err := execute(t, "dims", input)
	if err != nil {
		t.Fatal(err)
	}
	if out != "20 10\n" {
		t.Errorf("unexpected output %q", out)
	}

	out, err = execute(t, "dims", input, "--id", "b")
	if err != nil {
		t.Fatal(err)
	}
	if out != "10 10\n" {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := execute(t, "dims", input, "--id", "missing"); err == nil {
		t.Error("expected an error for an unknown id")
	}
}
