package cli

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/benoitkugler/svgrender/svgdraw"
	"github.com/benoitkugler/svgrender/svgpdf"
	"github.com/benoitkugler/svgrender/svgstyle"
)

const (
	defaultAddr         = "localhost:8080"
	defaultMaxBodyBytes = 10 << 20
)

// Config holds the defaults of all commands, as read from
// the TOML configuration file.
type Config struct {
	Render RenderConfig `toml:"render"`
	Text   TextConfig   `toml:"text"`
	Server ServerConfig `toml:"server"`
}

type RenderConfig struct {
	DPI        float64 `toml:"dpi"`
	Background string  `toml:"background"` // any SVG color, empty for transparent
	Width      float64 `toml:"width"`      // zero for the intrinsic size
	Height     float64 `toml:"height"`
	Format     string  `toml:"format"`
	PDFEngine  string  `toml:"pdf_engine"` // gofpdf (default) or contentstream
}

type TextConfig struct {
	FontDir       string `toml:"font_dir"`
	DefaultFamily string `toml:"default_family"`
}

type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

func defaultConfig() Config {
	return Config{
		Render: RenderConfig{DPI: svgdraw.DefaultDPI, Format: formatPNG},
		Server: ServerConfig{Addr: defaultAddr, MaxBodyBytes: defaultMaxBodyBytes},
	}
}

// loadConfig reads the configuration file at path, on top of
// the defaults. An empty path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.validate()
}

func (cfg Config) validate() error {
	if _, err := parseFormat(cfg.Render.Format); err != nil {
		return err
	}
	if _, err := parseBackground(cfg.Render.Background); err != nil {
		return err
	}
	if _, err := parsePDFEngine(cfg.Render.PDFEngine); err != nil {
		return err
	}
	if cfg.Render.DPI <= 0 {
		return fmt.Errorf("invalid dpi %g", cfg.Render.DPI)
	}
	if cfg.Render.Width < 0 || cfg.Render.Height < 0 {
		return errors.New("negative output size")
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max_body_bytes %d", cfg.Server.MaxBodyBytes)
	}
	return nil
}

// parseFormat normalizes an output format name.
func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimPrefix(s, ".")); f {
	case formatPNG, formatPDF:
		return f, nil
	case formatJPEG, "jpg":
		return formatJPEG, nil
	default:
		return "", fmt.Errorf("unsupported format %q (expected png, jpeg or pdf)", s)
	}
}

// parsePDFEngine returns the default engine for an empty string.
func parsePDFEngine(s string) (svgpdf.Engine, error) {
	switch strings.ToLower(s) {
	case "", "gofpdf":
		return svgpdf.EngineFpdf, nil
	case "contentstream":
		return svgpdf.EngineContentStream, nil
	default:
		return 0, fmt.Errorf("unsupported pdf engine %q (expected gofpdf or contentstream)", s)
	}
}

// parseBackground returns nil for an empty string.
func parseBackground(s string) (color.Color, error) {
	if s == "" {
		return nil, nil
	}
	c, err := svgstyle.ParseColor(s)
	if err != nil || c.CurrentColor {
		return nil, fmt.Errorf("invalid background color %q", s)
	}
	return c.RGBA, nil
}

func withConfig(ctx context.Context, cfg Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

func configFromContext(ctx context.Context) Config {
	if cfg, ok := ctx.Value(configKey).(Config); ok {
		return cfg
	}
	return defaultConfig()
}
