// Package cli implements the svgrender command-line interface.
//
// # Commands
//
//   - render: draw an SVG file to PNG, JPEG or PDF
//   - dims: print the intrinsic size of a document or of one of its elements
//   - serve: expose the renderer through an HTTP endpoint
//
// # Configuration
//
// Defaults are read from a TOML file given by --config. Flags
// always take precedence over the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context, and the HTTP server attaches a
// request id to the logger of each request.
package cli

import "github.com/charmbracelet/log"

const appName = "svgrender"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Output formats.
const (
	formatPNG  = "png"
	formatJPEG = "jpeg"
	formatPDF  = "pdf"
)
