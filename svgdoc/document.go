package svgdoc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ErrorMode is the for setting how the parser reacts to unparsed elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unparsed SVG elements
	IgnoreErrorMode ErrorMode = iota

	// WarnErrorMode outputs a warning when an unparsed SVG element is found
	WarnErrorMode

	// StrictErrorMode causes a error when an unparsed SVG element is found
	StrictErrorMode
)

var (
	// ErrMalformed is returned for documents which are not
	// well formed XML, or, in StrictErrorMode, contain invalid
	// attributes.
	ErrMalformed = errors.New("svgdoc: malformed document")
	// ErrNotSVG is returned when the root element is not 'svg'.
	ErrNotSVG = errors.New("svgdoc: not an svg document")
)

// ParseError locates an invalid element or attribute.
// It matches ErrMalformed with errors.Is.
type ParseError struct {
	Line int
	Tag  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("svgdoc: line %d: <%s>: %s", e.Line, e.Tag, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrMalformed, e.Err} }

// Document is a parsed SVG document. It is read only once
// loaded, and may be rendered concurrently.
type Document struct {
	Tree

	Root         *Node    // the outermost svg element
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here

	// BaseDir is used to resolve relative image paths.
	BaseDir string

	defs   map[string]*Node
	logger *log.Logger
}

// Lookup returns the node with the given id, or nil.
func (d *Document) Lookup(id string) *Node { return d.defs[id] }

// Logger returns the logger given when loading the document.
func (d *Document) Logger() *log.Logger { return d.logger }

// Option customizes the loading of a document.
type Option func(*loader)

// WithErrorMode sets how unknown elements and invalid
// attributes are handled. The default is WarnErrorMode.
func WithErrorMode(mode ErrorMode) Option {
	return func(l *loader) { l.errorMode = mode }
}

// WithLogger sets the logger used while loading, and stored
// in the document for the rendering passes.
func WithLogger(logger *log.Logger) Option {
	return func(l *loader) { l.doc.logger = logger }
}

// WithBaseDir sets the directory used to resolve relative
// image references.
func WithBaseDir(dir string) Option {
	return func(l *loader) { l.doc.BaseDir = dir }
}

// ReadFile reads the document from the named file. Relative
// image references are resolved from the file directory,
// unless WithBaseDir is given.
func ReadFile(file string, opts ...Option) (*Document, error) {
	fin, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	opts = append([]Option{WithBaseDir(filepath.Dir(file))}, opts...)
	return ReadDocument(fin, opts...)
}

// NopLogger returns a logger discarding its output.
func NopLogger() *log.Logger { return log.New(io.Discard) }
