package svgdoc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benoitkugler/svgrender/svgstyle"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/language"
)

var elementKinds = map[string]Kind{
	"svg":            KindSvg,
	"g":              KindGroup,
	"a":              KindGroup,
	"defs":           KindDefs,
	"switch":         KindSwitch,
	"use":            KindUse,
	"symbol":         KindSymbol,
	"path":           KindPath,
	"rect":           KindRect,
	"circle":         KindCircle,
	"ellipse":        KindEllipse,
	"line":           KindLine,
	"polyline":       KindPolyline,
	"polygon":        KindPolygon,
	"text":           KindText,
	"tspan":          KindTSpan,
	"tref":           KindTRef,
	"image":          KindImage,
	"linearGradient": KindLinearGradient,
	"radialGradient": KindRadialGradient,
	"stop":           KindStop,
	"pattern":        KindPattern,
	"mask":           KindMask,
	"clipPath":       KindClipPath,
	"marker":         KindMarker,
	"filter":         KindFilter,
	"feGaussianBlur": KindFeGaussianBlur,
	"feOffset":       KindFeOffset,
	"feFlood":        KindFeFlood,
	"feColorMatrix":  KindFeColorMatrix,
	"feMerge":        KindFeMerge,
	"feMergeNode":    KindFeMergeNode,
	"feComposite":    KindFeComposite,
	"feBlend":        KindFeBlend,
	"title":          KindTitle,
	"desc":           KindDesc,
}

// unsupportedFeatures lists the SVG 1.1 feature strings
// for which requiredFeatures evaluates to false.
var unsupportedFeatures = map[string]bool{
	"Animation":     true,
	"BasicFont":     true,
	"Cursor":        true,
	"Extensibility": true,
	"Font":          true,
	"Scripting":     true,
	"View":          true,
}

const featurePrefix = "http://www.w3.org/TR/SVG11/feature#"

func supportsFeatures(v string) bool {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		name, ok := strings.CutPrefix(f, featurePrefix)
		if !ok || unsupportedFeatures[name] {
			return false
		}
	}
	return true
}

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// attrName normalizes the attribute namespaces: xlink:href is
// seen as href, and xml:space as "xml:space".
func attrName(n xml.Name) string {
	if n.Space == xmlNamespace || n.Space == "xml" {
		return "xml:" + n.Local
	}
	return n.Local
}

// loader is used while parsing SVG files
type loader struct {
	doc       *Document
	decoder   *xml.Decoder
	errorMode ErrorMode
	stack     []*Node
}

// ReadDocument reads the document from the given io.Reader.
// Malformed XML aborts the loading with an error wrapping
// ErrMalformed. Unknown elements and invalid attributes are
// handled according to the ErrorMode option.
func ReadDocument(stream io.Reader, opts ...Option) (*Document, error) {
	ld := &loader{
		doc:       &Document{defs: make(map[string]*Node)},
		errorMode: WarnErrorMode,
	}
	for _, opt := range opts {
		opt(ld)
	}
	if ld.doc.logger == nil {
		ld.doc.logger = NopLogger()
	}
	ld.decoder = xml.NewDecoder(stream)
	ld.decoder.CharsetReader = charset.NewReaderLabel
	for {
		t, err := ld.decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			if err := ld.startElement(se); err != nil {
				return nil, err
			}
		case xml.EndElement:
			ld.stack = ld.stack[:len(ld.stack)-1]
		case xml.CharData:
			ld.charData(string(se))
		}
	}
	if ld.doc.Root == nil {
		return nil, ErrNotSVG
	}
	return ld.doc, nil
}

func (ld *loader) line() int {
	line, _ := ld.decoder.InputPos()
	return line
}

// handleError applies the error mode to a recoverable error.
func (ld *loader) handleError(tag string, err error) error {
	switch ld.errorMode {
	case StrictErrorMode:
		return &ParseError{Line: ld.line(), Tag: tag, Err: err}
	case WarnErrorMode:
		ld.doc.logger.Warn("invalid svg content", "line", ld.line(), "tag", tag, "err", err)
	default:
		ld.doc.logger.Debug("invalid svg content", "line", ld.line(), "tag", tag, "err", err)
	}
	return nil
}

var errUnknownElement = errors.New("cannot process svg element")

func (ld *loader) startElement(se xml.StartElement) error {
	var parent *Node
	if len(ld.stack) != 0 {
		parent = ld.stack[len(ld.stack)-1]
	}

	kind, ok := elementKinds[se.Name.Local]
	if !ok {
		if err := ld.handleError(se.Name.Local, errUnknownElement); err != nil {
			return err
		}
	}
	n := NewNode(kind)
	n.Tag = se.Name.Local

	if parent == nil {
		if kind != KindSvg {
			return ErrNotSVG
		}
		ld.doc.Root = n
	} else {
		ld.doc.Append(parent, n)
	}
	ld.stack = append(ld.stack, n)

	if err := ld.readAttributes(n, se.Attr); err != nil {
		return err
	}

	switch kind {
	case KindTitle:
		ld.doc.Titles = append(ld.doc.Titles, "")
	case KindDesc:
		ld.doc.Descriptions = append(ld.doc.Descriptions, "")
	case KindImage:
		ld.loadImage(n.Payload.(*Image))
	}
	return nil
}

func (ld *loader) readAttributes(n *Node, attrs []xml.Attr) error {
	var style string
	for _, attr := range attrs {
		name, value := attrName(attr.Name), attr.Value
		var err error
		switch name {
		case "id":
			n.ID = value
			ld.register(n)
		case "style":
			style = value
		case "class":
		case "transform":
			m, errT := svgstyle.ParseTransform(value)
			n.State.PersonalAffine, n.State.Affine = m, m
			err = errT
		case "requiredFeatures":
			n.State.CondTrue = n.State.CondTrue && supportsFeatures(value)
		case "requiredExtensions":
			n.State.CondTrue = false // no extension is supported
		case "systemLanguage":
			n.SystemLanguage, err = parseLanguages(value)
		default:
			var known bool
			known, err = n.State.SetProperty(name, value)
			if !known && n.Payload != nil {
				err = n.Payload.SetAttr(name, value)
			}
		}
		if err != nil {
			if err = ld.handleError(n.Tag, fmt.Errorf("attribute %s: %w", name, err)); err != nil {
				return err
			}
		}
	}

	// the style attribute has priority over presentation attributes
	for _, pair := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important"))
		if _, err := n.State.SetProperty(k, v); err != nil {
			if err = ld.handleError(n.Tag, err); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseLanguages reads a comma separated list of BCP 47 tags.
// Invalid tags are skipped and reported.
func parseLanguages(v string) ([]language.Tag, error) {
	out := []language.Tag{}
	var errs []error
	for _, l := range strings.Split(v, ",") {
		if l = strings.TrimSpace(l); l == "" {
			continue
		}
		tag, err := language.Parse(l)
		if err != nil {
			errs = append(errs, fmt.Errorf("language %q: %w", l, err))
			continue
		}
		out = append(out, tag)
	}
	return out, errors.Join(errs...)
}

// register adds n to the defs. The first node
// with a given id wins.
func (ld *loader) register(n *Node) {
	if n.ID == "" {
		return
	}
	if _, has := ld.doc.defs[n.ID]; has {
		ld.doc.logger.Debug("duplicate id", "id", n.ID)
		return
	}
	ld.doc.defs[n.ID] = n
}

func (ld *loader) charData(s string) {
	if len(ld.stack) == 0 {
		return
	}
	top := ld.stack[len(ld.stack)-1]
	switch top.Kind {
	case KindTitle:
		ld.doc.Titles[len(ld.doc.Titles)-1] += s
	case KindDesc:
		ld.doc.Descriptions[len(ld.doc.Descriptions)-1] += s
	case KindText, KindTSpan:
		// merge with the previous character node, if any
		var last *Node
		for c := ld.doc.FirstChild(top); c != nil; c = ld.doc.NextSibling(c) {
			last = c
		}
		if last != nil && last.Kind == KindChars {
			last.Payload.(*Chars).Text += s
			return
		}
		chars := NewNode(KindChars)
		chars.Payload.(*Chars).Text = s
		ld.doc.Append(top, chars)
	}
}
