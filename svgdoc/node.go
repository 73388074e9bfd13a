// Package svgdoc builds the element tree of an SVG document.
//
// Each element is turned into a Node, which owns its style (see
// svgstyle.State) and a kind specific payload. The links between
// nodes are held by a Tree, and nodes with an id are registered
// in the Document, so that references (gradients, patterns,
// clip paths, 'use' targets...) may be resolved when drawing.
package svgdoc

import (
	"github.com/benoitkugler/svgrender/svgstyle"
	"golang.org/x/text/language"
)

// Kind is the type tag of a node.
type Kind uint8

const (
	KindUnknown Kind = iota // not drawn

	KindSvg
	KindGroup // g and a
	KindDefs
	KindSwitch
	KindUse
	KindSymbol

	KindPath
	KindRect
	KindCircle
	KindEllipse
	KindLine
	KindPolyline
	KindPolygon

	KindText
	KindTSpan
	KindTRef
	KindChars // character data of a text element

	KindImage

	KindLinearGradient
	KindRadialGradient
	KindStop
	KindPattern
	KindMask
	KindClipPath
	KindMarker

	KindFilter
	KindFeGaussianBlur
	KindFeOffset
	KindFeFlood
	KindFeColorMatrix
	KindFeMerge
	KindFeMergeNode
	KindFeComposite
	KindFeBlend

	KindTitle
	KindDesc
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindSvg:            "svg",
	KindGroup:          "g",
	KindDefs:           "defs",
	KindSwitch:         "switch",
	KindUse:            "use",
	KindSymbol:         "symbol",
	KindPath:           "path",
	KindRect:           "rect",
	KindCircle:         "circle",
	KindEllipse:        "ellipse",
	KindLine:           "line",
	KindPolyline:       "polyline",
	KindPolygon:        "polygon",
	KindText:           "text",
	KindTSpan:          "tspan",
	KindTRef:           "tref",
	KindChars:          "#text",
	KindImage:          "image",
	KindLinearGradient: "linearGradient",
	KindRadialGradient: "radialGradient",
	KindStop:           "stop",
	KindPattern:        "pattern",
	KindMask:           "mask",
	KindClipPath:       "clipPath",
	KindMarker:         "marker",
	KindFilter:         "filter",
	KindFeGaussianBlur: "feGaussianBlur",
	KindFeOffset:       "feOffset",
	KindFeFlood:        "feFlood",
	KindFeColorMatrix:  "feColorMatrix",
	KindFeMerge:        "feMerge",
	KindFeMergeNode:    "feMergeNode",
	KindFeComposite:    "feComposite",
	KindFeBlend:        "feBlend",
	KindTitle:          "title",
	KindDesc:           "desc",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "<unknown Kind>"
}

// IsShape returns true for the basic shapes and paths,
// which may carry markers and be used in clip paths.
func (k Kind) IsShape() bool { return KindPath <= k && k <= KindPolygon }

// IsFilterPrimitive returns true for the children of a filter element.
func (k Kind) IsFilterPrimitive() bool { return KindFeGaussianBlur <= k && k <= KindFeBlend }

// Payload is the kind specific data of a node.
// The drawing behavior of each kind is implemented
// by the svgdraw package, indexed by Kind.
type Payload interface {
	// SetAttr consumes an attribute which is not a style
	// property. Unknown attributes are ignored.
	SetAttr(name, value string) error
}

// Node is an element of the document. It owns its style
// and its payload, but not its children: see Tree.
type Node struct {
	Kind  Kind
	Tag   string // local name of the element
	ID    string
	State svgstyle.State

	// SystemLanguage is the 'systemLanguage' conditional
	// attribute, evaluated when drawing. It is nil when
	// the attribute is absent, and empty when no tag is valid.
	SystemLanguage []language.Tag

	Payload Payload // nil for plain containers
}

// NewNode returns a node of the given kind, with the default
// state and an empty payload.
func NewNode(kind Kind) *Node {
	n := &Node{Kind: kind, Tag: kind.String(), State: svgstyle.NewState()}
	if c := payloadConstructors[kind]; c != nil {
		n.Payload = c()
	}
	return n
}

type links struct {
	parent, firstChild, lastChild, nextSibling *Node
}

// Tree stores the structural links between nodes.
// The zero value is an empty tree, ready to use.
type Tree struct {
	links map[*Node]*links
}

func (t *Tree) get(n *Node) *links {
	if t.links == nil {
		t.links = make(map[*Node]*links)
	}
	l := t.links[n]
	if l == nil {
		l = new(links)
		t.links[n] = l
	}
	return l
}

// Append adds child as the last child of parent.
// child must not already be in the tree.
func (t *Tree) Append(parent, child *Node) {
	pl, cl := t.get(parent), t.get(child)
	cl.parent = parent
	if pl.lastChild == nil {
		pl.firstChild = child
	} else {
		t.get(pl.lastChild).nextSibling = child
	}
	pl.lastChild = child
}

// Parent returns the parent of n, or nil for the root.
func (t *Tree) Parent(n *Node) *Node {
	if l := t.links[n]; l != nil {
		return l.parent
	}
	return nil
}

// FirstChild returns the first child of n, or nil.
func (t *Tree) FirstChild(n *Node) *Node {
	if l := t.links[n]; l != nil {
		return l.firstChild
	}
	return nil
}

// NextSibling returns the sibling following n, or nil.
func (t *Tree) NextSibling(n *Node) *Node {
	if l := t.links[n]; l != nil {
		return l.nextSibling
	}
	return nil
}

// Children returns the children of n, in document order.
func (t *Tree) Children(n *Node) []*Node {
	var out []*Node
	for c := t.FirstChild(n); c != nil; c = t.NextSibling(c) {
		out = append(out, c)
	}
	return out
}

// Ancestors returns the ancestors of n, from the root to
// the parent of n.
func (t *Tree) Ancestors(n *Node) []*Node {
	var out []*Node
	for p := t.Parent(n); p != nil; p = t.Parent(p) {
		out = append(out, p)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
