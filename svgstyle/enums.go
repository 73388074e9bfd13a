package svgstyle

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
// ArcClip mode is like MiterClip applied to arcs, and is not part of the SVG2.0
// standard.
const (
	Miter JoinMode = iota
	Round
	Bevel
	Arc       // New in SVG2
	MiterClip // New in SVG2
	ArcClip   // Like MiterClip applied to arcs, and is not part of the SVG2.0 standard.
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	NilCap CapMode = iota // default value
	ButtCap
	SquareCap
	RoundCap
	CubicCap     // Not part of the SVG2.0 standard.
	QuadraticCap // Not part of the SVG2.0 standard.
)

func (c CapMode) String() string {
	switch c {
	case NilCap:
		return "NilCap"
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	case CubicCap:
		return "CubicCap"
	case QuadraticCap:
		return "QuadraticCap"
	default:
		return "<unknown CapMode>"
	}
}

// GapMode defines how to bridge gaps when the miter limit is exceeded,
// and is not part of the SVG2.0 standard.
type GapMode uint8

const (
	NilGap GapMode = iota
	FlatGap
	RoundGap
	CubicGap
	QuadraticGap
)

func (g GapMode) String() string {
	switch g {
	case NilGap:
		return "NilGap"
	case FlatGap:
		return "FlatGap"
	case RoundGap:
		return "RoundGap"
	case CubicGap:
		return "CubicGap"
	case QuadraticGap:
		return "QuadraticGap"
	default:
		return "<unknown GapMode>"
	}
}

// FillRule is used by fill-rule and clip-rule
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

// CompOp is the operator used to composite a discrete
// layer onto its parent.
type CompOp uint8

const (
	CompSrcOver CompOp = iota // default
	CompClear
	CompSrc
	CompDst
	CompDstOver
	CompSrcIn
	CompDstIn
	CompSrcOut
	CompDstOut
	CompSrcAtop
	CompDstAtop
	CompXor
	CompPlus
	CompMultiply
	CompScreen
	CompDarken
	CompLighten
)

var compOpNames = map[string]CompOp{
	"clear":    CompClear,
	"src":      CompSrc,
	"dst":      CompDst,
	"src-over": CompSrcOver,
	"dst-over": CompDstOver,
	"src-in":   CompSrcIn,
	"dst-in":   CompDstIn,
	"src-out":  CompSrcOut,
	"dst-out":  CompDstOut,
	"src-atop": CompSrcAtop,
	"dst-atop": CompDstAtop,
	"xor":      CompXor,
	"plus":     CompPlus,
	"multiply": CompMultiply,
	"screen":   CompScreen,
	"darken":   CompDarken,
	"lighten":  CompLighten,
}

func (c CompOp) String() string {
	for name, op := range compOpNames {
		if op == c {
			return name
		}
	}
	return "<unknown CompOp>"
}

// EnableBackground is the background isolation mode
type EnableBackground uint8

const (
	BackgroundAccumulate EnableBackground = iota
	BackgroundNew
)

// RenderingHint is used by shape-rendering and text-rendering.
type RenderingHint uint8

const (
	RenderAuto RenderingHint = iota
	RenderOptimizeSpeed
	RenderCrispEdges         // shape-rendering only
	RenderGeometricPrecision // also optimizeLegibility for text
)

type FontStyle uint8

const (
	FontStyleNormal FontStyle = iota
	FontStyleItalic
	FontStyleOblique
)

type FontVariant uint8

const (
	FontVariantNormal FontVariant = iota
	FontVariantSmallCaps
)

type FontStretch uint8

const (
	StretchNormal FontStretch = iota
	StretchUltraCondensed
	StretchExtraCondensed
	StretchCondensed
	StretchSemiCondensed
	StretchSemiExpanded
	StretchExpanded
	StretchExtraExpanded
	StretchUltraExpanded
)

// TextDecoration is a bit set
type TextDecoration uint8

const (
	DecorationUnderline TextDecoration = 1 << iota
	DecorationOverline
	DecorationStrike
)

type TextDirection uint8

const (
	LeftToRight TextDirection = iota
	RightToLeft
)

type TextAnchor uint8

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)
