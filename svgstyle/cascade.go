package svgstyle

// policy decides, from the set flags of the destination and
// the source, if the source value replaces the destination one,
// and what the resulting set flag is.
type policy uint8

const (
	// take src when dst is unset, keep dst flags
	policyReinherit policy = iota
	// take src when dst is unset, or the flags
	policyInherit
	// always take src, flags included
	policyOverride
)

func (p policy) decide(dstSet, srcSet bool) (take, set bool) {
	switch p {
	case policyInherit:
		return !dstSet, dstSet || srcSet
	case policyOverride:
		return true, srcSet
	default:
		return !dstSet, dstSet
	}
}

func merge[T any](dst *Field[T], src Field[T], p policy) {
	take, set := p.decide(dst.Set, src.Set)
	if take {
		dst.Value = src.Value
	}
	dst.Set = set
}

func mergeDash(dst *Field[[]Length], src Field[[]Length], p policy) {
	take, set := p.decide(dst.Set, src.Set)
	if take {
		dst.Value = append([]Length(nil), src.Value...)
	}
	dst.Set = set
}

// CascadeMode selects the policy used when entering the
// effective state of a node.
type CascadeMode uint8

const (
	// ModeReinherit is the normal draw time inheritance.
	ModeReinherit CascadeMode = iota
	// ModeDominate lets explicit ambient settings fill the
	// unset properties of a referenced subtree.
	ModeDominate
	// ModeOverrideStyle replaces the style by the source one,
	// keeping the transform.
	ModeOverrideStyle
	// ModeNoOp leaves the current state untouched.
	ModeNoOp
)

func (m CascadeMode) String() string {
	switch m {
	case ModeReinherit:
		return "reinherit"
	case ModeDominate:
		return "dominate"
	case ModeOverrideStyle:
		return "override-style"
	case ModeNoOp:
		return "no-op"
	default:
		return "<unknown CascadeMode>"
	}
}

// Inherit builds a child state from its structural parent: every
// unset property of st is taken from parent, and marked as set if
// it was in parent. Non inheritable properties are kept from st.
func (st *State) Inherit(parent *State) { st.cascade(parent, policyInherit, false) }

// Reinherit merges an ambient state on top of an already built
// element state, with the same decision rule as Inherit. The set
// flags of st are kept, so that only its own explicit properties
// are seen as explicit.
func (st *State) Reinherit(parent *State) { st.cascade(parent, policyReinherit, false) }

// Dominate merges an ambient state on top of st: explicit ambient
// values fill the properties left unset by st, and explicit
// values of st are never replaced. Set flags are or-ed, so that
// the result is explicit wherever one of the inputs was.
func (st *State) Dominate(ambient *State) { st.cascade(ambient, policyInherit, false) }

// Override replaces every property of st by the one of src,
// including non inheritable ones. Transforms are not modified.
func (st *State) Override(src *State) { st.cascade(src, policyOverride, true) }

func (st *State) cascade(src *State, p policy, copyUninheritables bool) {
	merge(&st.CurrentColor, src.CurrentColor, p)
	merge(&st.Fill, src.Fill, p)
	merge(&st.FillOpacity, src.FillOpacity, p)
	merge(&st.FillRule, src.FillRule, p)
	merge(&st.Stroke, src.Stroke, p)
	merge(&st.StrokeOpacity, src.StrokeOpacity, p)
	merge(&st.StrokeWidth, src.StrokeWidth, p)
	merge(&st.MiterLimit, src.MiterLimit, p)
	merge(&st.Cap, src.Cap, p)
	merge(&st.LeadCap, src.LeadCap, p)
	merge(&st.Join, src.Join, p)
	merge(&st.Gap, src.Gap, p)
	mergeDash(&st.Dash, src.Dash, p)
	merge(&st.DashOffset, src.DashOffset, p)
	merge(&st.ClipRule, src.ClipRule, p)
	merge(&st.Overflow, src.Overflow, p)
	merge(&st.Visible, src.Visible, p)

	merge(&st.FontSize, src.FontSize, p)
	merge(&st.FontFamily, src.FontFamily, p)
	merge(&st.FontStyle, src.FontStyle, p)
	merge(&st.FontVariant, src.FontVariant, p)
	merge(&st.FontWeight, src.FontWeight, p)
	merge(&st.FontStretch, src.FontStretch, p)
	merge(&st.TextDecoration, src.TextDecoration, p)
	merge(&st.TextDir, src.TextDir, p)
	merge(&st.TextAnchor, src.TextAnchor, p)
	merge(&st.LetterSpacing, src.LetterSpacing, p)
	merge(&st.Lang, src.Lang, p)
	merge(&st.SpacePreserve, src.SpacePreserve, p)

	merge(&st.StopColor, src.StopColor, p)
	merge(&st.StopOpacity, src.StopOpacity, p)
	merge(&st.FloodColor, src.FloodColor, p)
	merge(&st.FloodOpacity, src.FloodOpacity, p)

	merge(&st.StartMarker, src.StartMarker, p)
	merge(&st.MiddleMarker, src.MiddleMarker, p)
	merge(&st.EndMarker, src.EndMarker, p)

	merge(&st.ShapeRendering, src.ShapeRendering, p)
	merge(&st.TextRendering, src.TextRendering, p)

	if copyUninheritables {
		st.ClipPath = src.ClipPath
		st.Mask = src.Mask
		st.Filter = src.Filter
		st.Opacity = src.Opacity
		st.CompOp = src.CompOp
		st.EnableBackground = src.EnableBackground
		st.CondTrue = src.CondTrue
	}
}
