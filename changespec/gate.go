package changespec

// Index maps ChangeSpec names to ChangeSpecs for repeated lookups.
type Index map[string]ChangeSpec

// NewIndex builds an index over all. Later entries win on duplicate names.
func NewIndex(all []ChangeSpec) Index {
	index := make(Index, len(all))
	for _, c := range all {
		index[c.Name] = c
	}
	return index
}

// Parent returns the parent of c, if it is present in the index.
func (index Index) Parent(c ChangeSpec) (ChangeSpec, bool) {
	if !c.HasParent() {
		return ChangeSpec{}, false
	}
	parent, ok := index[c.Parent]
	return parent, ok
}

// IsEligible reports whether c may be checked: it has no parent, or its
// parent is Submitted. A parent missing from all fails closed.
//
// all must be the unfiltered set of ChangeSpecs, not a display subset.
func IsEligible(c ChangeSpec, all []ChangeSpec) bool {
	if !c.HasParent() {
		return true
	}
	for _, candidate := range all {
		if candidate.Name == c.Parent {
			return candidate.Status == StatusSubmitted
		}
	}
	return false
}

// IsEligible is the indexed form of the package-level IsEligible.
func (index Index) IsEligible(c ChangeSpec) bool {
	if !c.HasParent() {
		return true
	}
	parent, ok := index.Parent(c)
	return ok && parent.Status == StatusSubmitted
}
