package cvss

// Effective returns the value used for scoring m.
//
// Unset values read as X. E defaults to A and CR, IR and AR default to H,
// the worst case in each. A defined M-prefixed counterpart of a base metric
// replaces the base value.
func (v *Vector) Effective(m Metric) string {
	selected, ok := v.values[m]
	if !ok {
		selected = NotDefined
	}

	switch {
	case m == E && selected == NotDefined:
		return "A"
	case (m == CR || m == IR || m == AR) && selected == NotDefined:
		return "H"
	}

	if mod, ok := m.Modified(); ok {
		if modified, set := v.values[mod]; set && modified != NotDefined {
			return modified
		}
	}
	return selected
}
