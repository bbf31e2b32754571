package cvss

// eqGroups lists the metrics whose severity distances are summed for each
// interpolation group. EQ3 and EQ6 are interpolated together.
var eqGroups = [5][]Metric{
	{AV, PR, UI},
	{AC, AT},
	{VC, VI, VA, CR, IR, AR},
	{SC, SI, SA},
	{E},
}

// maxVectors returns every highest severity vector of the cell mv, in
// enumeration order: EQ1 templates vary slowest, EQ5 fastest.
func maxVectors(mv MacroVector) []map[Metric]string {
	var out []map[Metric]string
	for _, a := range maxComposedEQ1[mv.EQ1()] {
		for _, b := range maxComposedEQ2[mv.EQ2()] {
			for _, c := range maxComposedEQ3EQ6[mv.EQ3()][mv.EQ6()] {
				for _, d := range maxComposedEQ4[mv.EQ4()] {
					for _, e := range maxComposedEQ5[mv.EQ5()] {
						out = append(out, parseTemplate(a+b+c+d+e))
					}
				}
			}
		}
	}
	return out
}

// selectMaxVector returns the first candidate that is at least as severe as
// v on every scored metric. If none qualifies the first candidate is used.
func selectMaxVector(v *Vector, candidates []map[Metric]string) map[Metric]string {
	if len(candidates) == 0 {
		return nil
	}
	for _, c := range candidates {
		if dominates(c, v) {
			return c
		}
	}
	return candidates[0]
}

func dominates(hi map[Metric]string, v *Vector) bool {
	for _, group := range eqGroups {
		for _, m := range group {
			if level(m, v.Effective(m))-level(m, hi[m]) < 0 {
				return false
			}
		}
	}
	return true
}
