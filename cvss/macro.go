package cvss

import (
	"fmt"
	"strconv"
)

// MacroVector holds the EQ1..EQ6 equivalence class values of a vector.
type MacroVector [6]int

// String returns the six digit lookup key, e.g. "000200".
func (mv MacroVector) String() string {
	b := make([]byte, 0, len(mv))
	for _, d := range mv {
		b = strconv.AppendInt(b, int64(d), 10)
	}
	return string(b)
}

func (mv MacroVector) EQ1() int { return mv[0] }
func (mv MacroVector) EQ2() int { return mv[1] }
func (mv MacroVector) EQ3() int { return mv[2] }
func (mv MacroVector) EQ4() int { return mv[3] }
func (mv MacroVector) EQ5() int { return mv[4] }
func (mv MacroVector) EQ6() int { return mv[5] }

// Classify derives the macro vector from the effective metric values of v.
func Classify(v *Vector) MacroVector {
	return MacroVector{eq1(v), eq2(v), eq3(v), eq4(v), eq5(v), eq6(v)}
}

func eq1(v *Vector) int {
	av, pr, ui := v.Effective(AV), v.Effective(PR), v.Effective(UI)
	switch {
	case av == "N" && pr == "N" && ui == "N":
		return 0
	case av == "P" || !(av == "N" || pr == "N" || ui == "N"):
		return 2
	default:
		return 1
	}
}

func eq2(v *Vector) int {
	if v.Effective(AC) == "L" && v.Effective(AT) == "N" {
		return 0
	}
	return 1
}

func eq3(v *Vector) int {
	vc, vi, va := v.Effective(VC), v.Effective(VI), v.Effective(VA)
	switch {
	case vc == "H" && vi == "H":
		return 0
	case vc == "H" || vi == "H" || va == "H":
		return 1
	default:
		return 2
	}
}

func eq4(v *Vector) int {
	switch {
	case v.Effective(MSI) == "S" || v.Effective(MSA) == "S":
		return 0
	case v.Effective(SC) == "H" || v.Effective(SI) == "H" || v.Effective(SA) == "H":
		return 1
	default:
		return 2
	}
}

func eq5(v *Vector) int {
	switch v.Effective(E) {
	case "A":
		return 0
	case "P":
		return 1
	default:
		return 2
	}
}

func eq6(v *Vector) int {
	if (v.Effective(CR) == "H" && v.Effective(VC) == "H") ||
		(v.Effective(IR) == "H" && v.Effective(VI) == "H") ||
		(v.Effective(AR) == "H" && v.Effective(VA) == "H") {
		return 0
	}
	return 1
}

// BaseScore returns the lookup table score of mv.
func BaseScore(mv MacroVector) (float64, error) {
	score, ok := lookupGlobal[mv.String()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMacroVector, mv)
	}
	return score, nil
}
