package cvss

import (
	"math"
	"strings"
)

// Severity is the qualitative rating of a score.
type Severity string

const (
	SeverityNone     Severity = "None"
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Rank orders severities from None (0) to Critical (4).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// ParseSeverity reads a severity name, ignoring case.
func ParseSeverity(name string) (Severity, bool) {
	for _, s := range []Severity{SeverityNone, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		if strings.EqualFold(name, string(s)) {
			return s, true
		}
	}
	return "", false
}

// Nomenclature tells which optional metric groups contributed to a score.
type Nomenclature string

const (
	NomenclatureB   Nomenclature = "CVSS-B"
	NomenclatureBT  Nomenclature = "CVSS-BT"
	NomenclatureBE  Nomenclature = "CVSS-BE"
	NomenclatureBTE Nomenclature = "CVSS-BTE"
)

// Result is the outcome of scoring one vector.
type Result struct {
	Vector       string       `json:"vector"`
	MacroVector  string       `json:"macroVector,omitempty"`
	BaseScore    float64      `json:"baseScore"`
	Score        float64      `json:"score"`
	Severity     Severity     `json:"severity"`
	Nomenclature Nomenclature `json:"nomenclature"`
}

// Score parses vector and computes its CVSS v4.0 score.
func Score(vector string) (Result, error) {
	return ParseVector(vector).Score()
}

// MustScore is like Score but panics if the macro vector cannot be looked up.
func MustScore(vector string) Result {
	res, err := Score(vector)
	if err != nil {
		panic(err)
	}
	return res
}

// Score computes the CVSS v4.0 score of v.
func (v *Vector) Score() (Result, error) {
	res := Result{
		Vector:       v.String(),
		Nomenclature: v.Nomenclature(),
	}
	if noImpact(v) {
		res.Severity = SeverityNone
		return res, nil
	}

	mv := Classify(v)
	base, err := BaseScore(mv)
	if err != nil {
		return Result{}, err
	}
	hi := selectMaxVector(v, maxVectors(mv))
	if hi == nil {
		return Result{}, ErrUnknownMacroVector
	}

	res.MacroVector = mv.String()
	res.BaseScore = base
	res.Score = adjust(base, mv, severityDistances(v, hi))
	res.Severity = SeverityRating(res.Score)
	return res, nil
}

func noImpact(v *Vector) bool {
	for _, m := range []Metric{VC, VI, VA, SC, SI, SA} {
		if v.Effective(m) != "N" {
			return false
		}
	}
	return true
}

// severityDistances sums, per interpolation group, how far v's effective
// levels fall below the highest severity vector hi.
func severityDistances(v *Vector, hi map[Metric]string) [5]float64 {
	var out [5]float64
	for i, group := range eqGroups {
		var sum float64
		for _, m := range group {
			sum += level(m, v.Effective(m)) - level(m, hi[m])
		}
		out[i] = sum
	}
	return out
}

// availableDistances returns the depth of each interpolation group's cell.
func availableDistances(mv MacroVector) [5]int {
	return [5]int{
		maxSeverityEQ1[mv.EQ1()],
		maxSeverityEQ2[mv.EQ2()],
		maxSeverityEQ3EQ6[mv.EQ3()][mv.EQ6()],
		maxSeverityEQ4[mv.EQ4()],
		maxSeverityEQ5[mv.EQ5()],
	}
}

// adjust lowers base by the mean normalized severity distance, then clamps
// to [0, 10] and rounds to one decimal.
func adjust(base float64, mv MacroVector, distances [5]float64) float64 {
	var (
		total float64
		n     int
	)
	for i, available := range availableDistances(mv) {
		avail := float64(available)
		maxSeverity := avail * 0.1
		if available == 0 || maxSeverity <= 0 {
			continue
		}
		total += avail * (distances[i] / maxSeverity)
		n++
	}

	var mean float64
	if n > 0 {
		mean = total / float64(n)
	}
	return roundScore(clamp(base - mean))
}

func clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 10:
		return 10
	default:
		return score
	}
}

// roundScore rounds to one decimal place, breaking exact ties to even.
func roundScore(score float64) float64 {
	return math.RoundToEven(score*10) / 10
}

// SeverityRating returns the qualitative rating of score.
func SeverityRating(score float64) Severity {
	switch {
	case score == 0:
		return SeverityNone
	case score < 4.0:
		return SeverityLow
	case score < 7.0:
		return SeverityMedium
	case score < 9.0:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

var environmentalMetrics = []Metric{CR, IR, AR, MAV, MAC, MAT, MPR, MUI, MVC, MVI, MVA, MSC, MSI, MSA}

// Nomenclature reports whether threat and environmental metrics were given.
func (v *Vector) Nomenclature() Nomenclature {
	threat := v.Defined(E)
	env := false
	for _, m := range environmentalMetrics {
		if v.Defined(m) {
			env = true
			break
		}
	}
	switch {
	case threat && env:
		return NomenclatureBTE
	case threat:
		return NomenclatureBT
	case env:
		return NomenclatureBE
	default:
		return NomenclatureB
	}
}
